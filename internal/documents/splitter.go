package documents

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default maximum chunk length in characters.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of characters shared between
// adjacent chunks.
const DefaultChunkOverlap = 150

// defaultSeparators are tried in priority order: paragraph break, line break,
// sentence end, word boundary, and finally a hard character split.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits document text into overlapping chunks using a prioritized
// list of separators. It is pure and deterministic.
//
// Sizes are counted in characters (runes), not bytes, so multi-byte text is
// never cut inside a UTF-8 sequence. Overlap is counted inside the size
// bound: every chunk is at most chunkSize characters long, and each chunk
// after the first starts with the trailing overlap characters of its
// predecessor. Concatenating the non-overlap regions of all chunks in order
// reconstructs the input exactly.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter with the given chunk size and overlap.
// Non-positive sizes fall back to the defaults; an overlap that would not
// leave room for fresh text is clamped to a quarter of the chunk size.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split splits text into chunks of at most chunkSize characters with the
// configured overlap between neighbours. Empty input yields no chunks.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}

	// Fresh text per chunk is bounded so that prepending the overlap never
	// pushes a chunk past chunkSize.
	coreMax := s.chunkSize - s.overlap
	if coreMax <= 0 {
		coreMax = s.chunkSize
	}

	cores := mergePieces(s.split(text, s.separators, coreMax), coreMax)
	if len(cores) <= 1 {
		return cores
	}

	chunks := make([]string, len(cores))
	chunks[0] = cores[0]
	for i := 1; i < len(cores); i++ {
		chunks[i] = tail(cores[i-1], s.overlap) + cores[i]
	}
	return chunks
}

// split recursively breaks text into pieces no longer than limit characters,
// trying separators in priority order. Separators stay attached to the
// preceding piece so no characters are lost.
func (s *Splitter) split(text string, separators []string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	sep := separators[0]
	if sep == "" {
		// Last resort: hard split every limit runes. Ranging over the string
		// yields rune start offsets, so every cut lands on a rune boundary.
		var pieces []string
		start, count := 0, 0
		for i := range text {
			if count == limit {
				pieces = append(pieces, text[start:i])
				start = i
				count = 0
			}
			count++
		}
		pieces = append(pieces, text[start:])
		return pieces
	}

	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		// Separator absent, try the next one on the whole text.
		return s.split(text, separators[1:], limit)
	}

	var pieces []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= limit {
			pieces = append(pieces, part)
		} else {
			pieces = append(pieces, s.split(part, separators[1:], limit)...)
		}
	}
	return pieces
}

// mergePieces greedily joins adjacent pieces while the result stays within
// limit characters. Pieces are exact substrings of the input, so joining is
// plain concatenation.
func mergePieces(pieces []string, limit int) []string {
	var merged []string
	var b strings.Builder
	count := 0
	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if count > 0 && count+n > limit {
			merged = append(merged, b.String())
			b.Reset()
			count = 0
		}
		b.WriteString(p)
		count += n
	}
	if b.Len() > 0 {
		merged = append(merged, b.String())
	}
	return merged
}

// tail returns the last n runes of s, stepping back over whole runes so the
// result is always valid UTF-8.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := len(s)
	for n > 0 && i > 0 {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		n--
	}
	return s[i:]
}
