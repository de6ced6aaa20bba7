package documents

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kbot-ai/cli/internal/db"
	"github.com/kbot-ai/cli/internal/vectorstore"
)

// Outcome describes what Process did with a file.
type Outcome string

const (
	// OutcomeIndexed means the file was new and its chunks were indexed.
	OutcomeIndexed Outcome = "indexed"
	// OutcomeSkipped means the file's content was already ingested.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeUnsupported means the file extension is not recognized.
	OutcomeUnsupported Outcome = "unsupported"
)

// MetadataStore is the ingestion-bookkeeping subset of the relational store.
type MetadataStore interface {
	IsProcessed(ctx context.Context, contentHash string) (bool, error)
	SaveDocument(ctx context.Context, filename, contentHash string) error
}

// ChunkIndex is the write side of the vector store.
type ChunkIndex interface {
	Upsert(ctx context.Context, entries []vectorstore.Entry) error
}

// Embedder converts texts into fixed-dimension vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Processor is the ingestion pipeline for a single file:
// hash, dedup check, load, split, record, embed, index.
type Processor struct {
	store    MetadataStore
	index    ChunkIndex
	embedder Embedder
	splitter *Splitter
}

// NewProcessor creates a new ingestion pipeline.
func NewProcessor(store MetadataStore, index ChunkIndex, embedder Embedder, chunkSize, chunkOverlap int) *Processor {
	return &Processor{
		store:    store,
		index:    index,
		embedder: embedder,
		splitter: NewSplitter(chunkSize, chunkOverlap),
	}
}

// Process ingests one file. Ingesting the same byte content twice is a no-op
// regardless of filename: the dedup check catches the common case and the
// relational uniqueness constraint on the content hash settles races between
// concurrent triggers, with the loser aborting before any vector write.
func (p *Processor) Process(ctx context.Context, path string) (Outcome, error) {
	filename := filepath.Base(path)

	hash, err := HashFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", filename, err)
	}

	processed, err := p.store.IsProcessed(ctx, hash)
	if err != nil {
		return "", fmt.Errorf("failed to check %s: %w", filename, err)
	}
	if processed {
		return OutcomeSkipped, nil
	}

	text, err := LoadText(path)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return OutcomeUnsupported, nil
		}
		return "", fmt.Errorf("failed to load %s: %w", filename, err)
	}

	entries := p.buildEntries(filename, hash, p.splitter.Split(text))

	// Record the document before indexing so a duplicate-insert race aborts
	// here and never produces chunks without a Document row.
	if err := p.store.SaveDocument(ctx, filename, hash); err != nil {
		if errors.Is(err, db.ErrDuplicateContent) {
			return OutcomeSkipped, nil
		}
		return "", fmt.Errorf("failed to record %s: %w", filename, err)
	}

	if len(entries) == 0 {
		return OutcomeIndexed, nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return "", fmt.Errorf("failed to embed %s: %w", filename, err)
	}
	if len(embeddings) != len(entries) {
		return "", fmt.Errorf("failed to embed %s: got %d embeddings for %d chunks", filename, len(embeddings), len(entries))
	}
	for i := range entries {
		entries[i].Embedding = embeddings[i]
	}

	if err := p.index.Upsert(ctx, entries); err != nil {
		return "", fmt.Errorf("failed to index %s: %w", filename, err)
	}

	return OutcomeIndexed, nil
}

// ProcessAll ingests every regular file in folder, non-recursively, and
// returns the number of newly indexed files. Failures are isolated per file.
func (p *Processor) ProcessAll(ctx context.Context, folder string) (int, error) {
	dirEntries, err := os.ReadDir(folder)
	if err != nil {
		return 0, fmt.Errorf("failed to read folder: %w", err)
	}

	indexed := 0
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		outcome, err := p.Process(ctx, path)
		if err != nil {
			log.Printf("processor: %v", err)
			continue
		}
		if outcome == OutcomeIndexed {
			indexed++
		}
	}
	return indexed, nil
}

// buildEntries attaches source metadata and deterministic ids to chunk texts.
// The id is a UUIDv5 of filename, content hash and sequence index, so
// re-processing identical content always yields identical ids.
func (p *Processor) buildEntries(filename, hash string, chunks []string) []vectorstore.Entry {
	entries := make([]vectorstore.Entry, len(chunks))
	for i, text := range chunks {
		name := fmt.Sprintf("%s_%s_%d", filename, hash, i)
		entries[i] = vectorstore.Entry{
			ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
			Text:        text,
			Source:      filename,
			ContentHash: hash,
			Index:       i,
		}
	}
	return entries
}
