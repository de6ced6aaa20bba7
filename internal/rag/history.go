package rag

// DefaultHistoryLimit bounds a user's stored conversation history to five
// user/assistant turn pairs.
const DefaultHistoryLimit = 10

// History is a fixed-capacity ordered buffer of conversation entries.
// When an append would exceed the capacity, the oldest entries are dropped
// first. The zero value is unusable; use NewHistory.
type History struct {
	limit   int
	entries []string
}

// NewHistory creates a buffer holding at most limit entries, seeded with the
// given entries (already truncated if needed). A non-positive limit falls
// back to DefaultHistoryLimit.
func NewHistory(limit int, entries ...string) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	h := &History{limit: limit}
	h.Append(entries...)
	return h
}

// Append adds entries in order, dropping the oldest ones once the buffer
// is full.
func (h *History) Append(entries ...string) {
	h.entries = append(h.entries, entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Entries returns a copy of the buffered entries, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of buffered entries.
func (h *History) Len() int {
	return len(h.entries)
}
