package rag

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(10)
	assert.Zero(t, h.Len())
	assert.Empty(t, h.Entries())
}

func TestHistory_AppendWithinLimit(t *testing.T) {
	h := NewHistory(10)
	h.Append("question", "answer")
	assert.Equal(t, []string{"question", "answer"}, h.Entries())
}

func TestHistory_DropsOldestFirst(t *testing.T) {
	h := NewHistory(3)
	h.Append("a", "b", "c", "d")
	assert.Equal(t, []string{"b", "c", "d"}, h.Entries())
}

func TestHistory_SixTurnsKeepTenMostRecent(t *testing.T) {
	// Six user/assistant turn pairs against a bound of 10 keep exactly the
	// last five pairs.
	h := NewHistory(10)
	for i := 0; i < 6; i++ {
		h.Append(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	entries := h.Entries()
	require.Len(t, entries, 10)
	assert.Equal(t, "q1", entries[0])
	assert.Equal(t, "a5", entries[9])
}

func TestHistory_SeededBeyondLimit(t *testing.T) {
	h := NewHistory(2, "a", "b", "c")
	assert.Equal(t, []string{"b", "c"}, h.Entries())
}

func TestHistory_DefaultLimit(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 20; i++ {
		h.Append(fmt.Sprintf("entry%d", i))
	}
	assert.Equal(t, DefaultHistoryLimit, h.Len())
}

func TestHistory_EntriesIsACopy(t *testing.T) {
	h := NewHistory(5, "a", "b")
	entries := h.Entries()
	entries[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, h.Entries())
}
