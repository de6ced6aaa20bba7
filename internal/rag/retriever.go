package rag

import (
	"context"
	"log"

	"github.com/kbot-ai/cli/internal/vectorstore"
)

// DefaultTopK is the default number of chunks retrieved per query.
const DefaultTopK = 5

// Searcher is the read side of the vector store.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, k int) ([]vectorstore.Result, error)
}

// QueryEmbedder converts a query string into a vector.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Snippet is one retrieved piece of knowledge-base context.
type Snippet struct {
	Text        string
	Source      string
	ContentHash string
	Index       int
	Similarity  float64
}

// Retriever finds knowledge-base context for a query via similarity search.
type Retriever struct {
	index    Searcher
	embedder QueryEmbedder
	topK     int
}

// NewRetriever creates a new retriever. A non-positive topK falls back to
// DefaultTopK.
func NewRetriever(index Searcher, embedder QueryEmbedder, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		index:    index,
		embedder: embedder,
		topK:     topK,
	}
}

// TopK returns the configured default number of snippets per query.
func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve returns up to k snippets most similar to the query, nearest
// first. Retrieval is best-effort: failures are logged and degrade to an
// empty result so the assistant can still answer without context.
// A non-positive k asks for nothing and returns an empty result without
// touching the embedder or the index.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []Snippet {
	if k <= 0 {
		return nil
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("retriever: failed to embed query: %v", err)
		return nil
	}

	results, err := r.index.Search(ctx, embedding, k)
	if err != nil {
		log.Printf("retriever: failed to search: %v", err)
		return nil
	}

	snippets := make([]Snippet, 0, len(results))
	for _, res := range results {
		snippets = append(snippets, Snippet{
			Text:        res.Text,
			Source:      res.Source,
			ContentHash: res.ContentHash,
			Index:       res.Index,
			Similarity:  res.Similarity,
		})
	}
	return snippets
}
