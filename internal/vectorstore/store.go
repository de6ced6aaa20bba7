// Package vectorstore provides the pgvector-backed chunk collection used for
// similarity retrieval. It is independent of the metadata store: each call
// runs over this store's own connection pool, and consistency between the two
// is best-effort (see the processor's ordering of writes).
package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Entry is one indexed chunk: its deterministic id, text, source metadata
// and embedding.
type Entry struct {
	ID          uuid.UUID
	Text        string
	Source      string
	ContentHash string
	Index       int
	Embedding   []float32
}

// Result is a retrieved chunk with its cosine similarity to the query.
type Result struct {
	Text        string
	Source      string
	ContentHash string
	Index       int
	Similarity  float64
}

// Store is the pgvector chunk collection.
type Store struct {
	pool *pgxpool.Pool
	dim  int
}

// New creates the vector store with its own connection pool and ensures the
// chunk table exists.
func New(ctx context.Context, connString string, dimension int) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	s := &Store{pool: pool, dim: dimension}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize chunk table: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return err
	}
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS chunks (
		id UUID PRIMARY KEY,
		content TEXT NOT NULL,
		source_filename TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		chunk_index INT NOT NULL,
		embedding vector(%d) NOT NULL
	)`, s.dim)
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Upsert writes entries keyed by their deterministic ids. Re-upserting an id
// overwrites the stored text and embedding, so re-indexing the same content
// is idempotent.
func (s *Store) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO chunks (id, content, source_filename, content_hash, chunk_index, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE
			 SET content = EXCLUDED.content,
			     source_filename = EXCLUDED.source_filename,
			     content_hash = EXCLUDED.content_hash,
			     chunk_index = EXCLUDED.chunk_index,
			     embedding = EXCLUDED.embedding`,
			e.ID, e.Text, e.Source, e.ContentHash, e.Index, pgvector.NewVector(e.Embedding),
		)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert chunk %d: %w", i, err)
		}
	}
	return nil
}

// Search returns up to k entries nearest to the given embedding by cosine
// distance, nearest first. An empty collection yields an empty result, not
// an error.
func (s *Store) Search(ctx context.Context, embedding []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	vec := pgvector.NewVector(embedding)
	rows, err := s.pool.Query(ctx,
		`SELECT content, source_filename, content_hash, chunk_index,
		        1 - (embedding <=> $1) AS similarity
		 FROM chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Text, &r.Source, &r.ContentHash, &r.Index, &r.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close closes the store's connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
