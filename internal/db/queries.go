package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateContent indicates a document with the same content hash has
// already been recorded, either earlier or by a concurrent ingestion.
var ErrDuplicateContent = errors.New("document content already recorded")

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// IsProcessed reports whether a file with the given content hash has
// already been ingested.
func (db *DB) IsProcessed(ctx context.Context, contentHash string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE content_hash = $1)`,
		contentHash,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check document hash: %w", err)
	}
	return exists, nil
}

// SaveDocument records a newly ingested file. A uniqueness violation on the
// content hash is returned as ErrDuplicateContent.
func (db *DB) SaveDocument(ctx context.Context, filename, contentHash string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO documents (filename, content_hash) VALUES ($1, $2)`,
		filename, contentHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateContent
		}
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// ListDocuments retrieves all ingested documents, newest first.
func (db *DB) ListDocuments(ctx context.Context) ([]*Document, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, filename, content_hash, processed_at
		 FROM documents ORDER BY processed_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.ContentHash, &doc.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// GetUserContext retrieves a user's conversation history. A user without a
// stored row behaves as a user with empty history.
func (db *DB) GetUserContext(ctx context.Context, userID int64) ([]string, error) {
	var raw []byte
	err := db.pool.QueryRow(ctx,
		`SELECT history FROM user_context WHERE user_id = $1`,
		userID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user context: %w", err)
	}

	var history []string
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("failed to decode user context: %w", err)
	}
	return history, nil
}

// UpdateUserContext upserts a user's conversation history.
// Last writer wins; there is no optimistic concurrency token.
func (db *DB) UpdateUserContext(ctx context.Context, userID int64, history []string) error {
	if history == nil {
		history = []string{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode user context: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO user_context (user_id, history, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id)
		 DO UPDATE SET history = EXCLUDED.history, updated_at = now()`,
		userID, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to update user context: %w", err)
	}
	return nil
}

// ClearUserContext resets a user's history to empty. The row is kept rather
// than deleted so the cleared state is observable.
func (db *DB) ClearUserContext(ctx context.Context, userID int64) error {
	return db.UpdateUserContext(ctx, userID, []string{})
}
