package db

import "time"

// Document records one successfully ingested file. Rows are created on first
// ingestion of a distinct content hash and never mutated afterwards.
type Document struct {
	ID          int64
	Filename    string
	ContentHash string
	ProcessedAt time.Time
}
