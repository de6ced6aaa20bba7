package rag

import (
	"context"
	"fmt"
	"log"
)

// ContextStore is the per-user conversation subset of the relational store.
type ContextStore interface {
	GetUserContext(ctx context.Context, userID int64) ([]string, error)
	UpdateUserContext(ctx context.Context, userID int64, history []string) error
	ClearUserContext(ctx context.Context, userID int64) error
}

// ContextService reads and updates a user's bounded conversation history.
// All operations are total: an unknown user behaves as a user with empty
// history, and read failures degrade to empty rather than propagating.
type ContextService struct {
	store ContextStore
	limit int
}

// NewContextService creates a context service keeping at most limit entries
// per user.
func NewContextService(store ContextStore, limit int) *ContextService {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &ContextService{store: store, limit: limit}
}

// Get returns the user's history, oldest first. Failures are logged and
// return an empty history so the conversation can continue without it.
func (s *ContextService) Get(ctx context.Context, userID int64) []string {
	history, err := s.store.GetUserContext(ctx, userID)
	if err != nil {
		log.Printf("context: failed to get history for user %d: %v", userID, err)
		return nil
	}
	return history
}

// Update replaces the user's history, truncating to the most recent entries
// before persisting. Last writer wins.
func (s *ContextService) Update(ctx context.Context, userID int64, history []string) error {
	buf := NewHistory(s.limit, history...)
	if err := s.store.UpdateUserContext(ctx, userID, buf.Entries()); err != nil {
		return fmt.Errorf("failed to update history for user %d: %w", userID, err)
	}
	return nil
}

// Append adds a user/assistant turn to the stored history, dropping the
// oldest entries when the bound is exceeded.
func (s *ContextService) Append(ctx context.Context, userID int64, userMessage, assistantMessage string) error {
	buf := NewHistory(s.limit, s.Get(ctx, userID)...)
	buf.Append(userMessage, assistantMessage)
	if err := s.store.UpdateUserContext(ctx, userID, buf.Entries()); err != nil {
		return fmt.Errorf("failed to append history for user %d: %w", userID, err)
	}
	return nil
}

// Clear resets the user's history to empty. The stored record persists as
// an empty history rather than being deleted.
func (s *ContextService) Clear(ctx context.Context, userID int64) error {
	if err := s.store.ClearUserContext(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear history for user %d: %w", userID, err)
	}
	return nil
}
