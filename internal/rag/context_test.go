package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContextStore struct {
	histories map[int64][]string
	getErr    error
	updateErr error
}

func newFakeContextStore() *fakeContextStore {
	return &fakeContextStore{histories: make(map[int64][]string)}
}

func (f *fakeContextStore) GetUserContext(_ context.Context, userID int64) ([]string, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.histories[userID], nil
}

func (f *fakeContextStore) UpdateUserContext(_ context.Context, userID int64, history []string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.histories[userID] = history
	return nil
}

func (f *fakeContextStore) ClearUserContext(_ context.Context, userID int64) error {
	return f.UpdateUserContext(context.Background(), userID, []string{})
}

func TestContextService_GetUnknownUserIsEmpty(t *testing.T) {
	svc := NewContextService(newFakeContextStore(), 10)
	assert.Empty(t, svc.Get(context.Background(), 42))
}

func TestContextService_GetDegradesOnStoreFailure(t *testing.T) {
	store := newFakeContextStore()
	store.getErr = errors.New("store unreachable")
	svc := NewContextService(store, 10)
	assert.Empty(t, svc.Get(context.Background(), 42))
}

func TestContextService_UpdateTruncatesToBound(t *testing.T) {
	store := newFakeContextStore()
	svc := NewContextService(store, 10)

	var history []string
	for i := 0; i < 12; i++ {
		history = append(history, fmt.Sprintf("entry%d", i))
	}
	require.NoError(t, svc.Update(context.Background(), 7, history))

	stored := store.histories[7]
	require.Len(t, stored, 10)
	assert.Equal(t, "entry2", stored[0])
	assert.Equal(t, "entry11", stored[9])
}

func TestContextService_AppendKeepsMostRecentTurns(t *testing.T) {
	store := newFakeContextStore()
	svc := NewContextService(store, 10)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, svc.Append(ctx, 7, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	got := svc.Get(ctx, 7)
	require.Len(t, got, 10)
	assert.Equal(t, "q1", got[0])
	assert.Equal(t, "a5", got[9])
}

func TestContextService_ClearThenGetIsEmpty(t *testing.T) {
	store := newFakeContextStore()
	svc := NewContextService(store, 10)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, 7, "question", "answer"))
	require.NoError(t, svc.Clear(ctx, 7))
	assert.Empty(t, svc.Get(ctx, 7))

	// The record persists as an empty history rather than disappearing.
	stored, ok := store.histories[7]
	assert.True(t, ok)
	assert.Empty(t, stored)
}

func TestContextService_UpdateSurfacesStoreFailure(t *testing.T) {
	store := newFakeContextStore()
	store.updateErr = errors.New("store unreachable")
	svc := NewContextService(store, 10)
	assert.Error(t, svc.Update(context.Background(), 7, []string{"entry"}))
}
