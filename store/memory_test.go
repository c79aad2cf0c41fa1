package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	doc, err := s.CreateDocument(ctx, "profiles", "user-1", map[string]interface{}{
		"name":    "Alice",
		"friends": []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", doc.ID)
	assert.Equal(t, "profiles", doc.Collection)
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := s.GetDocument(ctx, "profiles", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Fields["name"])
}

func TestMemoryStoreCreateConflict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.CreateDocument(ctx, "profiles", "user-1", map[string]interface{}{"name": "Alice"})
	require.NoError(t, err)

	_, err = s.CreateDocument(ctx, "profiles", "user-1", map[string]interface{}{"name": "Bob"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStoreAutoID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first, err := s.CreateDocument(ctx, "friend_requests", AutoID, map[string]interface{}{"status": "pending"})
	require.NoError(t, err)
	second, err := s.CreateDocument(ctx, "friend_requests", AutoID, map[string]interface{}{"status": "pending"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetDocument(context.Background(), "profiles", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.CreateDocument(ctx, "profiles", "user-1", map[string]interface{}{
		"name": "Alice",
		"bio":  "hello",
	})
	require.NoError(t, err)

	updated, err := s.UpdateDocument(ctx, "profiles", "user-1", map[string]interface{}{
		"bio": "changed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Fields["name"])
	assert.Equal(t, "changed", updated.Fields["bio"])
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestMemoryStoreUpdateNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.UpdateDocument(context.Background(), "profiles", "missing", map[string]interface{}{"bio": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.CreateDocument(ctx, "friend_requests", AutoID, map[string]interface{}{
		"to_user_id": "user-1",
		"status":     "pending",
	})
	require.NoError(t, err)
	_, err = s.CreateDocument(ctx, "friend_requests", AutoID, map[string]interface{}{
		"to_user_id": "user-1",
		"status":     "accepted",
	})
	require.NoError(t, err)
	_, err = s.CreateDocument(ctx, "friend_requests", AutoID, map[string]interface{}{
		"to_user_id": "user-2",
		"status":     "pending",
	})
	require.NoError(t, err)

	docs, err := s.ListDocuments(ctx, "friend_requests", Filters{
		"to_user_id": "user-1",
		"status":     "pending",
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "user-1", docs[0].Fields["to_user_id"])

	empty, err := s.ListDocuments(ctx, "friend_requests", Filters{"to_user_id": "nobody"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	doc, err := s.CreateDocument(ctx, "profiles", "user-1", map[string]interface{}{
		"friends": []string{"a"},
	})
	require.NoError(t, err)

	// Mutating the returned document must not reach the store.
	doc.Fields["friends"].([]string)[0] = "tampered"

	got, err := s.GetDocument(ctx, "profiles", "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.Fields["friends"])
}
