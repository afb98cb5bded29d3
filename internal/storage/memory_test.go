package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "kb_loans")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "kb_loans", []byte(`[]`)))

	value, err := store.Get(ctx, "kb_loans")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)

	// Overwrites replace the blob
	require.NoError(t, store.Set(ctx, "kb_loans", []byte(`[{"id":"1"}]`)))
	value, err = store.Get(ctx, "kb_loans")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"1"}]`), value)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := []byte(`[]`)
	require.NoError(t, store.Set(ctx, "k", original))
	original[0] = 'x'

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)
}
