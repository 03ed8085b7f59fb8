package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("missing key is not an error", func(t *testing.T) {
		value, ok, err := store.Get(ctx, "cart:guest")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "cart:guest", `[]`))
		value, ok, err := store.Get(ctx, "cart:guest")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[]`, value)
	})

	t.Run("set replaces previous value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "cart:guest", `[{"quantity":1}]`))
		value, _, err := store.Get(ctx, "cart:guest")
		require.NoError(t, err)
		assert.Equal(t, `[{"quantity":1}]`, value)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "cart:guest"))
		require.NoError(t, store.Delete(ctx, "cart:guest"))
		_, ok, err := store.Get(ctx, "cart:guest")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
