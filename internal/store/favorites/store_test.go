package favorites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/store/kv"
	"github.com/storefront/backend/internal/store/session"
)

func TestFavoritesIdempotency(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemoryStore(), nil)

	t.Run("adding twice keeps a single occurrence", func(t *testing.T) {
		require.NoError(t, store.AddFavorite(ctx, "p1"))
		require.NoError(t, store.AddFavorite(ctx, "p1"))
		assert.Equal(t, []string{"p1"}, store.Favorites())
		assert.True(t, store.IsFavorite("p1"))
	})

	t.Run("removing a missing id is a no-op", func(t *testing.T) {
		require.NoError(t, store.RemoveFavorite(ctx, "p2"))
		assert.Equal(t, []string{"p1"}, store.Favorites())
	})

	t.Run("remove deletes the id", func(t *testing.T) {
		require.NoError(t, store.RemoveFavorite(ctx, "p1"))
		assert.False(t, store.IsFavorite("p1"))
		assert.Empty(t, store.Favorites())
	})
}

func TestFavoritesToggle(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemoryStore(), nil)

	require.NoError(t, store.ToggleFavorite(ctx, "p1"))
	assert.True(t, store.IsFavorite("p1"))

	require.NoError(t, store.ToggleFavorite(ctx, "p1"))
	assert.False(t, store.IsFavorite("p1"))
}

func TestFavoritesNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	store := New(backing, nil)

	require.NoError(t, store.OnIdentityChanged(ctx, session.GuestNamespace, "user-a"))
	require.NoError(t, store.AddFavorite(ctx, "p1"))

	require.NoError(t, store.OnIdentityChanged(ctx, "user-a", "user-b"))
	assert.Empty(t, store.Favorites())

	require.NoError(t, store.AddFavorite(ctx, "p2"))

	require.NoError(t, store.OnIdentityChanged(ctx, "user-b", "user-a"))
	assert.Equal(t, []string{"p1"}, store.Favorites())
}

func TestFavoritesOnLogout(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	store := New(backing, nil)

	require.NoError(t, store.OnIdentityChanged(ctx, session.GuestNamespace, "user-a"))
	require.NoError(t, store.AddFavorite(ctx, "p1"))

	require.NoError(t, store.OnLogout(ctx))
	assert.Empty(t, store.Favorites())
	assert.Equal(t, session.GuestNamespace, store.Namespace())

	raw, ok, err := backing.Get(ctx, "favorites:user-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "p1")
}

func TestFavoritesPersistsOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	store := New(backing, nil)

	require.NoError(t, store.AddFavorite(ctx, "p1"))
	raw, ok, err := backing.Get(ctx, "favorites:guest")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "p1")

	require.NoError(t, store.ClearFavorites(ctx))
	raw, _, err = backing.Get(ctx, "favorites:guest")
	require.NoError(t, err)
	assert.NotContains(t, raw, "p1")
}
