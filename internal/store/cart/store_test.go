package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/client"
	"github.com/storefront/backend/internal/store/kv"
	"github.com/storefront/backend/internal/store/session"
)

type recordingNotifier struct {
	titles []string
}

func (n *recordingNotifier) ProductAdded(title string) {
	n.titles = append(n.titles, title)
}

func productX() client.Product {
	return client.Product{ID: "prod-x", Title: "Walnut Desk", Price: 299.99, Stock: 5}
}

func productY() client.Product {
	return client.Product{ID: "prod-y", Title: "Oak Chair", Price: 89.50, Stock: 2}
}

func TestCartAddRemoveDelete(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemoryStore())

	t.Run("two adds merge into one line with quantity 2", func(t *testing.T) {
		require.NoError(t, store.AddToCart(ctx, productX()))
		require.NoError(t, store.AddToCart(ctx, productX()))

		items := store.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
		assert.Equal(t, 2, store.CartCount())
	})

	t.Run("remove decrements", func(t *testing.T) {
		require.NoError(t, store.RemoveFromCart(ctx, "prod-x"))

		items := store.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].Quantity)
		assert.Equal(t, 1, store.CartCount())
	})

	t.Run("delete removes the line regardless of quantity", func(t *testing.T) {
		require.NoError(t, store.AddToCart(ctx, productX()))
		require.NoError(t, store.DeleteFromCart(ctx, "prod-x"))
		assert.Empty(t, store.Items())
		assert.Zero(t, store.CartCount())
	})

	t.Run("remove at quantity 1 deletes the line", func(t *testing.T) {
		require.NoError(t, store.AddToCart(ctx, productY()))
		require.NoError(t, store.RemoveFromCart(ctx, "prod-y"))
		assert.Empty(t, store.Items())
	})

	t.Run("remove and delete of unknown ids are no-ops", func(t *testing.T) {
		require.NoError(t, store.RemoveFromCart(ctx, "missing"))
		require.NoError(t, store.DeleteFromCart(ctx, "missing"))
	})
}

func TestCartCountMatchesQuantitySum(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemoryStore())

	sum := func() int {
		total := 0
		for _, item := range store.Items() {
			total += item.Quantity
		}
		return total
	}

	require.NoError(t, store.AddToCart(ctx, productX()))
	assert.Equal(t, sum(), store.CartCount())
	require.NoError(t, store.AddToCart(ctx, productY()))
	assert.Equal(t, sum(), store.CartCount())
	require.NoError(t, store.AddToCart(ctx, productX()))
	assert.Equal(t, sum(), store.CartCount())
	require.NoError(t, store.RemoveFromCart(ctx, "prod-y"))
	assert.Equal(t, sum(), store.CartCount())
	require.NoError(t, store.ClearCart(ctx))
	assert.Equal(t, 0, store.CartCount())
}

func TestCartPersistsOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	store := New(backing)

	require.NoError(t, store.AddToCart(ctx, productX()))
	raw, ok, err := backing.Get(ctx, "cart:guest")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "prod-x")

	require.NoError(t, store.DeleteFromCart(ctx, "prod-x"))
	raw, _, err = backing.Get(ctx, "cart:guest")
	require.NoError(t, err)
	assert.NotContains(t, raw, "prod-x")
}

func TestCartNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	store := New(backing)

	// user A fills their cart
	require.NoError(t, store.OnIdentityChanged(ctx, session.GuestNamespace, "user-a"))
	require.NoError(t, store.AddToCart(ctx, productX()))
	require.Equal(t, 1, store.CartCount())

	// switching to user B must not leak A's cart
	require.NoError(t, store.OnIdentityChanged(ctx, "user-a", "user-b"))
	assert.Empty(t, store.Items())
	assert.Equal(t, "user-b", store.Namespace())

	require.NoError(t, store.AddToCart(ctx, productY()))
	require.NoError(t, store.AddToCart(ctx, productY()))

	// switching back restores A's slice untouched
	require.NoError(t, store.OnIdentityChanged(ctx, "user-b", "user-a"))
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "prod-x", items[0].Product.ID)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestCartOnLogout(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	store := New(backing)

	require.NoError(t, store.OnIdentityChanged(ctx, session.GuestNamespace, "user-a"))
	require.NoError(t, store.AddToCart(ctx, productX()))

	require.NoError(t, store.OnLogout(ctx))
	assert.Empty(t, store.Items())
	assert.Equal(t, session.GuestNamespace, store.Namespace())

	// the outgoing namespace's slice was cleared too
	raw, ok, err := backing.Get(ctx, "cart:user-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "prod-x")
}

func TestCartNotifier(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	store := New(kv.NewMemoryStore(), WithNotifier(notifier))

	require.NoError(t, store.AddToCart(ctx, productX()))
	require.NoError(t, store.AddToCart(ctx, productY()))
	assert.Equal(t, []string{"Walnut Desk", "Oak Chair"}, notifier.titles)
}

func TestCartDiscardsCorruptSlice(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemoryStore()
	require.NoError(t, backing.Set(ctx, "cart:user-a", "{not json"))

	store := New(backing)
	require.NoError(t, store.OnIdentityChanged(ctx, session.GuestNamespace, "user-a"))
	assert.Empty(t, store.Items())
}
