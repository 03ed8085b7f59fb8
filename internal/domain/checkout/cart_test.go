package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCart(t *testing.T) {
	userID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	t.Run("creates cart with merged lines", func(t *testing.T) {
		cart, err := NewCart(userID, []ItemInput{
			{ProductID: productA, Quantity: 2},
			{ProductID: productB, Quantity: 1},
			{ProductID: productA, Quantity: 3},
		})
		require.NoError(t, err)

		require.Len(t, cart.Items, 2)
		assert.Equal(t, 5, cart.Items[0].Quantity)
		assert.Equal(t, 1, cart.Items[1].Quantity)
		assert.Equal(t, 6, cart.TotalQuantity())
		assert.Equal(t, []uuid.UUID{productA, productB}, cart.ProductIDs())
	})

	t.Run("rejects missing user", func(t *testing.T) {
		_, err := NewCart(uuid.Nil, []ItemInput{{ProductID: productA, Quantity: 1}})
		require.Error(t, err)
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		_, err := NewCart(userID, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one item")
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewCart(userID, []ItemInput{{ProductID: productA, Quantity: 0}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 1")
	})
}
