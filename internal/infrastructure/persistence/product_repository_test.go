package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// setupTestDB creates a new in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.Product{}, &identity.User{}, &checkout.Cart{}, &checkout.CartItem{})
	require.NoError(t, err)

	return db
}

func mustProduct(t *testing.T, title string, price float64, categories ...string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(title, "description of "+title, decimal.NewFromFloat(price))
	require.NoError(t, err)
	product.SetCategories(categories)
	return product
}

func seedProducts(t *testing.T, repo *GormProductRepository, products ...*catalog.Product) {
	t.Helper()
	ctx := context.Background()
	for _, p := range products {
		require.NoError(t, repo.Save(ctx, p))
	}
}

func TestGormProductRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	product := mustProduct(t, "Walnut Desk", 299.99, "furniture")
	seedProducts(t, repo, product)

	t.Run("finds existing product", func(t *testing.T) {
		found, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Walnut Desk", found.Title)
		assert.True(t, found.Price.Equal(decimal.NewFromFloat(299.99)))
		assert.Equal(t, []string{"furniture"}, found.Categories)
	})

	t.Run("returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_FindByIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	desk := mustProduct(t, "Walnut Desk", 299.99)
	chair := mustProduct(t, "Oak Chair", 89.50)
	seedProducts(t, repo, desk, chair)

	t.Run("returns matching products and skips missing ids", func(t *testing.T) {
		found, err := repo.FindByIDs(ctx, []uuid.UUID{desk.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, desk.ID, found[0].ID)
	})

	t.Run("empty input returns nothing", func(t *testing.T) {
		found, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestGormProductRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	desk := mustProduct(t, "Walnut Desk", 299.99, "furniture", "office")
	chair := mustProduct(t, "Oak Chair", 89.50, "furniture")
	lamp := mustProduct(t, "Brass Lamp", 45.00, "lighting")
	hidden := mustProduct(t, "Retired Stool", 19.99, "furniture")
	hidden.Deactivate()
	seedProducts(t, repo, desk, chair, lamp, hidden)

	t.Run("lists only active products", func(t *testing.T) {
		products, total, err := repo.List(ctx, catalog.ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, products, 3)
		for _, p := range products {
			assert.NotEqual(t, "Retired Stool", p.Title)
		}
	})

	t.Run("default sort is title ascending", func(t *testing.T) {
		products, _, err := repo.List(ctx, catalog.ListQuery{})
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "Brass Lamp", products[0].Title)
		assert.Equal(t, "Oak Chair", products[1].Title)
		assert.Equal(t, "Walnut Desk", products[2].Title)
	})

	t.Run("sorts by price descending", func(t *testing.T) {
		products, _, err := repo.List(ctx, catalog.ListQuery{SortBy: "price", Order: "desc"})
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "Walnut Desk", products[0].Title)
		assert.Equal(t, "Brass Lamp", products[2].Title)
	})

	t.Run("search matches title substring case-insensitively", func(t *testing.T) {
		products, total, err := repo.List(ctx, catalog.ListQuery{Search: "oAk"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, "Oak Chair", products[0].Title)
	})

	t.Run("price bounds are inclusive", func(t *testing.T) {
		min := decimal.NewFromFloat(45.00)
		max := decimal.NewFromFloat(89.50)
		products, total, err := repo.List(ctx, catalog.ListQuery{MinPrice: &min, MaxPrice: &max})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, products, 2)
		assert.Equal(t, "Brass Lamp", products[0].Title)
		assert.Equal(t, "Oak Chair", products[1].Title)
	})

	t.Run("category filter matches any selected category", func(t *testing.T) {
		products, total, err := repo.List(ctx, catalog.ListQuery{Categories: []string{"lighting", "office"}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, products, 2)
	})

	t.Run("pagination slices the result set", func(t *testing.T) {
		products, total, err := repo.List(ctx, catalog.ListQuery{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, products, 1)
		assert.Equal(t, "Walnut Desk", products[0].Title)
	})

	t.Run("invalid sort field falls back to title", func(t *testing.T) {
		products, _, err := repo.List(ctx, catalog.ListQuery{SortBy: "password; DROP TABLE products"})
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "Brass Lamp", products[0].Title)
	})
}

func TestGormProductRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	product := mustProduct(t, "Walnut Desk", 299.99)
	seedProducts(t, repo, product)

	require.NoError(t, repo.Delete(ctx, product.ID))
	_, err := repo.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, product.ID), shared.ErrNotFound)
}
