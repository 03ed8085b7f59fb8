package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs finds the products matching the given IDs. Missing IDs are
// skipped, not errored.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// List returns the page of active products matching the query and the
// total count of matches before pagination.
func (r *GormProductRepository) List(ctx context.Context, query catalog.ListQuery) ([]catalog.Product, int64, error) {
	query.Normalize()

	db := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("status = ?", catalog.ProductStatusActive)

	if query.Search != "" {
		pattern := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if query.MinPrice != nil {
		db = db.Where("price >= ?", query.MinPrice)
	}
	if query.MaxPrice != nil {
		db = db.Where("price <= ?", query.MaxPrice)
	}
	if len(query.Categories) > 0 {
		// Categories are stored as a JSON array; match any selected
		// category against the serialized form.
		var clauses []string
		var args []interface{}
		for _, category := range query.Categories {
			clauses = append(clauses, "categories LIKE ?")
			args = append(args, `%"`+strings.ToLower(strings.TrimSpace(category))+`"%`)
		}
		db = db.Where(strings.Join(clauses, " OR "), args...)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(query.SortBy, ProductSortFields, "title")
	sortOrder := ValidateSortOrder(query.Order)

	var products []catalog.Product
	err := db.
		Order(fmt.Sprintf("%s %s", sortField, sortOrder)).
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes a product by ID
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
