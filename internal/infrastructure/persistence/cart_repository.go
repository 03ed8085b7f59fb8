package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormCartRepository implements checkout.CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByID finds a cart by ID with its items preloaded
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Cart, error) {
	var cart checkout.Cart
	if err := r.db.WithContext(ctx).Preload("Items").First(&cart, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// FindByIDForUser finds a cart by ID scoped to its owning user
func (r *GormCartRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*checkout.Cart, error) {
	var cart checkout.Cart
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND id = ?", userID, id).
		First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// Save creates or updates a cart with its items
func (r *GormCartRepository) Save(ctx context.Context, cart *checkout.Cart) error {
	return r.db.WithContext(ctx).Save(cart).Error
}

// Delete removes a cart and its items
func (r *GormCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&checkout.CartItem{}, "cart_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&checkout.Cart{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ checkout.CartRepository = (*GormCartRepository)(nil)
