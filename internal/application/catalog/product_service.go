// Package catalog contains the application services for the product
// listing and detail surface.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductService handles product listing and lookup
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// List returns a page of products matching the filters. The returned
// page metadata echoes the normalized pagination values.
func (s *ProductService) List(ctx context.Context, input ListProductsInput) (*ListProductsResult, error) {
	query := catalog.ListQuery{
		Page:       input.Page,
		Limit:      input.Limit,
		Search:     input.Search,
		SortBy:     input.SortBy,
		Order:      input.Order,
		MinPrice:   input.MinPrice,
		MaxPrice:   input.MaxPrice,
		Categories: input.Categories,
	}
	query.Normalize()

	products, total, err := s.productRepo.List(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list products")
	}

	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = NewProductView(&products[i])
	}

	return &ListProductsResult{
		Data:       views,
		Page:       query.Page,
		Limit:      query.Limit,
		Count:      total,
		TotalPages: shared.TotalPages(total, query.Limit),
	}, nil
}

// GetByID returns a single product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewProductView(product)
	return &view, nil
}
