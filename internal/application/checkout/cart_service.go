// Package checkout contains the application service that snapshots a
// client cart on the server at the start of checkout.
package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartService handles cart snapshot creation and retrieval
type CartService struct {
	cartRepo    checkout.CartRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(cartRepo checkout.CartRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateCart validates the submitted lines against the catalog and
// stores a cart snapshot for the user. Every referenced product must
// exist and be active.
func (s *CartService) CreateCart(ctx context.Context, input CreateCartInput) (*CartView, error) {
	items := make([]checkout.ItemInput, len(input.Items))
	for i, in := range input.Items {
		items[i] = checkout.ItemInput{ProductID: in.ProductID, Quantity: in.Quantity}
	}

	cart, err := checkout.NewCart(input.UserID, items)
	if err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, cart)
	if err != nil {
		return nil, err
	}
	for _, id := range cart.ProductIDs() {
		product, ok := products[id]
		if !ok {
			return nil, shared.NewDomainError("UNKNOWN_PRODUCT", "Cart references a product that does not exist")
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("INACTIVE_PRODUCT", "Cart references a product that is no longer available")
		}
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart snapshot", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create cart")
	}

	s.logger.Info("Cart snapshot created",
		zap.String("cart_id", cart.ID.String()),
		zap.Int("total_quantity", cart.TotalQuantity()))

	return s.buildView(cart, products), nil
}

// GetCart returns a cart snapshot with product details, scoped to its
// owning user.
func (s *CartService) GetCart(ctx context.Context, userID, cartID uuid.UUID) (*CartView, error) {
	cart, err := s.cartRepo.FindByIDForUser(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, cart)
	if err != nil {
		return nil, err
	}

	return s.buildView(cart, products), nil
}

func (s *CartService) loadProducts(ctx context.Context, cart *checkout.Cart) (map[uuid.UUID]*catalog.Product, error) {
	found, err := s.productRepo.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		s.logger.Error("Failed to load cart products", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load cart products")
	}

	products := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	return products, nil
}

// buildView joins cart lines with product details. Lines whose product
// has been deleted since the snapshot are dropped from the view.
func (s *CartService) buildView(cart *checkout.Cart, products map[uuid.UUID]*catalog.Product) *CartView {
	view := &CartView{
		ID:    cart.ID,
		Items: make([]CartLineView, 0, len(cart.Items)),
	}
	total := decimal.Zero
	for _, item := range cart.Items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		view.Items = append(view.Items, CartLineView{
			Product:  appcatalog.NewProductView(product),
			Quantity: item.Quantity,
		})
		view.TotalQuantity += item.Quantity
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	view.TotalPrice = total.InexactFloat64()
	return view
}
