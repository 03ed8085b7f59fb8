package checkout

import (
	"github.com/google/uuid"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
)

// CreateCartInput carries the cart lines submitted at checkout start
type CreateCartInput struct {
	UserID uuid.UUID
	Items  []CartItemInput
}

// CartItemInput is a single submitted cart line
type CartItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CartView is the client-facing shape of a stored cart snapshot
type CartView struct {
	ID            uuid.UUID      `json:"id"`
	Items         []CartLineView `json:"items"`
	TotalQuantity int            `json:"total_quantity"`
	TotalPrice    float64        `json:"total_price"`
}

// CartLineView is a cart line joined with its product details
type CartLineView struct {
	Product  appcatalog.ProductView `json:"product"`
	Quantity int                    `json:"quantity"`
}
