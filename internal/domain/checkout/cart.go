package checkout

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Cart is a server-side snapshot of a customer's cart, created at the
// start of checkout. It is the aggregate root for checkout operations.
type Cart struct {
	shared.BaseEntity
	UserID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem is a single product line inside a cart snapshot
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// ItemInput is the caller-supplied shape of a cart line
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// NewCart creates a cart snapshot for a user. Lines for the same product
// are merged; quantities must be positive.
func NewCart(userID uuid.UUID, items []ItemInput) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Cart requires a user")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Cart must contain at least one item")
	}

	cart := &Cart{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
	}

	index := make(map[uuid.UUID]int)
	for _, in := range items {
		if in.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_ITEM", "Cart item requires a product")
		}
		if in.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Cart item quantity must be at least 1")
		}
		if i, ok := index[in.ProductID]; ok {
			cart.Items[i].Quantity += in.Quantity
			continue
		}
		index[in.ProductID] = len(cart.Items)
		cart.Items = append(cart.Items, CartItem{
			BaseEntity: shared.NewBaseEntity(),
			CartID:     cart.ID,
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
		})
	}

	return cart, nil
}

// TotalQuantity returns the sum of all line quantities
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// ProductIDs returns the distinct product ids referenced by the cart
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
