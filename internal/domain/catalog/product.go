package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a sellable item in the storefront catalog.
// It is the aggregate root for catalog operations.
type Product struct {
	shared.BaseEntity
	Title        string          `gorm:"type:varchar(200);not null;index"`
	Description  string          `gorm:"type:text"`
	Price        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0;index"`
	Categories   []string        `gorm:"serializer:json;type:text"`
	MainImageURL string          `gorm:"type:text"`
	Stock        int             `gorm:"not null;default:0"`
	Status       ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product in active status
func NewProduct(title, description string, price decimal.Decimal) (*Product, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return &Product{
		BaseEntity:  shared.NewBaseEntity(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Price:       price,
		Categories:  []string{},
		Status:      ProductStatusActive,
	}, nil
}

// Update updates the product's basic information
func (p *Product) Update(title, description string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	p.Title = strings.TrimSpace(title)
	p.Description = description
	p.UpdatedAt = time.Now()
	return nil
}

// SetPrice updates the selling price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	p.Price = price
	p.UpdatedAt = time.Now()
	return nil
}

// SetStock replaces the available stock count
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}

// SetCategories replaces the product's category set, dropping duplicates
func (p *Product) SetCategories(categories []string) {
	seen := make(map[string]bool, len(categories))
	result := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	p.Categories = result
	p.UpdatedAt = time.Now()
}

// SetMainImageURL updates the primary product image
func (p *Product) SetMainImageURL(url string) {
	p.MainImageURL = url
	p.UpdatedAt = time.Now()
}

// Deactivate hides the product from the storefront listing
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
}

// Activate makes the product visible in the storefront listing
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
}

// IsActive returns whether the product can be listed and sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// InStock returns whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// HasCategory checks membership in the product's category set
func (p *Product) HasCategory(category string) bool {
	category = strings.ToLower(strings.TrimSpace(category))
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot exceed 200 characters")
	}
	return nil
}
