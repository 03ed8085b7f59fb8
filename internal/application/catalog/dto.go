package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/catalog"
)

// ListProductsInput carries the listing filter, sort and pagination
// parameters as received from the transport layer.
type ListProductsInput struct {
	Page       int
	Limit      int
	Search     string
	SortBy     string
	Order      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Categories []string
}

// ProductView is the client-facing shape of a product. Prices are
// exposed as plain numbers on the wire; the domain keeps decimals.
type ProductView struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Categories   []string  `json:"categories"`
	MainImageURL string    `json:"main_image_url"`
	Stock        int       `json:"stock"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListProductsResult is the paginated listing response
type ListProductsResult struct {
	Data       []ProductView `json:"data"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Count      int64         `json:"count"`
	TotalPages int           `json:"totalPages"`
}

// NewProductView maps a domain product to its client-facing shape
func NewProductView(p *catalog.Product) ProductView {
	categories := p.Categories
	if categories == nil {
		categories = []string{}
	}
	return ProductView{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price.InexactFloat64(),
		Categories:   categories,
		MainImageURL: p.MainImageURL,
		Stock:        p.Stock,
		CreatedAt:    p.CreatedAt,
	}
}
