package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sort fields accepted by the listing endpoint
const (
	SortByTitle     = "title"
	SortByPrice     = "price"
	SortByCreatedAt = "created_at"
)

// DefaultPageSize is used when the caller does not supply a limit
const DefaultPageSize = 10

// MaxPageSize caps the listing page size
const MaxPageSize = 100

// ListQuery holds the filter, sort and pagination parameters for a
// product listing request. Price bounds are inclusive; Categories is an
// OR-style subset match; Search is a substring match over title and
// description.
type ListQuery struct {
	Page       int
	Limit      int
	Search     string
	SortBy     string
	Order      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Categories []string
}

// Normalize clamps the query into the supported ranges and fills in
// defaults for missing values.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	switch q.SortBy {
	case SortByTitle, SortByPrice, SortByCreatedAt:
	default:
		q.SortBy = SortByTitle
	}
	if strings.ToLower(q.Order) == "desc" {
		q.Order = "desc"
	} else {
		q.Order = "asc"
	}
}

// ProductRepository defines the persistence contract for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	List(ctx context.Context, query ListQuery) ([]Product, int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
