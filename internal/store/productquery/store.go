// Package productquery holds the product listing's filter, sort and
// pagination state together with the last-fetched result page.
package productquery

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/client"
)

// Lister is the external product-listing collaborator
type Lister interface {
	ListProducts(ctx context.Context, filters client.Filters) (*client.ListResponse, error)
}

// Pagination is the metadata of the held result page
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalCount  int64
}

// FilterPatch is a partial filter change. Nil fields are left
// unchanged; a nil Page resets pagination to page 1.
type FilterPatch struct {
	Page            *int
	Limit           *int
	Search          *string
	SortBy          *string
	Order           *string
	MinPrice        *float64
	MaxPrice        *float64
	Categories      []string
	ClearPriceBound bool
}

// Store is the product query state container. Concurrent fetches are
// resolved by a monotonic sequence number: a response belonging to a
// superseded request is discarded instead of overwriting newer state.
type Store struct {
	mu     sync.RWMutex
	lister Lister
	logger *zap.Logger

	filters    client.Filters
	products   []client.Product
	pagination Pagination
	loading    bool
	errMsg     string
	seq        uint64

	subscribers []func()
}

// New creates a product query store with default filters
func New(lister Lister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		lister:  lister,
		logger:  logger,
		filters: client.DefaultFilters(),
		pagination: Pagination{
			CurrentPage: 1,
			TotalPages:  1,
		},
	}
}

// Subscribe registers a callback invoked after every state change.
// Must be called before the store is shared between goroutines.
func (s *Store) Subscribe(fn func()) {
	s.subscribers = append(s.subscribers, fn)
}

// SetFilters merges a partial filter change into the current state.
// Unless the patch supplies a page explicitly, pagination resets to
// page 1.
func (s *Store) SetFilters(patch FilterPatch) {
	s.mu.Lock()
	if patch.Limit != nil {
		s.filters.Limit = *patch.Limit
	}
	if patch.Search != nil {
		s.filters.Search = *patch.Search
	}
	if patch.SortBy != nil {
		s.filters.SortBy = *patch.SortBy
	}
	if patch.Order != nil {
		s.filters.Order = *patch.Order
	}
	if patch.ClearPriceBound {
		s.filters.MinPrice = nil
		s.filters.MaxPrice = nil
	}
	if patch.MinPrice != nil {
		price := *patch.MinPrice
		s.filters.MinPrice = &price
	}
	if patch.MaxPrice != nil {
		price := *patch.MaxPrice
		s.filters.MaxPrice = &price
	}
	if patch.Categories != nil {
		s.filters.Categories = append([]string(nil), patch.Categories...)
	}
	if patch.Page != nil {
		s.filters.Page = *patch.Page
	} else {
		s.filters.Page = 1
	}
	s.mu.Unlock()

	s.notify()
}

// FetchProducts queries the listing collaborator with the current
// filters. On success the held products and pagination are replaced;
// on failure the list is emptied and the error message recorded. There
// is no automatic retry. A response that arrives after a newer fetch
// was issued is discarded.
func (s *Store) FetchProducts(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	filters := s.filters
	filters.Categories = append([]string(nil), s.filters.Categories...)
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()

	result, err := s.lister.ListProducts(ctx, filters)

	s.mu.Lock()
	if seq != s.seq {
		// A newer fetch superseded this one; last issued wins.
		s.mu.Unlock()
		s.logger.Debug("Discarding stale product listing response", zap.Uint64("seq", seq))
		return nil
	}
	s.loading = false
	if err != nil {
		s.products = nil
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.notify()
		return err
	}
	s.products = result.Data
	s.pagination = Pagination{
		CurrentPage: result.Page,
		TotalPages:  result.TotalPages,
		TotalCount:  result.Count,
	}
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
	return nil
}

// Products returns a copy of the held result page
func (s *Store) Products() []client.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]client.Product, len(s.products))
	copy(products, s.products)
	return products
}

// Filters returns the current filter state
func (s *Store) Filters() client.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filters := s.filters
	filters.Categories = append([]string(nil), s.filters.Categories...)
	return filters
}

// Pagination returns the held pagination metadata
func (s *Store) Pagination() Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

// Loading reports whether a fetch is in flight
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last fetch error message, or "" after a success
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *Store) notify() {
	for _, fn := range s.subscribers {
		fn()
	}
}
