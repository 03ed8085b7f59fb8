package productquery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/client"
)

type fakeLister struct {
	calls   []client.Filters
	respond func(client.Filters) (*client.ListResponse, error)
}

func (f *fakeLister) ListProducts(_ context.Context, filters client.Filters) (*client.ListResponse, error) {
	f.calls = append(f.calls, filters)
	return f.respond(filters)
}

// blockingLister parks each call on its own gate so a test can decide
// the order in which in-flight responses land.
type blockingLister struct {
	mu      sync.Mutex
	started chan int
	gates   []chan struct{}
	results []*client.ListResponse
	calls   int
}

func (l *blockingLister) ListProducts(context.Context, client.Filters) (*client.ListResponse, error) {
	l.mu.Lock()
	idx := l.calls
	l.calls++
	l.mu.Unlock()

	l.started <- idx
	<-l.gates[idx]
	return l.results[idx], nil
}

func listingPage(filters client.Filters, count int64, titles ...string) *client.ListResponse {
	products := make([]client.Product, len(titles))
	for i, title := range titles {
		products[i] = client.Product{ID: title, Title: title}
	}
	totalPages := int(count) / filters.Limit
	if int(count)%filters.Limit != 0 {
		totalPages++
	}
	return &client.ListResponse{
		Data:       products,
		Page:       filters.Page,
		Limit:      filters.Limit,
		Count:      count,
		TotalPages: totalPages,
	}
}

func stringPtr(s string) *string  { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestSetFiltersResetsPage(t *testing.T) {
	store := New(nil, nil)
	store.SetFilters(FilterPatch{Page: intPtr(4)})
	require.Equal(t, 4, store.Filters().Page)

	store.SetFilters(FilterPatch{SortBy: stringPtr("price"), Order: stringPtr("desc")})

	filters := store.Filters()
	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, "price", filters.SortBy)
	assert.Equal(t, "desc", filters.Order)
}

func TestSetFiltersKeepsExplicitPage(t *testing.T) {
	store := New(nil, nil)
	store.SetFilters(FilterPatch{Page: intPtr(3)})
	assert.Equal(t, 3, store.Filters().Page)
}

func TestSetFiltersMergesPatch(t *testing.T) {
	store := New(nil, nil)
	store.SetFilters(FilterPatch{
		Search:     stringPtr("desk"),
		MinPrice:   floatPtr(10),
		MaxPrice:   floatPtr(500),
		Categories: []string{"furniture"},
	})
	store.SetFilters(FilterPatch{Limit: intPtr(24)})

	filters := store.Filters()
	assert.Equal(t, "desk", filters.Search)
	assert.Equal(t, 24, filters.Limit)
	require.NotNil(t, filters.MinPrice)
	assert.Equal(t, 10.0, *filters.MinPrice)
	require.NotNil(t, filters.MaxPrice)
	assert.Equal(t, 500.0, *filters.MaxPrice)
	assert.Equal(t, []string{"furniture"}, filters.Categories)
}

func TestSetFiltersClearsPriceBounds(t *testing.T) {
	store := New(nil, nil)
	store.SetFilters(FilterPatch{MinPrice: floatPtr(10), MaxPrice: floatPtr(500)})
	store.SetFilters(FilterPatch{ClearPriceBound: true})

	filters := store.Filters()
	assert.Nil(t, filters.MinPrice)
	assert.Nil(t, filters.MaxPrice)
}

func TestFetchProductsSuccess(t *testing.T) {
	lister := &fakeLister{
		respond: func(filters client.Filters) (*client.ListResponse, error) {
			return listingPage(filters, 25, "Walnut Desk", "Oak Chair"), nil
		},
	}
	store := New(lister, nil)
	store.SetFilters(FilterPatch{Limit: intPtr(10)})

	require.NoError(t, store.FetchProducts(context.Background()))

	assert.Len(t, store.Products(), 2)
	assert.False(t, store.Loading())
	assert.Empty(t, store.Err())

	pagination := store.Pagination()
	assert.Equal(t, 1, pagination.CurrentPage)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, int64(25), pagination.TotalCount)
}

func TestFetchProductsFailure(t *testing.T) {
	fail := false
	lister := &fakeLister{
		respond: func(filters client.Filters) (*client.ListResponse, error) {
			if fail {
				return nil, errors.New("listing unavailable")
			}
			return listingPage(filters, 1, "Walnut Desk"), nil
		},
	}
	store := New(lister, nil)
	store.SetFilters(FilterPatch{Search: stringPtr("desk")})

	require.NoError(t, store.FetchProducts(context.Background()))
	require.Len(t, store.Products(), 1)

	fail = true
	require.Error(t, store.FetchProducts(context.Background()))

	assert.Empty(t, store.Products())
	assert.Equal(t, "listing unavailable", store.Err())
	assert.False(t, store.Loading())
	// the filter state survives the failure
	assert.Equal(t, "desk", store.Filters().Search)
}

func TestFetchProductsDiscardsStaleResponse(t *testing.T) {
	ctx := context.Background()
	lister := &blockingLister{
		started: make(chan int, 2),
		gates:   []chan struct{}{make(chan struct{}), make(chan struct{})},
	}
	store := New(lister, nil)
	lister.results = []*client.ListResponse{
		listingPage(store.Filters(), 1, "stale"),
		listingPage(store.Filters(), 1, "fresh"),
	}

	firstDone := make(chan error, 1)
	go func() { firstDone <- store.FetchProducts(ctx) }()
	require.Equal(t, 0, <-lister.started)

	secondDone := make(chan error, 1)
	go func() { secondDone <- store.FetchProducts(ctx) }()
	require.Equal(t, 1, <-lister.started)

	// the newer fetch lands first, then the superseded one returns
	close(lister.gates[1])
	require.NoError(t, <-secondDone)
	close(lister.gates[0])
	require.NoError(t, <-firstDone)

	products := store.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "fresh", products[0].Title)
}

func TestSubscribeNotifiedOnChanges(t *testing.T) {
	lister := &fakeLister{
		respond: func(filters client.Filters) (*client.ListResponse, error) {
			return listingPage(filters, 0), nil
		},
	}
	store := New(lister, nil)

	notified := 0
	store.Subscribe(func() { notified++ })

	store.SetFilters(FilterPatch{Search: stringPtr("desk")})
	assert.Equal(t, 1, notified)

	require.NoError(t, store.FetchProducts(context.Background()))
	// once when loading starts, once when the result lands
	assert.Equal(t, 3, notified)
}
