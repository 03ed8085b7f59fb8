// Package cart is the client-side cart state container: an ordered list
// of (product, quantity) line items persisted per user namespace.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/client"
	"github.com/storefront/backend/internal/store/kv"
	"github.com/storefront/backend/internal/store/session"
)

// LineItem is a (product, quantity) pair within the cart
type LineItem struct {
	Product  client.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Notifier receives fire-and-forget UI notification events. Failures
// are irrelevant for cart correctness.
type Notifier interface {
	ProductAdded(title string)
}

// Store is the cart state container. Invariants: at most one line item
// per product id, and quantity is always >= 1 (a decrement to 0 removes
// the line). Every mutation persists synchronously under the current
// namespace. The store deliberately does not cap quantity at available
// stock; that policy belongs to the caller.
type Store struct {
	mu        sync.RWMutex
	store     kv.Store
	notifier  Notifier
	logger    *zap.Logger
	namespace string
	items     []LineItem
}

// Option configures a Store
type Option func(*Store)

// WithNotifier sets the UI notification sink
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty cart store in the guest namespace
func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		store:     store,
		logger:    zap.NewNop(),
		namespace: session.GuestNamespace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddToCart increments the quantity of an existing line item, or
// inserts a new line with quantity 1. Persists immediately and emits a
// notification with the product's title.
func (s *Store) AddToCart(ctx context.Context, product client.Product) error {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].Product.ID == product.ID {
			s.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, LineItem{Product: product, Quantity: 1})
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.ProductAdded(product.Title)
	}
	return err
}

// RemoveFromCart decrements the quantity of the line item; at quantity
// 1 the line item is removed entirely. Unknown ids are a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID != productID {
			continue
		}
		if s.items[i].Quantity > 1 {
			s.items[i].Quantity--
		} else {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		return s.persistLocked(ctx)
	}
	return nil
}

// DeleteFromCart removes the line item regardless of quantity
func (s *Store) DeleteFromCart(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// ClearCart empties the cart, persisting the empty list under the
// current namespace only.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.persistLocked(ctx)
}

// Items returns a copy of the line items in insertion order
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return items
}

// CartCount returns the sum of all line-item quantities
func (s *Store) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Namespace returns the namespace the cart is currently keyed by
func (s *Store) Namespace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namespace
}

// OnIdentityChanged re-keys the cart to the new namespace and loads its
// persisted slice, implementing session.Listener.
func (s *Store) OnIdentityChanged(ctx context.Context, _, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.namespace = newID
	return s.loadLocked(ctx)
}

// OnLogout empties the cart, persists the empty slice for the outgoing
// namespace, and re-keys to the guest namespace with an empty slice.
func (s *Store) OnLogout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.persistLocked(ctx); err != nil {
		return err
	}
	s.namespace = session.GuestNamespace
	return s.persistLocked(ctx)
}

func (s *Store) key() string {
	return "cart:" + s.namespace
}

func (s *Store) persistLocked(ctx context.Context) error {
	encoded, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Set(ctx, s.key(), string(encoded)); err != nil {
		s.logger.Warn("Failed to persist cart", zap.String("namespace", s.namespace), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) loadLocked(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, s.key())
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	if !ok {
		s.items = nil
		return nil
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// A corrupt slice is discarded rather than wedging the cart.
		s.logger.Warn("Discarding corrupt cart slice", zap.String("namespace", s.namespace), zap.Error(err))
		s.items = nil
		return nil
	}
	s.items = items
	return nil
}

// Ensure Store implements session.Listener
var _ session.Listener = (*Store)(nil)
