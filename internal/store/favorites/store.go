// Package favorites is the client-side favorites state container: a
// per-user set of product ids persisted under a namespaced key.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/store/kv"
	"github.com/storefront/backend/internal/store/session"
)

// Store is the favorites state container. All operations are
// idempotent: adding an already-favorited id and removing a missing id
// are no-ops. Every mutation persists synchronously under the current
// namespace.
type Store struct {
	mu        sync.RWMutex
	store     kv.Store
	logger    *zap.Logger
	namespace string
	ids       []string
}

// New creates an empty favorites store in the guest namespace
func New(store kv.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		store:     store,
		logger:    logger,
		namespace: session.GuestNamespace,
	}
}

// AddFavorite adds a product id to the set; a no-op when present
func (s *Store) AddFavorite(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.containsLocked(productID) {
		return nil
	}
	s.ids = append(s.ids, productID)
	return s.persistLocked(ctx)
}

// RemoveFavorite removes a product id from the set; a no-op when absent
func (s *Store) RemoveFavorite(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.ids {
		if id == productID {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// ToggleFavorite adds the id when absent and removes it when present
func (s *Store) ToggleFavorite(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.ids {
		if id == productID {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	s.ids = append(s.ids, productID)
	return s.persistLocked(ctx)
}

// IsFavorite reports set membership
func (s *Store) IsFavorite(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.containsLocked(productID)
}

// Favorites returns a copy of the favorited ids in insertion order
func (s *Store) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// ClearFavorites empties the set, persisting the empty slice under the
// current namespace only.
func (s *Store) ClearFavorites(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = nil
	return s.persistLocked(ctx)
}

// Namespace returns the namespace the set is currently keyed by
func (s *Store) Namespace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namespace
}

// OnIdentityChanged re-keys the set to the new namespace and loads its
// persisted slice, implementing session.Listener.
func (s *Store) OnIdentityChanged(ctx context.Context, _, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.namespace = newID
	return s.loadLocked(ctx)
}

// OnLogout empties the set, persists the empty slice for the outgoing
// namespace, and re-keys to the guest namespace with an empty slice.
func (s *Store) OnLogout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = nil
	if err := s.persistLocked(ctx); err != nil {
		return err
	}
	s.namespace = session.GuestNamespace
	return s.persistLocked(ctx)
}

func (s *Store) containsLocked(productID string) bool {
	for _, id := range s.ids {
		if id == productID {
			return true
		}
	}
	return false
}

func (s *Store) key() string {
	return "favorites:" + s.namespace
}

func (s *Store) persistLocked(ctx context.Context) error {
	encoded, err := json.Marshal(s.ids)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.store.Set(ctx, s.key(), string(encoded)); err != nil {
		s.logger.Warn("Failed to persist favorites", zap.String("namespace", s.namespace), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) loadLocked(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, s.key())
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	if !ok {
		s.ids = nil
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logger.Warn("Discarding corrupt favorites slice", zap.String("namespace", s.namespace), zap.Error(err))
		s.ids = nil
		return nil
	}
	s.ids = ids
	return nil
}

// Ensure Store implements session.Listener
var _ session.Listener = (*Store)(nil)
