// Package session holds the authenticated user's identity and drives the
// re-keying lifecycle of the per-user state stores (cart, favorites).
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// GuestNamespace is the storage namespace used when no user is signed in
const GuestNamespace = "guest"

// Identity describes the signed-in user
type Identity struct {
	ID       string
	Email    string
	Name     string
	Lastname string
}

// Listener reacts to session lifecycle transitions. The cart and
// favorites stores implement it to re-key their persisted slices.
type Listener interface {
	// OnIdentityChanged reloads the listener's persisted slice for the
	// new namespace. oldID is empty on initial hydration.
	OnIdentityChanged(ctx context.Context, oldID, newID string) error
	// OnLogout clears the listener's state and moves it to the guest
	// namespace.
	OnLogout(ctx context.Context) error
}

// SignOutFunc calls the remote sign-out endpoint
type SignOutFunc func(ctx context.Context) error

// Store is the session state container. It owns the identity, the
// hydration flag and the post-login redirect target. All methods are
// safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	user          *Identity
	authenticated bool
	hydrated      bool
	redirectURL   string

	signOut   SignOutFunc
	listeners []Listener
	logger    *zap.Logger
}

// New creates an empty session store. signOut may be nil when there is
// no remote session to terminate.
func New(signOut SignOutFunc, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		signOut: signOut,
		logger:  logger,
	}
}

// RegisterListener subscribes a listener to identity transitions.
// Must be called before the store is shared between goroutines.
func (s *Store) RegisterListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

// SetUser sets the identity; nil clears it. The authenticated flag is
// derived: true iff a non-nil identity is set. Listeners are notified
// when the namespace changes so they reload their persisted slices.
func (s *Store) SetUser(ctx context.Context, user *Identity) {
	s.mu.Lock()
	oldNS := s.namespaceLocked()
	if user != nil {
		copied := *user
		s.user = &copied
		s.authenticated = true
	} else {
		s.user = nil
		s.authenticated = false
	}
	newNS := s.namespaceLocked()
	s.mu.Unlock()

	if oldNS != newNS {
		s.notifyIdentityChanged(ctx, oldNS, newNS)
	}
}

// CurrentUser returns a copy of the identity, or nil when signed out
func (s *Store) CurrentUser() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	copied := *s.user
	return &copied
}

// IsAuthenticated reports whether a user is signed in. Callers must not
// branch on it before Hydrated() is true.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Hydrated reports whether persisted state has been loaded
func (s *Store) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// SetHydrated marks persisted state as loaded and triggers the initial
// load of the per-user stores. The flag flips at most once.
func (s *Store) SetHydrated(ctx context.Context) {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return
	}
	s.hydrated = true
	ns := s.namespaceLocked()
	s.mu.Unlock()

	s.notifyIdentityChanged(ctx, "", ns)
}

// SetRedirectURL records where to send the user after login
func (s *Store) SetRedirectURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirectURL = url
}

// ClearRedirectURL drops the recorded redirect target
func (s *Store) ClearRedirectURL() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirectURL = ""
}

// RedirectURL returns the recorded redirect target, or ""
func (s *Store) RedirectURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.redirectURL
}

// Namespace returns the storage namespace for the current identity
func (s *Store) Namespace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namespaceLocked()
}

// Logout terminates the session. The remote sign-out call is
// best-effort: failures are logged and swallowed. The cart and
// favorites stores are cleared and the local identity is dropped
// regardless of the remote outcome.
func (s *Store) Logout(ctx context.Context) {
	if s.signOut != nil {
		if err := s.signOut(ctx); err != nil {
			s.logger.Warn("Remote sign-out failed", zap.Error(err))
		}
	}

	for _, l := range s.listeners {
		if err := l.OnLogout(ctx); err != nil {
			s.logger.Warn("Listener logout failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.redirectURL = ""
	s.mu.Unlock()
}

func (s *Store) namespaceLocked() string {
	if s.user == nil {
		return GuestNamespace
	}
	return s.user.ID
}

func (s *Store) notifyIdentityChanged(ctx context.Context, oldNS, newNS string) {
	for _, l := range s.listeners {
		if err := l.OnIdentityChanged(ctx, oldNS, newNS); err != nil {
			s.logger.Warn("Listener rehydration failed",
				zap.String("old_namespace", oldNS),
				zap.String("new_namespace", newNS),
				zap.Error(err))
		}
	}
}
