// Package store assembles the client-state stack: the API client, the
// session store and the per-user stores it re-keys.
package store

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/client"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/store/cart"
	"github.com/storefront/backend/internal/store/favorites"
	"github.com/storefront/backend/internal/store/kv"
	"github.com/storefront/backend/internal/store/productquery"
	"github.com/storefront/backend/internal/store/session"
)

// Config configures the storefront assembly
type Config struct {
	// APIBaseURL is the storefront API origin, e.g. "http://localhost:8080"
	APIBaseURL string
	// Redis selects the persistence backend. An empty Host means state
	// is kept in process memory.
	Redis cache.RedisConfig
	// StateTTL bounds how long an untouched cart or favorites slice is
	// retained in Redis; zero means no expiration. Ignored for the
	// in-memory backend.
	StateTTL time.Duration
	// Notifier receives cart UI notifications; may be nil
	Notifier cart.Notifier
	Logger   *zap.Logger
}

// Storefront is the assembled client-state stack. The session store is
// wired to re-key the cart and favorites stores on every identity
// transition, and the product query store fetches through the API
// client.
type Storefront struct {
	Client    *client.Client
	Session   *session.Store
	Cart      *cart.Store
	Favorites *favorites.Store
	Products  *productquery.Store

	// Tokens holds the access token attached to API requests. Set it
	// after a successful login; the transport refreshes it on expiry
	// and logout clears it.
	Tokens *client.TokenCache

	persistCloser io.Closer
}

// NewStorefront wires the client-state stack. State persists to Redis
// when configured, to process memory otherwise.
func NewStorefront(cfg Config) (*Storefront, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var persist kv.Store = kv.NewMemoryStore()
	var closer io.Closer
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisKVStore(cfg.Redis, cfg.StateTTL)
		if err != nil {
			return nil, err
		}
		persist = redisStore
		closer = redisStore
	}

	tokens := client.NewTokenCache()
	api := client.New(cfg.APIBaseURL,
		client.WithLogger(logger),
		client.WithAuthTransport(tokens),
	)

	cartOpts := []cart.Option{cart.WithLogger(logger)}
	if cfg.Notifier != nil {
		cartOpts = append(cartOpts, cart.WithNotifier(cfg.Notifier))
	}
	cartStore := cart.New(persist, cartOpts...)
	favoritesStore := favorites.New(persist, logger)

	// Sign-out also drops the cached access token, whatever the remote
	// call returned.
	signOut := func(ctx context.Context) error {
		err := api.SignOut(ctx)
		tokens.Clear()
		return err
	}

	sessionStore := session.New(signOut, logger)
	sessionStore.RegisterListener(cartStore)
	sessionStore.RegisterListener(favoritesStore)

	return &Storefront{
		Client:        api,
		Session:       sessionStore,
		Cart:          cartStore,
		Favorites:     favoritesStore,
		Products:      productquery.New(api, logger),
		Tokens:        tokens,
		persistCloser: closer,
	}, nil
}

// Close releases the persistence backend, if it holds a connection
func (s *Storefront) Close() error {
	if s.persistCloser != nil {
		return s.persistCloser.Close()
	}
	return nil
}
