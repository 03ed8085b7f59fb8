// Package cache provides Redis-backed implementations of the kv.Store
// port used by the client-state stores.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/backend/internal/store/kv"
)

// RedisKVStore implements kv.Store on Redis. Suitable for deployments
// where client state (cart, favorites slices) must survive restarts and
// be shared across instances.
type RedisKVStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisKVStore creates a new Redis-backed KV store. ttl bounds how
// long an untouched slice is retained; zero means no expiration.
func NewRedisKVStore(cfg RedisConfig, ttl time.Duration) (*RedisKVStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisKVStore{
		client:    client,
		keyPrefix: "clientstate:",
		ttl:       ttl,
	}, nil
}

// NewRedisKVStoreWithClient creates a store with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisKVStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisKVStore {
	if keyPrefix == "" {
		keyPrefix = "clientstate:"
	}
	return &RedisKVStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the value stored under key, reporting presence separately
func (s *RedisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, refreshing the TTL
func (s *RedisKVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisKVStore) Close() error {
	return s.client.Close()
}

var _ kv.Store = (*RedisKVStore)(nil)
