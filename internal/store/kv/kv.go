// Package kv defines the key-value port used by the state stores to
// persist their per-user slices. Values are opaque strings; callers are
// responsible for encoding. Implementations must be safe for concurrent
// use.
package kv

import "context"

// Store is the persistence port for the state stores
type Store interface {
	// Get returns the value for key. The boolean reports whether the
	// key was present; a missing key is not an error.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
