// Package cache defines the key/value contract used to memoize action
// output. Implementations are shared by every concurrent task execution and
// must be safe for concurrent use.
//
// A cache never fails the pipeline: lookups that cannot be served report a
// miss, and writes that cannot be stored are logged and dropped.
package cache

import "context"

// Cache is a key/value store with expiry.
type Cache interface {
	// Get returns the stored value, or false when the key is absent, expired,
	// or the backend could not be reached.
	Get(ctx context.Context, key string) (any, bool)
	// Put stores value under key. Failures are logged, never returned.
	Put(ctx context.Context, key string, value any)
}

// CreateFunc builds a cache from its opaque configuration.
type CreateFunc func(ctx context.Context, config map[string]any) (Cache, error)

// Factory describes a cache backend registered under Type.
type Factory struct {
	Type   string
	Create CreateFunc
}
