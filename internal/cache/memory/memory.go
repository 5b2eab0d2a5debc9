// Package memory provides the bounded, process-local cache backend registered
// as "in-memory". Entries expire a fixed time after they were written, and
// the least recently used entry is evicted once the size bound is reached.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/specialistvlad/fragmentgrid/internal/cache"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
)

// Type is the name the backend is registered under.
const Type = "in-memory"

const (
	DefaultMaximumSize = 1000
	DefaultTTL         = 5000 * time.Millisecond
)

// Options bounds the cache.
type Options struct {
	MaximumSize int
	TTL         time.Duration
}

// Cache is an in-process cache.Cache.
type Cache struct {
	lru *expirable.LRU[string, any]
}

// New creates a cache. Zero options fall back to the defaults.
func New(opts Options) *Cache {
	if opts.MaximumSize <= 0 {
		opts.MaximumSize = DefaultMaximumSize
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Cache{lru: expirable.NewLRU[string, any](opts.MaximumSize, nil, opts.TTL)}
}

// Get returns a live entry.
func (c *Cache) Get(ctx context.Context, key string) (any, bool) {
	return c.lru.Get(key)
}

// Put stores value, evicting the oldest entry when full.
func (c *Cache) Put(ctx context.Context, key string, value any) {
	if evicted := c.lru.Add(key, value); evicted {
		ctxlog.FromContext(ctx).Debug("In-memory cache evicted an entry.", "size", c.lru.Len())
	}
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Create builds a cache from {maximumSize, ttl} where ttl is in milliseconds.
func Create(ctx context.Context, blob map[string]any) (cache.Cache, error) {
	size, err := config.Int(blob, "maximumSize", DefaultMaximumSize)
	if err != nil {
		return nil, fmt.Errorf("in-memory cache: %w", err)
	}
	ttl, err := config.Millis(blob, "ttl", DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("in-memory cache: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Creating in-memory cache.", "maximumSize", size, "ttl", ttl)
	return New(Options{MaximumSize: size, TTL: ttl}), nil
}

// Factory returns the registry descriptor for the backend.
func Factory() *cache.Factory {
	return &cache.Factory{Type: Type, Create: Create}
}
