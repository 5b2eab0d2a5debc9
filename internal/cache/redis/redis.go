// Package redis provides the networked cache backend registered as "redis".
//
// Values are stored as strings with a server-side expiry. Only JSON objects,
// JSON arrays and strings are accepted; objects and arrays are stored as
// their JSON encoding and decoded again on read. Every backend error is
// logged and swallowed.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/specialistvlad/fragmentgrid/internal/cache"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
)

// Type is the name the backend is registered under.
const Type = "redis"

// DefaultTTL is the expiry applied when none is configured.
const DefaultTTL = 60 * time.Second

// Cache is a cache.Cache backed by a redis server.
type Cache struct {
	client goredis.UniversalClient
	ttl    time.Duration
	prefix string
}

// New wraps an existing client.
func New(client goredis.UniversalClient, ttl time.Duration, prefix string) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl, prefix: prefix}
}

// Close releases the client's connections.
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Get reads key. Missing keys and backend errors are reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) (any, bool) {
	raw, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		ctxlog.FromContext(ctx).Error("Redis cache lookup failed.", "key", key, "error", err)
		return nil, false
	}
	return decode(raw), true
}

// Put stores value with the configured expiry.
func (c *Cache) Put(ctx context.Context, key string, value any) {
	logger := ctxlog.FromContext(ctx)
	encoded, err := encode(value)
	if err != nil {
		logger.Error("Redis cache rejected value.", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key(key), encoded, c.ttl).Err(); err != nil {
		logger.Error("Redis cache store failed.", "key", key, "error", err)
		return
	}
	logger.Debug("Redis cache stored value.", "key", key, "ttl", c.ttl)
}

func encode(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode value: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported value type %T: only JSON objects, arrays and strings can be cached", value)
	}
}

func decode(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return raw
}

// Create builds a cache from {url | address, password, db, ttl, prefix}
// where ttl is in seconds.
func Create(ctx context.Context, blob map[string]any) (cache.Cache, error) {
	opts, err := clientOptions(blob)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	ttlSeconds, err := config.Int(blob, "ttl", int(DefaultTTL/time.Second))
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	prefix, err := config.String(blob, "prefix", "")
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("Creating redis cache.", "address", opts.Addr, "db", opts.DB, "ttl_seconds", ttlSeconds)
	client := goredis.NewClient(opts)
	return New(client, time.Duration(ttlSeconds)*time.Second, prefix), nil
}

func clientOptions(blob map[string]any) (*goredis.Options, error) {
	url, err := config.String(blob, "url", "")
	if err != nil {
		return nil, err
	}
	if url != "" {
		opts, err := goredis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}

	addr, err := config.String(blob, "address", "localhost:6379")
	if err != nil {
		return nil, err
	}
	password, err := config.String(blob, "password", "")
	if err != nil {
		return nil, err
	}
	db, err := config.Int(blob, "db", 0)
	if err != nil {
		return nil, err
	}
	return &goredis.Options{Addr: addr, Password: password, DB: db}, nil
}

// Factory returns the registry descriptor for the backend.
func Factory() *cache.Factory {
	return &cache.Factory{Type: Type, Create: Create}
}
