// Package cache builds the availability-first layers on top of the KV store:
// a namespaced JSON cache, a fixed-window rate limiter and a session store.
// Nothing in this package returns a store error to its caller; failures are
// logged and degraded to a miss or a no-op.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/store"
)

// Cache is a namespaced JSON cache. Keys are stored as "{prefix}:{key}".
type Cache struct {
	kv     store.KV
	prefix string
	logger zerolog.Logger
}

// New creates a cache with the given key prefix.
func New(kv store.KV, prefix string, logger zerolog.Logger) *Cache {
	return &Cache{kv: kv, prefix: prefix, logger: logger}
}

func (c *Cache) key(key string) string {
	return c.prefix + ":" + key
}

// Get unmarshals the cached value into dest, returning false on a miss.
// Store errors degrade to a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	raw, ok, err := c.kv.Get(ctx, c.key(key))
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache get failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache value corrupt")
		return false
	}
	return true
}

// Set marshals and stores a value. A zero TTL means the key persists until
// deleted. Store errors are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache marshal failed")
		return
	}
	if err := c.kv.Set(ctx, c.key(key), string(raw), ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache set failed")
	}
}

// Delete removes a key. Store errors are logged and swallowed.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.kv.Delete(ctx, c.key(key)); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache delete failed")
	}
}

// Exists reports whether a key is present; false on store error.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	ok, err := c.kv.Exists(ctx, c.key(key))
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache exists failed")
		return false
	}
	return ok
}

// Increment atomically increments a counter, returning the new value; zero on
// store error.
func (c *Cache) Increment(ctx context.Context, key string, by int64) int64 {
	n, err := c.kv.IncrBy(ctx, c.key(key), by)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache increment failed")
		return 0
	}
	return n
}

// Expire sets a TTL on a key. Store errors are logged and swallowed.
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) {
	if err := c.kv.Expire(ctx, c.key(key), ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache expire failed")
	}
}
