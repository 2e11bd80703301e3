package store

import (
	"context"
	"time"
)

// KV defines the key-value primitives everything above the store is built on:
// plain keys with optional TTLs, atomic counters, sorted sets for time-indexed
// data, and lists for queue hand-off. Both RedisStore and Memstore implement
// this interface.
//
// Every operation may fail transiently (network, timeout). Callers are
// expected to catch failures and degrade to a safe default rather than
// propagate them upward.
type KV interface {
	// Connection management
	Close() error
	Ping(ctx context.Context) error

	// Plain keys
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error // ttl 0 = no expiry
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	IncrBy(ctx context.Context, key string, by int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Sorted sets
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)
	ZRem(ctx context.Context, key string, members ...string) error

	// Lists
	LPush(ctx context.Context, key, value string) error
	RPop(ctx context.Context, key string) (string, bool, error)
}
