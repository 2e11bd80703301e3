package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/store"
)

// LimitResult is the outcome of one rate-limit check.
type LimitResult struct {
	Allowed   bool
	Remaining int
	ResetTime int64 // start of the next window, epoch milliseconds
}

// RateLimiter counts requests per identifier in fixed time windows. Counting
// is fixed-window, not sliding: a burst straddling a window boundary can
// momentarily exceed the limit within a 2x window span. That boundary
// behavior is an accepted trade-off of the bucket scheme.
type RateLimiter struct {
	kv     store.KV
	prefix string
	logger zerolog.Logger
	now    func() time.Time
}

// NewRateLimiter creates a limiter with the given key prefix.
func NewRateLimiter(kv store.KV, prefix string, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{kv: kv, prefix: prefix, logger: logger, now: time.Now}
}

// Check increments the identifier's counter for the current window and
// reports whether the request is within the limit.
//
// On store error it fails OPEN: a store outage must not block legitimate
// traffic, so the caller sees allowed=true. Availability over strictness.
func (rl *RateLimiter) Check(ctx context.Context, identifier string, limit int, window time.Duration) LimitResult {
	nowMs := rl.now().UnixMilli()
	windowMs := window.Milliseconds()
	bucket := nowMs / windowMs
	key := fmt.Sprintf("%s:%s:%d", rl.prefix, identifier, bucket)

	count, err := rl.kv.IncrBy(ctx, key, 1)
	if err != nil {
		rl.logger.Warn().Err(err).Str("identifier", identifier).Msg("rate limit check failed, allowing")
		return LimitResult{
			Allowed:   true,
			Remaining: limit - 1,
			ResetTime: nowMs + windowMs,
		}
	}

	// First writer in the window arms expiry; the counter resets by key
	// expiration, never by an explicit zeroing.
	if count == 1 {
		if err := rl.kv.Expire(ctx, key, window); err != nil {
			rl.logger.Warn().Err(err).Str("key", key).Msg("rate limit expire failed")
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return LimitResult{
		Allowed:   count <= int64(limit),
		Remaining: remaining,
		ResetTime: (bucket + 1) * windowMs,
	}
}
