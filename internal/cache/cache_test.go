package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/store"
)

// brokenKV fails every operation, standing in for an unreachable store.
type brokenKV struct{}

var errBroken = errors.New("store unavailable")

func (brokenKV) Close() error                                   { return nil }
func (brokenKV) Ping(ctx context.Context) error                 { return errBroken }
func (brokenKV) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errBroken
}
func (brokenKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errBroken
}
func (brokenKV) Delete(ctx context.Context, key string) error        { return errBroken }
func (brokenKV) Exists(ctx context.Context, key string) (bool, error) { return false, errBroken }
func (brokenKV) IncrBy(ctx context.Context, key string, by int64) (int64, error) {
	return 0, errBroken
}
func (brokenKV) Expire(ctx context.Context, key string, ttl time.Duration) error { return errBroken }
func (brokenKV) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return errBroken
}
func (brokenKV) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	return nil, errBroken
}
func (brokenKV) ZRem(ctx context.Context, key string, members ...string) error { return errBroken }
func (brokenKV) LPush(ctx context.Context, key, value string) error            { return errBroken }
func (brokenKV) RPop(ctx context.Context, key string) (string, bool, error) {
	return "", false, errBroken
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(store.NewMemstore(), "test", zerolog.Nop())

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	c.Set(ctx, "k", payload{Name: "a", Count: 3}, time.Minute)

	var got payload
	if !c.Get(ctx, "k", &got) {
		t.Fatal("Get should hit after Set")
	}
	if got.Name != "a" || got.Count != 3 {
		t.Fatalf("Get = %+v, want {a 3}", got)
	}

	if !c.Exists(ctx, "k") {
		t.Fatal("Exists should be true after Set")
	}

	c.Delete(ctx, "k")
	if c.Get(ctx, "k", &got) {
		t.Fatal("Get should miss after Delete")
	}
}

func TestCacheMiss(t *testing.T) {
	ctx := context.Background()
	c := New(store.NewMemstore(), "test", zerolog.Nop())

	var got string
	if c.Get(ctx, "absent", &got) {
		t.Fatal("Get on absent key should miss")
	}
	if c.Exists(ctx, "absent") {
		t.Fatal("Exists on absent key should be false")
	}
}

func TestCachePrefixIsolation(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemstore()
	a := New(kv, "a", zerolog.Nop())
	b := New(kv, "b", zerolog.Nop())

	a.Set(ctx, "k", "from-a", time.Minute)

	var got string
	if b.Get(ctx, "k", &got) {
		t.Fatal("prefixes should not share keys")
	}
}

func TestCacheIncrement(t *testing.T) {
	ctx := context.Background()
	c := New(store.NewMemstore(), "test", zerolog.Nop())

	if n := c.Increment(ctx, "n", 2); n != 2 {
		t.Fatalf("Increment = %d, want 2", n)
	}
	if n := c.Increment(ctx, "n", 3); n != 5 {
		t.Fatalf("Increment = %d, want 5", n)
	}
}

func TestCacheDegradesOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	c := New(brokenKV{}, "test", zerolog.Nop())

	// Every failure degrades to a miss or no-op, never a panic or error.
	c.Set(ctx, "k", "v", time.Minute)

	var got string
	if c.Get(ctx, "k", &got) {
		t.Fatal("Get against a failing store should miss")
	}
	if c.Exists(ctx, "k") {
		t.Fatal("Exists against a failing store should be false")
	}
	if n := c.Increment(ctx, "k", 1); n != 0 {
		t.Fatalf("Increment against a failing store = %d, want 0", n)
	}
	c.Delete(ctx, "k")
	c.Expire(ctx, "k", time.Minute)
}
