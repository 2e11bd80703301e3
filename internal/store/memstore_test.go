package store

import (
	"context"
	"testing"
	"time"
)

func TestMemstoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemstore()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get missing = ok=%v err=%v, want miss", ok, err)
	}

	if err := s.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || val != "v" {
		t.Fatalf("Get = %q ok=%v err=%v, want %q", val, ok, err, "v")
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("Get after Delete should miss")
	}
}

func TestMemstoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemstoreWithClock(func() time.Time { return now })

	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("key should exist before expiry")
	}

	now = now.Add(59 * time.Second)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("key should still exist within TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("key should expire after TTL")
	}
	if ok, _ := s.Exists(ctx, "k"); ok {
		t.Fatal("Exists should report expired key as absent")
	}
}

func TestMemstoreIncrBy(t *testing.T) {
	ctx := context.Background()
	s := NewMemstore()

	n, err := s.IncrBy(ctx, "counter", 1)
	if err != nil || n != 1 {
		t.Fatalf("first IncrBy = %d, %v, want 1", n, err)
	}
	n, err = s.IncrBy(ctx, "counter", 4)
	if err != nil || n != 5 {
		t.Fatalf("second IncrBy = %d, %v, want 5", n, err)
	}

	if err := s.Set(ctx, "text", "abc", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := s.IncrBy(ctx, "text", 1); err == nil {
		t.Fatal("IncrBy on non-integer value should error")
	}
}

func TestMemstoreExpireArmsTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemstoreWithClock(func() time.Time { return now })

	if _, err := s.IncrBy(ctx, "counter", 1); err != nil {
		t.Fatalf("IncrBy: %v", err)
	}
	if err := s.Expire(ctx, "counter", time.Second); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	now = now.Add(2 * time.Second)
	if ok, _ := s.Exists(ctx, "counter"); ok {
		t.Fatal("counter should expire")
	}
}

func TestMemstoreZSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemstore()

	for _, m := range []struct {
		member string
		score  float64
	}{
		{"c", 30},
		{"a", 10},
		{"b", 20},
	} {
		if err := s.ZAdd(ctx, "z", m.score, m.member); err != nil {
			t.Fatalf("ZAdd(%s): %v", m.member, err)
		}
	}

	got, err := s.ZRangeByScore(ctx, "z", 0, 25)
	if err != nil {
		t.Fatalf("ZRangeByScore: %v", err)
	}
	want := []string{"a", "b"}
	if len(got) != len(want) {
		t.Fatalf("ZRangeByScore = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ZRangeByScore = %v, want %v", got, want)
		}
	}

	// Re-adding a member updates its score in place.
	if err := s.ZAdd(ctx, "z", 5, "c"); err != nil {
		t.Fatalf("ZAdd update: %v", err)
	}
	got, _ = s.ZRangeByScore(ctx, "z", 0, 6)
	if len(got) != 1 || got[0] != "c" {
		t.Fatalf("after score update got %v, want [c]", got)
	}

	if err := s.ZRem(ctx, "z", "a", "b"); err != nil {
		t.Fatalf("ZRem: %v", err)
	}
	got, _ = s.ZRangeByScore(ctx, "z", 0, 100)
	if len(got) != 1 || got[0] != "c" {
		t.Fatalf("after ZRem got %v, want [c]", got)
	}
}

func TestMemstoreListFIFO(t *testing.T) {
	ctx := context.Background()
	s := NewMemstore()

	for _, v := range []string{"first", "second", "third"} {
		if err := s.LPush(ctx, "q", v); err != nil {
			t.Fatalf("LPush(%s): %v", v, err)
		}
	}

	for _, want := range []string{"first", "second", "third"} {
		got, ok, err := s.RPop(ctx, "q")
		if err != nil || !ok || got != want {
			t.Fatalf("RPop = %q ok=%v err=%v, want %q", got, ok, err, want)
		}
	}

	if _, ok, _ := s.RPop(ctx, "q"); ok {
		t.Fatal("RPop on empty list should report miss")
	}
}
