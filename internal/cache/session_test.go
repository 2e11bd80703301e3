package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/store"
)

func TestSessionCreateGet(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(store.NewMemstore(), zerolog.Nop())

	id := s.Create(ctx, "user-1", map[string]any{"plan": "pro"}, 0)
	if id == "" {
		t.Fatal("Create should return a token")
	}

	payload, ok := s.Get(ctx, id)
	if !ok {
		t.Fatal("Get should find a fresh session")
	}
	if payload["plan"] != "pro" {
		t.Fatalf("payload = %v, want plan=pro", payload)
	}

	if _, ok := s.Get(ctx, "no-such-token"); ok {
		t.Fatal("Get on an unknown token should miss")
	}
}

func TestSessionUpdateMerges(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(store.NewMemstore(), zerolog.Nop())

	id := s.Create(ctx, "user-1", map[string]any{"plan": "pro", "step": "start"}, 0)
	s.Update(ctx, id, map[string]any{"step": "checkout", "cart": "c-9"})

	payload, ok := s.Get(ctx, id)
	if !ok {
		t.Fatal("session should survive Update")
	}
	if payload["plan"] != "pro" || payload["step"] != "checkout" || payload["cart"] != "c-9" {
		t.Fatalf("merged payload = %v", payload)
	}
}

func TestSessionDelete(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(store.NewMemstore(), zerolog.Nop())

	id := s.Create(ctx, "user-1", nil, 0)
	s.Delete(ctx, id)

	if _, ok := s.Get(ctx, id); ok {
		t.Fatal("session should be gone after Delete")
	}
}

func TestSessionSlidingExpiration(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kv := store.NewMemstoreWithClock(func() time.Time { return now })

	s := NewSessionStore(kv, zerolog.Nop())
	s.now = func() time.Time { return now }

	id := s.Create(ctx, "user-1", map[string]any{"k": "v"}, 0)

	// Reads inside the window keep re-arming the 24h TTL.
	for i := 0; i < 3; i++ {
		now = now.Add(20 * time.Hour)
		if _, ok := s.Get(ctx, id); !ok {
			t.Fatalf("session should still be alive after read %d", i+1)
		}
	}

	// With no reads the session lapses.
	now = now.Add(DefaultSessionTTL + time.Minute)
	if _, ok := s.Get(ctx, id); ok {
		t.Fatal("session should expire after an idle TTL window")
	}
}
