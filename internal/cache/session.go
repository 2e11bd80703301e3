package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/store"
)

// DefaultSessionTTL is the sliding expiration window for sessions.
const DefaultSessionTTL = 24 * time.Hour

// Session is the stored form of one session token's state.
type Session struct {
	OwnerID        string         `json:"owner_id"`
	Payload        map[string]any `json:"payload"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
}

// SessionStore maps opaque tokens to session payloads with sliding
// expiration: every successful read re-arms the default TTL.
type SessionStore struct {
	cache *Cache
	now   func() time.Time
}

// NewSessionStore creates a session store namespaced under "session".
func NewSessionStore(kv store.KV, logger zerolog.Logger) *SessionStore {
	return &SessionStore{
		cache: New(kv, "session", logger),
		now:   time.Now,
	}
}

// Create stores a new session and returns its opaque token. A zero ttl uses
// the 24-hour default.
func (s *SessionStore) Create(ctx context.Context, ownerID string, payload map[string]any, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	id := uuid.New().String()
	now := s.now()
	s.cache.Set(ctx, id, Session{
		OwnerID:        ownerID,
		Payload:        payload,
		CreatedAt:      now,
		LastAccessedAt: now,
	}, ttl)
	return id
}

// Get returns the session payload, bumping last access and re-arming the
// default TTL. The second return is false when the session is absent or
// expired.
func (s *SessionStore) Get(ctx context.Context, id string) (map[string]any, bool) {
	var sess Session
	if !s.cache.Get(ctx, id, &sess) {
		return nil, false
	}
	sess.LastAccessedAt = s.now()
	s.cache.Set(ctx, id, sess, DefaultSessionTTL)
	return sess.Payload, true
}

// Update shallow-merges partial into the stored payload, bumping last access
// and re-arming the default TTL. No-ops if the session does not exist.
func (s *SessionStore) Update(ctx context.Context, id string, partial map[string]any) {
	var sess Session
	if !s.cache.Get(ctx, id, &sess) {
		return
	}
	if sess.Payload == nil {
		sess.Payload = make(map[string]any)
	}
	for k, v := range partial {
		sess.Payload[k] = v
	}
	sess.LastAccessedAt = s.now()
	s.cache.Set(ctx, id, sess, DefaultSessionTTL)
}

// Delete removes a session unconditionally.
func (s *SessionStore) Delete(ctx context.Context, id string) {
	s.cache.Delete(ctx, id)
}

// Extend re-arms the TTL without touching the payload. A zero ttl uses the
// default.
func (s *SessionStore) Extend(ctx context.Context, id string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s.cache.Expire(ctx, id, ttl)
}
