package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Memstore implements KV in process memory. It backs development mode when no
// REDIS_URL is configured, and tests. TTLs are honored lazily: an expired key
// is dropped the next time it is touched.
type Memstore struct {
	mu    sync.Mutex
	keys  map[string]memEntry
	zsets map[string]map[string]float64
	lists map[string][]string
	now   func() time.Time
}

type memEntry struct {
	value     string
	expiresAt time.Time // zero = no expiry
}

// NewMemstore creates an in-process store using the wall clock.
func NewMemstore() *Memstore {
	return NewMemstoreWithClock(time.Now)
}

// NewMemstoreWithClock creates an in-process store with an injected clock,
// so tests can control expiry.
func NewMemstoreWithClock(now func() time.Time) *Memstore {
	return &Memstore{
		keys:  make(map[string]memEntry),
		zsets: make(map[string]map[string]float64),
		lists: make(map[string][]string),
		now:   now,
	}
}

// Close is a no-op.
func (s *Memstore) Close() error { return nil }

// Ping is a no-op.
func (s *Memstore) Ping(ctx context.Context) error { return nil }

// expired reports whether an entry is past its TTL. Caller holds the lock.
func (s *Memstore) expired(e memEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

// Get retrieves a value. The second return is false when the key is absent
// or expired.
func (s *Memstore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.keys[key]
	if !ok {
		return "", false, nil
	}
	if s.expired(e) {
		delete(s.keys, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores a value. A zero TTL means the key persists until deleted.
func (s *Memstore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.keys[key] = e
	return nil
}

// Delete removes a key from every namespace.
func (s *Memstore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, key)
	delete(s.zsets, key)
	delete(s.lists, key)
	return nil
}

// Exists reports whether a key is present and unexpired.
func (s *Memstore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.keys[key]
	if !ok {
		if _, ok := s.zsets[key]; ok {
			return true, nil
		}
		if l, ok := s.lists[key]; ok && len(l) > 0 {
			return true, nil
		}
		return false, nil
	}
	if s.expired(e) {
		delete(s.keys, key)
		return false, nil
	}
	return true, nil
}

// IncrBy atomically increments a counter, creating the key at `by` if absent.
func (s *Memstore) IncrBy(ctx context.Context, key string, by int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.keys[key]
	if !ok || s.expired(e) {
		e = memEntry{value: "0"}
	}
	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, err
	}
	n += by
	e.value = strconv.FormatInt(n, 10)
	s.keys[key] = e
	return n, nil
}

// Expire sets a TTL on an existing key. Absent keys are ignored.
func (s *Memstore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.keys[key]
	if !ok || s.expired(e) {
		return nil
	}
	e.expiresAt = s.now().Add(ttl)
	s.keys[key] = e
	return nil
}

// ZAdd adds a member to a sorted set, updating the score if present.
func (s *Memstore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	zs, ok := s.zsets[key]
	if !ok {
		zs = make(map[string]float64)
		s.zsets[key] = zs
	}
	zs[member] = score
	return nil
}

// ZRangeByScore returns members with scores in [min, max], ascending by score.
func (s *Memstore) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	zs := s.zsets[key]
	type pair struct {
		member string
		score  float64
	}
	var matched []pair
	for m, sc := range zs {
		if sc >= min && sc <= max {
			matched = append(matched, pair{m, sc})
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].score != matched[j].score {
			return matched[i].score < matched[j].score
		}
		return matched[i].member < matched[j].member
	})

	members := make([]string, len(matched))
	for i, p := range matched {
		members[i] = p.member
	}
	return members, nil
}

// ZRem removes members from a sorted set.
func (s *Memstore) ZRem(ctx context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	zs := s.zsets[key]
	for _, m := range members {
		delete(zs, m)
	}
	if len(zs) == 0 {
		delete(s.zsets, key)
	}
	return nil
}

// LPush pushes a value onto the head of a list.
func (s *Memstore) LPush(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = append([]string{value}, s.lists[key]...)
	return nil
}

// RPop atomically pops a value from the tail of a list. The second return is
// false when the list is empty.
func (s *Memstore) RPop(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists[key]
	if len(l) == 0 {
		return "", false, nil
	}
	val := l[len(l)-1]
	s.lists[key] = l[:len(l)-1]
	return val, true, nil
}
