package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/eldtechnologies/dispatch/internal/store"
)

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// conversationsKey is the reserved memory key holding a tuple's transcript.
const conversationsKey = "conversations"

// maxConversationLen caps the stored transcript; the oldest entries are
// evicted first.
const maxConversationLen = 50

// defaultHistoryLimit is how many transcript entries a run loads by default.
const defaultHistoryLimit = 10

// MemoryRecord is the stored form of one memory value.
type MemoryRecord struct {
	Value     json.RawMessage `json:"value"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ConversationEntry is one appended transcript turn.
type ConversationEntry struct {
	ID        string         `json:"id"` // ULID, time-ordered
	Message   string         `json:"message"`
	Role      Role           `json:"role"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Memory is the durable per-(workspace, user, responder) key-value store,
// including each tuple's capped conversation transcript. Unlike the cache,
// memory I/O errors surface to the caller; the responder run treats them as
// run failures.
type Memory struct {
	kv  store.KV
	now func() time.Time
}

// NewMemory creates a Memory on the shared KV store.
func NewMemory(kv store.KV) *Memory {
	return &Memory{kv: kv, now: time.Now}
}

func recordKey(workspaceID, userID string, variant VariantType, key string) string {
	return fmt.Sprintf("memory:%s:%s:%s:k:%s", workspaceID, userID, variant, key)
}

func indexKey(workspaceID, userID string, variant VariantType) string {
	return fmt.Sprintf("memory:%s:%s:%s:index", workspaceID, userID, variant)
}

// Store upserts a value under the tuple's key; last write wins.
func (m *Memory) Store(ctx context.Context, workspaceID, userID string, variant VariantType, key string, value any, metadata map[string]any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal memory value: %w", err)
	}

	now := m.now()
	rec, err := json.Marshal(MemoryRecord{
		Value:     raw,
		Metadata:  metadata,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("marshal memory record: %w", err)
	}

	if err := m.kv.Set(ctx, recordKey(workspaceID, userID, variant, key), string(rec), 0); err != nil {
		return fmt.Errorf("store memory %q: %w", key, err)
	}

	// Index the key so RetrieveAll and ClearAll can enumerate the tuple.
	if err := m.kv.ZAdd(ctx, indexKey(workspaceID, userID, variant), float64(now.UnixMilli()), key); err != nil {
		return fmt.Errorf("index memory %q: %w", key, err)
	}
	return nil
}

// Retrieve unmarshals the value at the tuple's key into dest. The first
// return is false when the key is absent.
func (m *Memory) Retrieve(ctx context.Context, workspaceID, userID string, variant VariantType, key string, dest any) (bool, error) {
	raw, ok, err := m.kv.Get(ctx, recordKey(workspaceID, userID, variant, key))
	if err != nil {
		return false, fmt.Errorf("retrieve memory %q: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	var rec MemoryRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return false, fmt.Errorf("decode memory %q: %w", key, err)
	}
	if err := json.Unmarshal(rec.Value, dest); err != nil {
		return false, fmt.Errorf("decode memory value %q: %w", key, err)
	}
	return true, nil
}

// RetrieveAll returns every key's raw value for the tuple.
func (m *Memory) RetrieveAll(ctx context.Context, workspaceID, userID string, variant VariantType) (map[string]json.RawMessage, error) {
	keys, err := m.kv.ZRangeByScore(ctx, indexKey(workspaceID, userID, variant), negInf, posInf)
	if err != nil {
		return nil, fmt.Errorf("list memory keys: %w", err)
	}

	all := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		raw, ok, err := m.kv.Get(ctx, recordKey(workspaceID, userID, variant, key))
		if err != nil {
			return nil, fmt.Errorf("retrieve memory %q: %w", key, err)
		}
		if !ok {
			continue
		}
		var rec MemoryRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		all[key] = rec.Value
	}
	return all, nil
}

// Delete removes one key for the tuple.
func (m *Memory) Delete(ctx context.Context, workspaceID, userID string, variant VariantType, key string) error {
	if err := m.kv.Delete(ctx, recordKey(workspaceID, userID, variant, key)); err != nil {
		return fmt.Errorf("delete memory %q: %w", key, err)
	}
	return m.kv.ZRem(ctx, indexKey(workspaceID, userID, variant), key)
}

// ClearAll removes every key for the tuple. An empty variant clears all
// responder types for the (workspace, user) pair.
func (m *Memory) ClearAll(ctx context.Context, workspaceID, userID string, variant VariantType) error {
	variants := []VariantType{variant}
	if variant == "" {
		variants = VariantTypes
	}

	for _, v := range variants {
		keys, err := m.kv.ZRangeByScore(ctx, indexKey(workspaceID, userID, v), negInf, posInf)
		if err != nil {
			return fmt.Errorf("list memory keys: %w", err)
		}
		for _, key := range keys {
			if err := m.kv.Delete(ctx, recordKey(workspaceID, userID, v, key)); err != nil {
				return fmt.Errorf("clear memory %q: %w", key, err)
			}
		}
		if err := m.kv.Delete(ctx, indexKey(workspaceID, userID, v)); err != nil {
			return fmt.Errorf("clear memory index: %w", err)
		}
	}
	return nil
}

// StoreConversation appends one turn to the tuple's transcript, evicting the
// oldest entries beyond the cap.
func (m *Memory) StoreConversation(ctx context.Context, workspaceID, userID string, variant VariantType, message string, role Role, metadata map[string]any) error {
	var entries []ConversationEntry
	if _, err := m.Retrieve(ctx, workspaceID, userID, variant, conversationsKey, &entries); err != nil {
		return err
	}

	entries = append(entries, ConversationEntry{
		ID:        ulid.Make().String(),
		Message:   message,
		Role:      role,
		Timestamp: m.now(),
		Metadata:  metadata,
	})

	if len(entries) > maxConversationLen {
		entries = entries[len(entries)-maxConversationLen:]
	}

	return m.Store(ctx, workspaceID, userID, variant, conversationsKey, entries, nil)
}

// History returns the most recent limit transcript entries, oldest-first.
// A non-positive limit uses the default of 10.
func (m *Memory) History(ctx context.Context, workspaceID, userID string, variant VariantType, limit int) ([]ConversationEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var entries []ConversationEntry
	if _, err := m.Retrieve(ctx, workspaceID, userID, variant, conversationsKey, &entries); err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
