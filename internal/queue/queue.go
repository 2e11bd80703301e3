// Package queue implements per-topic job queues over the KV store: a FIFO
// ready list plus a time-indexed delayed set, drained by polling workers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/store"
)

// Job statuses.
const (
	StatusPending = "pending"
	StatusDelayed = "delayed"
)

// Job is the envelope wrapped around every enqueued payload.
type Job struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	Status    string          `json:"status"`
}

// Queue is one named topic's job queue. Jobs enqueued without delay are
// pushed onto the head of the ready list and popped from the tail, so
// dequeue order is FIFO. Delayed jobs sit in a sorted set scored by their
// ready-at time until promoted.
type Queue struct {
	kv     store.KV
	topic  string
	logger zerolog.Logger
	now    func() time.Time
}

// NewQueue creates the queue for a topic.
func NewQueue(kv store.KV, topic string, logger zerolog.Logger) *Queue {
	return &Queue{kv: kv, topic: topic, logger: logger, now: time.Now}
}

// Topic returns the queue's topic name.
func (q *Queue) Topic() string {
	return q.topic
}

func (q *Queue) readyKey() string {
	return "queue:" + q.topic
}

func (q *Queue) delayedKey() string {
	return "queue:" + q.topic + ":delayed"
}

// Enqueue wraps the payload in a job envelope and makes it available on the
// topic, immediately or after the given delay. It returns the job id.
func (q *Queue) Enqueue(ctx context.Context, payload any, delay time.Duration) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	job := Job{
		ID:        uuid.New().String(),
		Data:      data,
		CreatedAt: q.now(),
		Status:    StatusPending,
	}
	if delay > 0 {
		job.Status = StatusDelayed
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}

	if delay > 0 {
		readyAt := q.now().Add(delay).UnixMilli()
		if err := q.kv.ZAdd(ctx, q.delayedKey(), float64(readyAt), string(raw)); err != nil {
			return "", fmt.Errorf("enqueue delayed on %s: %w", q.topic, err)
		}
		return job.ID, nil
	}

	if err := q.kv.LPush(ctx, q.readyKey(), string(raw)); err != nil {
		return "", fmt.Errorf("enqueue on %s: %w", q.topic, err)
	}
	return job.ID, nil
}

// PromoteDelayed moves every delayed job whose ready-at time has passed onto
// the ready list. It must run before each dequeue attempt so due jobs become
// visible.
func (q *Queue) PromoteDelayed(ctx context.Context) error {
	nowMs := float64(q.now().UnixMilli())
	due, err := q.kv.ZRangeByScore(ctx, q.delayedKey(), 0, nowMs)
	if err != nil {
		return fmt.Errorf("read delayed on %s: %w", q.topic, err)
	}

	for _, raw := range due {
		if err := q.kv.LPush(ctx, q.readyKey(), raw); err != nil {
			return fmt.Errorf("promote on %s: %w", q.topic, err)
		}
		if err := q.kv.ZRem(ctx, q.delayedKey(), raw); err != nil {
			return fmt.Errorf("remove promoted on %s: %w", q.topic, err)
		}
	}
	return nil
}

// Dequeue atomically pops one job from the ready list. The pop is the
// exactly-once hand-off: once returned, the job is invisible to every other
// worker. Returns nil when the queue is empty.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	raw, ok, err := q.kv.RPop(ctx, q.readyKey())
	if err != nil {
		return nil, fmt.Errorf("dequeue on %s: %w", q.topic, err)
	}
	if !ok {
		return nil, nil
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		q.logger.Warn().Err(err).Str("topic", q.topic).Msg("dropping malformed job")
		return nil, nil
	}
	return &job, nil
}
