package queue

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/store"
)

// Topic names.
const (
	TopicWorkflows = "workflows"
	TopicAgents    = "agents"
	TopicVoice     = "voice"
)

// Workflow job types.
const (
	JobExecuteWorkflow = "execute_workflow"
	JobRetryWorkflow   = "retry_workflow"
	JobCleanupWorkflow = "cleanup_workflow"
)

// Agent job types.
const (
	JobProcessMessage = "process_message"
	JobTrainAgent     = "train_agent"
	JobUpdateMemory   = "update_memory"
)

// Voice job types.
const (
	JobProcessCall      = "process_call"
	JobTranscribeAudio  = "transcribe_audio"
	JobGenerateResponse = "generate_response"
)

// Registry owns one queue and at most one worker per topic. Each topic's
// handler is registered once at start-up; StartAll and StopAll control every
// worker's tick loop.
type Registry struct {
	kv       store.KV
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	queues  map[string]*Queue
	workers map[string]*Worker
}

// NewRegistry creates a registry whose workers tick at the given interval.
func NewRegistry(kv store.KV, interval time.Duration, logger zerolog.Logger) *Registry {
	return &Registry{
		kv:       kv,
		interval: interval,
		logger:   logger,
		queues:   make(map[string]*Queue),
		workers:  make(map[string]*Worker),
	}
}

// Queue returns the topic's queue, creating it on first use. Safe for
// concurrent use; tool executors call this on the request path.
func (r *Registry) Queue(topic string) *Queue {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.queues[topic]
	if !ok {
		q = NewQueue(r.kv, topic, r.logger)
		r.queues[topic] = q
	}
	return q
}

// Register binds a handler to a topic. Registering a topic twice replaces
// its worker; a running worker must be stopped first.
func (r *Registry) Register(topic string, handler Handler) {
	q := r.Queue(topic)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[topic] = NewWorker(q, handler, r.interval, r.logger)
}

// StartAll starts every registered worker.
func (r *Registry) StartAll() {
	for _, w := range r.snapshot() {
		w.Start()
	}
}

// StopAll stops every registered worker, waiting for in-flight jobs.
func (r *Registry) StopAll() {
	for _, w := range r.snapshot() {
		w.Stop()
	}
}

func (r *Registry) snapshot() []*Worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws := make([]*Worker, 0, len(r.workers))
	for _, w := range r.workers {
		ws = append(ws, w)
	}
	return ws
}
