package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/metrics"
)

// Handler processes one job's payload. Returning an error marks the job
// failed; the worker does not re-enqueue it. Callers that need retries
// schedule explicit retry jobs with a delay.
type Handler func(ctx context.Context, job *Job) error

// Worker drains one topic on a fixed tick. Each tick promotes due delayed
// jobs, pops at most one job and runs the handler synchronously to
// completion before the next pop. Coordination between duplicate worker
// instances relies entirely on the atomic pop.
type Worker struct {
	queue    *Queue
	handler  Handler
	interval time.Duration
	logger   zerolog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewWorker creates a worker for the queue with the given tick interval.
func NewWorker(q *Queue, handler Handler, interval time.Duration, logger zerolog.Logger) *Worker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Worker{
		queue:    q,
		handler:  handler,
		interval: interval,
		logger:   logger.With().Str("topic", q.Topic()).Logger(),
	}
}

// Start launches the tick loop. Starting a running worker is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stop != nil {
		return
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})

	go w.run(w.stop, w.done)
	w.logger.Info().Dur("interval", w.interval).Msg("worker started")
}

// Stop halts the tick loop and waits for an in-flight job to finish.
// Stopping a stopped worker is a no-op.
func (w *Worker) Stop() {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop, w.done = nil, nil
	w.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	w.logger.Info().Msg("worker stopped")
}

func (w *Worker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

// tick performs one promote-then-drain pass. Store errors are logged and
// the pass skipped; the next tick retries.
func (w *Worker) tick() {
	ctx := context.Background()

	if err := w.queue.PromoteDelayed(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("delayed promotion failed")
		return
	}

	job, err := w.queue.Dequeue(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("dequeue failed")
		return
	}
	if job == nil {
		return
	}

	if err := w.handler(ctx, job); err != nil {
		metrics.JobsProcessed.WithLabelValues(w.queue.Topic(), "failed").Inc()
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("job handler failed")
		return
	}
	metrics.JobsProcessed.WithLabelValues(w.queue.Topic(), "done").Inc()
	w.logger.Debug().Str("job_id", job.ID).Msg("job processed")
}
