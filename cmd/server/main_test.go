package main

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/agents"
	"github.com/eldtechnologies/dispatch/internal/engine"
	"github.com/eldtechnologies/dispatch/internal/queue"
	"github.com/eldtechnologies/dispatch/internal/store"
)

func workflowJob(t *testing.T, payload map[string]any) *queue.Job {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &queue.Job{ID: "job-1", Data: data, Status: queue.StatusPending}
}

func TestWorkflowHandlerExecutesCanonicalPayload(t *testing.T) {
	handler := workflowJobHandler(zerolog.Nop())

	job := workflowJob(t, map[string]any{
		"type":               queue.JobExecuteWorkflow,
		"workflowInstanceId": "abc",
	})
	if err := handler(context.Background(), job); err != nil {
		t.Fatalf("canonical execute_workflow payload failed: %v", err)
	}

	job = workflowJob(t, map[string]any{
		"type":               queue.JobRetryWorkflow,
		"workflowInstanceId": "abc",
	})
	if err := handler(context.Background(), job); err != nil {
		t.Fatalf("retry_workflow payload failed: %v", err)
	}
}

func TestWorkflowHandlerAcceptsToolPayload(t *testing.T) {
	handler := workflowJobHandler(zerolog.Nop())

	// The trigger_workflow tool carries the workflow name inside data.
	job := workflowJob(t, map[string]any{
		"type": queue.JobExecuteWorkflow,
		"data": map[string]any{"workflow_type": "follow_up_sequence"},
	})
	if err := handler(context.Background(), job); err != nil {
		t.Fatalf("tool-emitted payload failed: %v", err)
	}
}

func TestWorkflowHandlerRejectsMissingInstanceID(t *testing.T) {
	handler := workflowJobHandler(zerolog.Nop())

	job := workflowJob(t, map[string]any{"type": queue.JobExecuteWorkflow})
	if err := handler(context.Background(), job); err == nil {
		t.Fatal("execute_workflow without an instance id should error")
	}

	// Unknown and cleanup types are acknowledged, not failed.
	job = workflowJob(t, map[string]any{"type": queue.JobCleanupWorkflow})
	if err := handler(context.Background(), job); err != nil {
		t.Fatalf("cleanup_workflow failed: %v", err)
	}
	job = workflowJob(t, map[string]any{"type": "mystery"})
	if err := handler(context.Background(), job); err != nil {
		t.Fatalf("unknown job type should be dropped without error: %v", err)
	}
}

func TestWorkflowFailureIsDroppedNotRetried(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemstore()
	registry := queue.NewRegistry(kv, 5*time.Millisecond, zerolog.Nop())
	registry.Register(queue.TopicWorkflows, workflowJobHandler(zerolog.Nop()))

	q := registry.Queue(queue.TopicWorkflows)
	if _, err := q.Enqueue(ctx, map[string]any{"type": queue.JobExecuteWorkflow}, 0); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	registry.StartAll()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		pending, err := kv.Exists(ctx, "queue:workflows")
		if err != nil {
			t.Fatalf("Exists: %v", err)
		}
		if !pending {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	registry.StopAll()

	// The failed job is dropped: nothing re-enters the ready list and no
	// delayed retry is scheduled.
	delayed, err := kv.ZRangeByScore(ctx, "queue:workflows:delayed", math.Inf(-1), math.Inf(1))
	if err != nil {
		t.Fatalf("ZRangeByScore: %v", err)
	}
	if len(delayed) != 0 {
		t.Fatalf("failed workflow scheduled %d delayed jobs, want none: %v", len(delayed), delayed)
	}
	job, err := q.Dequeue(ctx)
	if err != nil || job != nil {
		t.Fatalf("ready list should stay empty after the drop, got %+v, %v", job, err)
	}
}

// singleReplyEngine answers every completion with one canned text.
type singleReplyEngine struct{ text string }

func (e singleReplyEngine) Complete(ctx context.Context, req engine.Request) (engine.Completion, error) {
	return engine.Completion{Text: e.text}, nil
}

type discardRecords struct{}

func (discardRecords) Close()                                                         {}
func (discardRecords) Ping(ctx context.Context) error                                 { return nil }
func (discardRecords) UpsertContact(ctx context.Context, c *store.Contact) error      { return nil }
func (discardRecords) InsertAppointment(ctx context.Context, a *store.Appointment) error {
	return nil
}
func (discardRecords) InsertCommLog(ctx context.Context, l *store.CommLog) error { return nil }
func (discardRecords) InsertInteraction(ctx context.Context, i *store.Interaction) error {
	return nil
}

func TestAgentHandlerRoutesQueuedMessage(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemstore()
	records := discardRecords{}
	registry := queue.NewRegistry(kv, time.Second, zerolog.Nop())
	memory := agents.NewMemory(kv)
	tools := agents.NewTools(records, registry, zerolog.Nop())
	router := agents.NewRouter(memory, tools, singleReplyEngine{text: "support"}, records, zerolog.Nop())

	handler := agentJobHandler(router, zerolog.Nop())

	job := workflowJob(t, map[string]any{
		"type":        queue.JobProcessMessage,
		"workspaceId": "ws",
		"userId":      "u1",
		"message":     "hello",
	})
	if err := handler(ctx, job); err != nil {
		t.Fatalf("process_message failed: %v", err)
	}

	// The queued message went through the same pipeline as HTTP routing.
	entries, err := memory.History(ctx, "ws", "u1", agents.VariantSupport, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("transcript holds %d entries, want the routed exchange", len(entries))
	}
}

func TestVoiceHandlerAcknowledgesJobs(t *testing.T) {
	handler := voiceJobHandler(zerolog.Nop())

	for _, typ := range []string{queue.JobProcessCall, queue.JobTranscribeAudio, queue.JobGenerateResponse, "mystery"} {
		job := workflowJob(t, map[string]any{"type": typ, "callId": "c-1"})
		if err := handler(context.Background(), job); err != nil {
			t.Fatalf("voice job %q failed: %v", typ, err)
		}
	}
}
