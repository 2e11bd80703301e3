package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/metrics"
	"github.com/eldtechnologies/dispatch/internal/queue"
	"github.com/eldtechnologies/dispatch/internal/store"
)

// ToolContext identifies who an intent executes on behalf of.
type ToolContext struct {
	WorkspaceID   string      `json:"workspace_id"`
	UserID        string      `json:"user_id"`
	ResponderType VariantType `json:"responder_type"`
}

// Tools executes intents: direct effects write durable records, queue-worthy
// effects are deferred onto the job queues. Actual transport (email, SMS,
// telephony) is delegated to the external capabilities draining those queues
// and records.
type Tools struct {
	records store.RecordStore
	queues  *queue.Registry
	logger  zerolog.Logger
	now     func() time.Time
}

// NewTools creates the tool executor set.
func NewTools(records store.RecordStore, queues *queue.Registry, logger zerolog.Logger) *Tools {
	return &Tools{records: records, queues: queues, logger: logger, now: time.Now}
}

// ExecuteAll dispatches each intent to its executor. A failing intent is
// logged and does not abort its siblings; an unknown kind is a warning, not
// an error.
func (t *Tools) ExecuteAll(ctx context.Context, intents []Intent, tctx ToolContext) {
	for _, intent := range intents {
		if err := t.Execute(ctx, intent, tctx); err != nil {
			metrics.IntentsExecuted.WithLabelValues(string(intent.Kind), "failed").Inc()
			t.logger.Error().Err(err).
				Str("kind", string(intent.Kind)).
				Str("workspace_id", tctx.WorkspaceID).
				Msg("intent execution failed")
			continue
		}
		metrics.IntentsExecuted.WithLabelValues(string(intent.Kind), "ok").Inc()
	}
}

// Execute runs a single intent.
func (t *Tools) Execute(ctx context.Context, intent Intent, tctx ToolContext) error {
	switch intent.Kind {
	case IntentSendEmail:
		return t.sendEmail(ctx, intent.Payload, tctx)
	case IntentSendSMS:
		return t.sendSMS(ctx, intent.Payload, tctx)
	case IntentBookAppointment:
		return t.bookAppointment(ctx, intent.Payload, tctx)
	case IntentUpdateCRM:
		return t.updateCRM(ctx, intent.Payload, tctx)
	case IntentMakeCall:
		return t.makeCall(ctx, intent.Payload, tctx)
	case IntentTriggerWorkflow:
		return t.triggerWorkflow(ctx, intent.Payload, tctx)
	default:
		t.logger.Warn().Str("kind", string(intent.Kind)).Msg("unknown intent kind, skipping")
		return nil
	}
}

func (t *Tools) sendEmail(ctx context.Context, payload map[string]any, tctx ToolContext) error {
	return t.records.InsertCommLog(ctx, &store.CommLog{
		WorkspaceID:   tctx.WorkspaceID,
		UserID:        tctx.UserID,
		ResponderType: string(tctx.ResponderType),
		Channel:       "email",
		Recipient:     str(payload, "to"),
		Subject:       str(payload, "subject"),
		Body:          str(payload, "body"),
		Template:      str(payload, "template"),
		Status:        "sent",
	})
}

func (t *Tools) sendSMS(ctx context.Context, payload map[string]any, tctx ToolContext) error {
	return t.records.InsertCommLog(ctx, &store.CommLog{
		WorkspaceID:   tctx.WorkspaceID,
		UserID:        tctx.UserID,
		ResponderType: string(tctx.ResponderType),
		Channel:       "sms",
		Recipient:     str(payload, "to"),
		Body:          str(payload, "message"),
		Template:      str(payload, "template"),
		Status:        "sent",
	})
}

func (t *Tools) bookAppointment(ctx context.Context, payload map[string]any, tctx ToolContext) error {
	title := str(payload, "title")
	if title == "" {
		title = str(payload, "type")
	}
	if title == "" {
		title = "appointment"
	}

	status := str(payload, "status")
	if status == "" {
		status = "confirmed"
	}

	return t.records.InsertAppointment(ctx, &store.Appointment{
		WorkspaceID:   tctx.WorkspaceID,
		UserID:        tctx.UserID,
		ResponderType: string(tctx.ResponderType),
		Title:         title,
		StartTime:     timeVal(payload, "start_time"),
		EndTime:       timeVal(payload, "end_time"),
		AttendeeEmail: str(payload, "attendee_email"),
		Description:   str(payload, "description"),
		Status:        status,
	})
}

func (t *Tools) updateCRM(ctx context.Context, payload map[string]any, tctx ToolContext) error {
	return t.records.UpsertContact(ctx, &store.Contact{
		WorkspaceID: tctx.WorkspaceID,
		UserID:      tctx.UserID,
		Status:      str(payload, "status"),
		Notes:       str(payload, "notes"),
	})
}

// makeCall logs the call and defers it to the voice topic for the external
// telephony capability.
func (t *Tools) makeCall(ctx context.Context, payload map[string]any, tctx ToolContext) error {
	if err := t.records.InsertCommLog(ctx, &store.CommLog{
		WorkspaceID:   tctx.WorkspaceID,
		UserID:        tctx.UserID,
		ResponderType: string(tctx.ResponderType),
		Channel:       "call",
		Recipient:     str(payload, "to"),
		Status:        "initiated",
	}); err != nil {
		return err
	}

	_, err := t.queues.Queue(queue.TopicVoice).Enqueue(ctx, map[string]any{
		"type":    queue.JobProcessCall,
		"context": tctx,
		"data":    payload,
	}, 0)
	if err != nil {
		return fmt.Errorf("enqueue call: %w", err)
	}
	metrics.JobsEnqueued.WithLabelValues(queue.TopicVoice).Inc()
	return nil
}

// triggerWorkflow defers a workflow execution to the workflows topic.
func (t *Tools) triggerWorkflow(ctx context.Context, payload map[string]any, tctx ToolContext) error {
	_, err := t.queues.Queue(queue.TopicWorkflows).Enqueue(ctx, map[string]any{
		"type":    queue.JobExecuteWorkflow,
		"context": tctx,
		"data":    payload,
	}, 0)
	if err != nil {
		return fmt.Errorf("enqueue workflow: %w", err)
	}
	metrics.JobsEnqueued.WithLabelValues(queue.TopicWorkflows).Inc()
	return nil
}

func str(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func timeVal(payload map[string]any, key string) time.Time {
	switch v := payload[key].(type) {
	case time.Time:
		return v
	case string:
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts
		}
	}
	return time.Time{}
}
