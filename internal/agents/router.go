package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/engine"
	"github.com/eldtechnologies/dispatch/internal/metrics"
	"github.com/eldtechnologies/dispatch/internal/store"
)

// fallbackVariant handles ambiguous or failed classifications.
const fallbackVariant = VariantSupport

// Router classifies an inbound message to a responder variant and
// dispatches it. Routing never returns an error: classification failures
// fall back to the support variant and run failures surface as apology
// replies.
type Router struct {
	responders map[VariantType]*Responder
	engine     engine.Engine
	records    store.RecordStore
	logger     zerolog.Logger
}

// NewRouter builds a router over the full variant set.
func NewRouter(memory *Memory, tools *Tools, eng engine.Engine, records store.RecordStore, logger zerolog.Logger) *Router {
	responders := make(map[VariantType]*Responder, len(Variants))
	for vt, v := range Variants {
		responders[vt] = NewResponder(v, memory, tools, eng, logger)
	}
	return &Router{
		responders: responders,
		engine:     eng,
		records:    records,
		logger:     logger,
	}
}

// Route classifies the message, dispatches to the chosen responder and logs
// an audit record.
func (r *Router) Route(ctx context.Context, message string, actx Context) Reply {
	variant := r.classify(ctx, message, actx)
	metrics.MessagesRouted.WithLabelValues(string(variant)).Inc()

	reply := r.responders[variant].Run(ctx, message, actx)

	r.audit(ctx, variant, message, reply, actx)
	return reply
}

// classify asks the engine for exactly one variant name. Anything outside
// the known set, including engine errors, resolves to the support variant.
func (r *Router) classify(ctx context.Context, message string, actx Context) VariantType {
	completion, err := r.engine.Complete(ctx, engine.Request{
		User:        classificationPrompt(message, actx),
		MaxTokens:   10,
		Temperature: 0.1,
	})
	if err != nil {
		metrics.ClassificationFallbacks.Inc()
		r.logger.Warn().Err(err).Msg("classification failed, using support")
		return fallbackVariant
	}

	answer := VariantType(strings.ToLower(strings.TrimSpace(completion.Text)))
	if _, ok := r.responders[answer]; !ok {
		metrics.ClassificationFallbacks.Inc()
		r.logger.Warn().Str("answer", string(answer)).Msg("unknown classification, using support")
		return fallbackVariant
	}
	return answer
}

func classificationPrompt(message string, actx Context) string {
	businessName, industry := "Unknown", "Unknown"
	if actx.Business != nil {
		if actx.Business.Name != "" {
			businessName = actx.Business.Name
		}
		if actx.Business.Industry != "" {
			industry = actx.Business.Industry
		}
	}

	return fmt.Sprintf(`You are an AI agent router. Analyze the user message and determine which specialized agent should handle it.

Available agents:
- sales: Handle lead conversion, outbound calls, follow-ups, objections, booking sales calls
- support: Answer questions, troubleshoot issues, customer service, general inquiries
- appointment: Manage scheduling, calendar, reminders, confirmations, rescheduling
- voice: Handle phone calls, voice interactions (when message indicates phone/voice context)
- content: Create marketing content, social posts, emails, creative writing
- workflow: Build automations, configure workflows, technical setup

User message: "%s"

Business context: %s in %s industry

Respond with ONLY the agent type (sales, support, appointment, voice, content, or workflow).`,
		message, businessName, industry)
}

// audit logs the interaction and records it durably, best-effort.
func (r *Router) audit(ctx context.Context, variant VariantType, message string, reply Reply, actx Context) {
	r.logger.Info().
		Str("variant", string(variant)).
		Str("workspace_id", actx.WorkspaceID).
		Str("user_id", actx.UserID).
		Str("message", truncate(message, 100)).
		Str("reply", truncate(reply.Text, 100)).
		Msg("message routed")

	if r.records == nil {
		return
	}
	if err := r.records.InsertInteraction(ctx, &store.Interaction{
		WorkspaceID:   actx.WorkspaceID,
		UserID:        actx.UserID,
		ResponderType: string(variant),
		Message:       truncate(message, 1000),
		Reply:         truncate(reply.Text, 1000),
		CreatedAt:     time.Now(),
	}); err != nil {
		r.logger.Warn().Err(err).Msg("interaction audit write failed")
	}
}

// Capabilities returns static descriptive metadata per variant for UI
// display.
func (r *Router) Capabilities() map[VariantType][]string {
	caps := make(map[VariantType][]string, len(Variants))
	for vt, v := range Variants {
		caps[vt] = v.Capabilities
	}
	return caps
}
