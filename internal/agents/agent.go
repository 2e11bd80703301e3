package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/engine"
)

// apologyText is returned whenever a run fails; the caller never sees a hard
// failure from a responder.
const apologyText = "I apologize, but I encountered an error. Please try again."

// Responder is one variant bound to its dependencies. All six responders
// share this run pipeline; the variant supplies the persona and the intent
// policy.
type Responder struct {
	variant Variant
	memory  *Memory
	tools   *Tools
	engine  engine.Engine
	logger  zerolog.Logger
	now     func() time.Time
}

// NewResponder binds a variant definition to its dependencies.
func NewResponder(v Variant, memory *Memory, tools *Tools, eng engine.Engine, logger zerolog.Logger) *Responder {
	return &Responder{
		variant: v,
		memory:  memory,
		tools:   tools,
		engine:  eng,
		logger:  logger.With().Str("variant", string(v.Type)).Logger(),
		now:     time.Now,
	}
}

// Type returns the responder's variant tag.
func (r *Responder) Type() VariantType {
	return r.variant.Type
}

// Run handles one inbound message: record it, consult the transcript, ask
// the reasoning engine, record the answer, extract intents and hand them to
// the tool executors. Failures in memory I/O or the engine call yield an
// apology reply with metadata.error set; tool failures are per-intent and
// never abort the reply.
func (r *Responder) Run(ctx context.Context, message string, actx Context) Reply {
	ws, user := actx.WorkspaceID, actx.UserID

	if err := r.memory.StoreConversation(ctx, ws, user, r.variant.Type, message, RoleUser, nil); err != nil {
		return r.failure(err, "storing user message")
	}

	entries, err := r.memory.History(ctx, ws, user, r.variant.Type, defaultHistoryLimit)
	if err != nil {
		return r.failure(err, "loading history")
	}
	// The inbound message was just appended; the engine gets it as the user
	// turn, not as history.
	if n := len(entries); n > 0 {
		entries = entries[:n-1]
	}
	actx.History = historyMessages(entries)

	completion, err := r.engine.Complete(ctx, engine.Request{
		System:      r.buildSystemPrompt(actx),
		History:     engineHistory(entries),
		User:        message,
		MaxTokens:   r.variant.MaxTokens,
		Temperature: r.variant.Temperature,
	})
	if err != nil {
		return r.failure(err, "engine completion")
	}

	if err := r.memory.StoreConversation(ctx, ws, user, r.variant.Type, completion.Text, RoleAssistant, nil); err != nil {
		return r.failure(err, "storing assistant message")
	}

	intents := r.extractIntents(completion.Text, actx)
	r.tools.ExecuteAll(ctx, intents, ToolContext{
		WorkspaceID:   ws,
		UserID:        user,
		ResponderType: r.variant.Type,
	})

	return Reply{
		Text:    completion.Text,
		Intents: intents,
		Metadata: map[string]any{
			"variant":   r.variant.Type,
			"timestamp": r.now(),
			"tokens":    completion.Tokens,
		},
	}
}

func (r *Responder) failure(err error, stage string) Reply {
	r.logger.Error().Err(err).Str("stage", stage).Msg("responder run failed")
	return Reply{
		Text: apologyText,
		Metadata: map[string]any{
			"variant": r.variant.Type,
			"error":   err.Error(),
		},
	}
}

// buildSystemPrompt assembles the persona plus optional business and
// integration blocks and the current timestamp.
func (r *Responder) buildSystemPrompt(actx Context) string {
	var b strings.Builder
	b.WriteString(r.variant.SystemPrompt)

	if bi := actx.Business; bi != nil {
		b.WriteString("\n\nBusiness Context:\n")
		fmt.Fprintf(&b, "- Business Name: %s\n", bi.Name)
		fmt.Fprintf(&b, "- Industry: %s\n", bi.Industry)
		if bi.Website != "" {
			fmt.Fprintf(&b, "- Website: %s\n", bi.Website)
		}
		if bi.Phone != "" {
			fmt.Fprintf(&b, "- Phone: %s\n", bi.Phone)
		}
		if bi.BusinessHours != "" {
			fmt.Fprintf(&b, "- Business Hours: %s\n", bi.BusinessHours)
		}
		if len(bi.Services) > 0 {
			fmt.Fprintf(&b, "- Services: %s\n", strings.Join(bi.Services, ", "))
		}
	}

	if in := actx.Integrations; in != nil {
		b.WriteString("\n\nAvailable Integrations:\n")
		if in.CRM {
			b.WriteString("- CRM: Connected\n")
		}
		if in.Calendar {
			b.WriteString("- Calendar: Connected\n")
		}
		if in.Email {
			b.WriteString("- Email: Connected\n")
		}
	}

	fmt.Fprintf(&b, "\n\nCurrent time: %s", r.now().UTC().Format(time.RFC3339))
	return b.String()
}

// extractIntents applies the variant's keyword rules to the reply text.
func (r *Responder) extractIntents(reply string, actx Context) []Intent {
	lower := strings.ToLower(reply)
	var intents []Intent

	for _, rule := range r.variant.IntentRules {
		if !ruleMatches(rule, lower) {
			continue
		}
		intents = append(intents, rule.Build(reply, actx)...)
	}
	return intents
}

func ruleMatches(rule IntentRule, lowerReply string) bool {
	if rule.Always {
		return true
	}
	for _, phrase := range rule.All {
		if !strings.Contains(lowerReply, phrase) {
			return false
		}
	}
	if len(rule.Any) == 0 {
		return len(rule.All) > 0
	}
	for _, phrase := range rule.Any {
		if strings.Contains(lowerReply, phrase) {
			return true
		}
	}
	return false
}

// historyMessages converts transcript entries into context messages.
func historyMessages(entries []ConversationEntry) []Message {
	msgs := make([]Message, len(entries))
	for i, e := range entries {
		msgs[i] = Message{
			ID:        e.ID,
			Role:      e.Role,
			Content:   e.Message,
			Timestamp: e.Timestamp,
			Metadata:  e.Metadata,
		}
	}
	return msgs
}

// engineHistory converts transcript entries into engine messages.
func engineHistory(entries []ConversationEntry) []engine.Message {
	msgs := make([]engine.Message, len(entries))
	for i, e := range entries {
		msgs[i] = engine.Message{Role: string(e.Role), Content: e.Message}
	}
	return msgs
}
