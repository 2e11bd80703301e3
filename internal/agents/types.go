// Package agents contains the responder variants, their conversational
// memory, intent extraction and the router that dispatches inbound messages.
package agents

import "time"

// Role identifies who produced a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of a transcript. Transcripts are append-only.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// BusinessInfo describes the workspace's business, injected into prompts.
type BusinessInfo struct {
	Name          string   `json:"name"`
	Industry      string   `json:"industry"`
	Website       string   `json:"website,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	BusinessHours string   `json:"business_hours,omitempty"`
	Services      []string `json:"services,omitempty"`
}

// Integrations flags which external systems the workspace has connected.
type Integrations struct {
	CRM      bool `json:"crm"`
	Calendar bool `json:"calendar"`
	Email    bool `json:"email"`
}

// Context is the immutable input to one routing decision. History is
// refreshed from memory before each run.
type Context struct {
	WorkspaceID  string        `json:"workspace_id"`
	UserID       string        `json:"user_id"`
	Business     *BusinessInfo `json:"business,omitempty"`
	Integrations *Integrations `json:"integrations,omitempty"`
	History      []Message     `json:"history,omitempty"`
}

// VariantType tags one of the six responder variants.
type VariantType string

// Responder variants.
const (
	VariantSales       VariantType = "sales"
	VariantSupport     VariantType = "support"
	VariantAppointment VariantType = "appointment"
	VariantVoice       VariantType = "voice"
	VariantContent     VariantType = "content"
	VariantWorkflow    VariantType = "workflow"
)

// VariantTypes lists every variant, in classification-prompt order.
var VariantTypes = []VariantType{
	VariantSales,
	VariantSupport,
	VariantAppointment,
	VariantVoice,
	VariantContent,
	VariantWorkflow,
}

// IntentKind identifies a requested side effect.
type IntentKind string

// Intent kinds.
const (
	IntentSendEmail       IntentKind = "send_email"
	IntentSendSMS         IntentKind = "send_sms"
	IntentBookAppointment IntentKind = "book_appointment"
	IntentUpdateCRM       IntentKind = "update_crm"
	IntentTriggerWorkflow IntentKind = "trigger_workflow"
	IntentMakeCall        IntentKind = "make_call"
)

// Intent is a structured request for a side effect. Ownership transfers to
// the tool executor on emission.
type Intent struct {
	Kind    IntentKind     `json:"kind"`
	Payload map[string]any `json:"payload"`
}

// Reply is the immutable result of one responder run.
type Reply struct {
	Text     string         `json:"text"`
	Intents  []Intent       `json:"intents,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
