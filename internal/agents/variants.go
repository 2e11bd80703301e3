package agents

import "unicode/utf8"

// Variant is one responder's static definition: a persona, a declared tool
// list, engine parameters and a keyword-driven intent policy. Variants are
// data plus one shared run pipeline, not a type hierarchy.
type Variant struct {
	Type         VariantType
	Name         string
	Description  string
	SystemPrompt string
	Tools        []string
	Capabilities []string
	MaxTokens    int
	Temperature  float64
	IntentRules  []IntentRule
}

// IntentRule fires one or more intents when its phrases appear in a reply.
// Matching is case-insensitive substring search: Any fires on the first
// phrase found, All requires every phrase, Always fires unconditionally.
// This is a heuristic, not a parser; false positives and negatives are
// accepted.
type IntentRule struct {
	Any    []string
	All    []string
	Always bool
	Build  func(reply string, ctx Context) []Intent
}

// Variants holds the closed set of responder definitions, keyed by type.
var Variants = map[VariantType]Variant{
	VariantSales: {
		Type:        VariantSales,
		Name:        "Sales Agent",
		Description: "Converts leads, handles outbound calls, and manages follow-ups",
		SystemPrompt: `You are the AI Sales Agent for the business. Your primary role is to convert leads, make outbound calls, follow up relentlessly, handle objections, and book appointments.

Your personality: professional but friendly, persistent but not pushy, solution-focused, empathetic to customer needs.

Always ask qualifying questions, present solutions that match requirements, follow up consistently, update the CRM with all interactions, and book appointments when prospects show interest. Never be pushy, make false promises, or miss opportunities to close.`,
		Tools:        []string{"crm", "sms", "email", "calendar", "voice"},
		Capabilities: []string{"Lead conversion", "Outbound calls", "Follow-ups", "Objection handling"},
		MaxTokens:    1000,
		Temperature:  0.7,
		IntentRules: []IntentRule{
			{
				Any: []string{"follow up", "call back"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentTriggerWorkflow, Payload: map[string]any{
						"workflow_type": "follow_up_sequence",
						"delay":         "24h",
						"lead_id":       ctx.UserID,
					}}}
				},
			},
			{
				All: []string{"book", "appointment"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentBookAppointment, Payload: map[string]any{
						"type":     "sales_call",
						"duration": 30,
						"lead_id":  ctx.UserID,
					}}}
				},
			},
			{
				Any: []string{"interested", "qualified"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentUpdateCRM, Payload: map[string]any{
						"lead_id": ctx.UserID,
						"status":  "qualified",
						"notes":   truncate(reply, 200),
					}}}
				},
			},
		},
	},

	VariantSupport: {
		Type:        VariantSupport,
		Name:        "Support Agent",
		Description: "Provides 24/7 customer support and handles inquiries",
		SystemPrompt: `You are the AI Support Agent providing 24/7 customer service. You answer questions, troubleshoot issues, provide receipts, escalate when needed, and ensure customer satisfaction.

Your personality: helpful and patient, empathetic, professional, solution-oriented.

Always listen carefully to customer concerns, provide clear step-by-step solutions, confirm understanding, follow up to ensure issues are resolved, and document all interactions. Never dismiss concerns, provide incorrect information, or leave issues unresolved.`,
		Tools:        []string{"knowledge_base", "email", "sms", "crm"},
		Capabilities: []string{"Customer service", "Troubleshooting", "General inquiries", "Issue resolution"},
		MaxTokens:    800,
		Temperature:  0.3,
		IntentRules: []IntentRule{
			{
				Any: []string{"escalate", "human agent"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentTriggerWorkflow, Payload: map[string]any{
						"workflow_type": "escalate_to_human",
						"priority":      "high",
						"customer_id":   ctx.UserID,
					}}}
				},
			},
			{
				Any: []string{"confirmation", "receipt"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentSendEmail, Payload: map[string]any{
						"template":    "confirmation",
						"customer_id": ctx.UserID,
					}}}
				},
			},
			{
				Any: []string{"issue", "problem"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentUpdateCRM, Payload: map[string]any{
						"customer_id": ctx.UserID,
						"type":        "support_ticket",
						"status":      "resolved",
						"notes":       truncate(reply, 200),
					}}}
				},
			},
		},
	},

	VariantAppointment: {
		Type:        VariantAppointment,
		Name:        "Appointment Setter Agent",
		Description: "Manages calendar, reminders, confirmations, and scheduling",
		SystemPrompt: `You are the AI Appointment Setter Agent. You book appointments, manage scheduling, send confirmations and reminders, and handle rescheduling. You understand business hours, resource limitations, and customer context.

Your personality: organized and efficient, flexible, clear in communication, proactive with reminders.

Always check availability before booking, confirm appointment details, send confirmations, respect business hours, and consider time zones. Never double-book, ignore conflicts, or book outside business hours without permission.`,
		Tools:        []string{"calendar", "email", "sms", "crm"},
		Capabilities: []string{"Scheduling", "Calendar management", "Reminders", "Confirmations"},
		MaxTokens:    600,
		Temperature:  0.5,
		IntentRules: []IntentRule{
			{
				Any: []string{"booked", "scheduled"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentBookAppointment, Payload: map[string]any{
						"customer_id": ctx.UserID,
						"type":        "appointment",
						"status":      "confirmed",
					}}}
				},
			},
			{
				Any: []string{"confirmation", "confirmed"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{
						{Kind: IntentSendEmail, Payload: map[string]any{
							"template":    "appointment_confirmation",
							"customer_id": ctx.UserID,
						}},
						{Kind: IntentSendSMS, Payload: map[string]any{
							"template":    "appointment_confirmation_sms",
							"customer_id": ctx.UserID,
						}},
					}
				},
			},
			{
				Any: []string{"reminder"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentTriggerWorkflow, Payload: map[string]any{
						"workflow_type": "appointment_reminders",
						"customer_id":   ctx.UserID,
					}}}
				},
			},
		},
	},

	VariantVoice: {
		Type:        VariantVoice,
		Name:        "Voice Agent",
		Description: "Handles real-time AI phone conversations",
		SystemPrompt: `You are the AI Voice Agent that answers and places calls as a natural, friendly, professional AI voice assistant. Your job is to gather info, respond clearly, and book appointments or answer questions.

Your personality: natural and conversational, professional but warm, patient, clear in speech.

Always speak clearly at an appropriate pace, listen actively, ask clarifying questions, confirm important information, and document call outcomes. Never interrupt the caller, make assumptions, or end calls abruptly.`,
		Tools:        []string{"telephony", "tts", "crm"},
		Capabilities: []string{"Phone calls", "Voice interactions", "Call routing", "Voice responses"},
		MaxTokens:    400,
		Temperature:  0.6,
		IntentRules: []IntentRule{
			{
				Any: []string{"call back", "phone"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentMakeCall, Payload: map[string]any{
						"customer_id": ctx.UserID,
						"type":        "follow_up_call",
					}}}
				},
			},
			{
				All: []string{"appointment", "booked"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentBookAppointment, Payload: map[string]any{
						"customer_id": ctx.UserID,
						"source":      "phone_call",
					}}}
				},
			},
			{
				// Every voice interaction leaves a call log.
				Always: true,
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentUpdateCRM, Payload: map[string]any{
						"customer_id": ctx.UserID,
						"type":        "call_log",
						"notes":       truncate(reply, 200),
					}}}
				},
			},
		},
	},

	VariantContent: {
		Type:        VariantContent,
		Name:        "Content Agent",
		Description: "Creates viral content, marketing materials, and automated content workflows",
		SystemPrompt: `You are the AI Content Agent that creates viral content, hooks, emails, captions, short scripts, social posts, and automated content workflows.

Your personality: creative and innovative, trend-aware, engaging, brand-conscious.

Always match the brand voice, create platform-specific content, include clear calls-to-action, and optimize for the target audience. Never create off-brand content or content without purpose.`,
		Tools:        []string{"social_media", "email", "content_templates"},
		Capabilities: []string{"Marketing content", "Social posts", "Email campaigns", "Creative writing"},
		MaxTokens:    1200,
		Temperature:  0.8,
		IntentRules: []IntentRule{
			{
				Any: []string{"schedule", "post"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentTriggerWorkflow, Payload: map[string]any{
						"workflow_type": "schedule_content",
						"content":       reply,
						"workspace_id":  ctx.WorkspaceID,
					}}}
				},
			},
			{
				All: []string{"email", "campaign"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentTriggerWorkflow, Payload: map[string]any{
						"workflow_type": "email_campaign",
						"content":       reply,
						"workspace_id":  ctx.WorkspaceID,
					}}}
				},
			},
		},
	},

	VariantWorkflow: {
		Type:        VariantWorkflow,
		Name:        "Workflow Builder Agent",
		Description: "Designs and builds automation workflows",
		SystemPrompt: `You are the AI Workflow Builder Agent that designs workflow logic for the business. Given a business goal, you produce full automation workflows using nodes, triggers, and schemas.

Your personality: technical and precise, logical, problem-solving oriented, detail-focused.

Always understand the business requirement first, design efficient workflow logic, include proper error handling, and document workflow purposes. Never create overly complex workflows or skip error handling.`,
		Tools:        []string{"automation", "integrations", "api"},
		Capabilities: []string{"Automation setup", "Workflow configuration", "Integration management", "Technical setup"},
		MaxTokens:    1500,
		Temperature:  0.2,
		IntentRules: []IntentRule{
			{
				Any: []string{"workflow", "automation"},
				Build: func(reply string, ctx Context) []Intent {
					return []Intent{{Kind: IntentTriggerWorkflow, Payload: map[string]any{
						"workflow_type": "create_workflow",
						"specification": reply,
						"workspace_id":  ctx.WorkspaceID,
					}}}
				},
			},
		},
	},
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
