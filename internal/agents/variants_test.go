package agents

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func extractFor(t *testing.T, vt VariantType, reply string) []Intent {
	t.Helper()
	r := &Responder{variant: Variants[vt]}
	return r.extractIntents(reply, Context{WorkspaceID: "ws", UserID: "u1"})
}

func kinds(intents []Intent) []IntentKind {
	ks := make([]IntentKind, len(intents))
	for i, in := range intents {
		ks[i] = in.Kind
	}
	return ks
}

func assertKinds(t *testing.T, got []Intent, want ...IntentKind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("extracted %v, want %v", kinds(got), want)
	}
	for i, k := range want {
		if got[i].Kind != k {
			t.Fatalf("extracted %v, want %v", kinds(got), want)
		}
	}
}

func TestVariantSetComplete(t *testing.T) {
	if len(Variants) != len(VariantTypes) {
		t.Fatalf("Variants has %d entries, want %d", len(Variants), len(VariantTypes))
	}
	for _, vt := range VariantTypes {
		v, ok := Variants[vt]
		if !ok {
			t.Fatalf("missing variant %s", vt)
		}
		if v.Type != vt {
			t.Fatalf("variant %s tagged %s", vt, v.Type)
		}
		if v.SystemPrompt == "" || v.MaxTokens <= 0 {
			t.Fatalf("variant %s incomplete: %+v", vt, v)
		}
	}
}

func TestSalesIntentExtraction(t *testing.T) {
	got := extractFor(t, VariantSales, "Great talking to you, I'll follow up tomorrow.")
	assertKinds(t, got, IntentTriggerWorkflow)
	if got[0].Payload["workflow_type"] != "follow_up_sequence" {
		t.Fatalf("payload = %v", got[0].Payload)
	}

	got = extractFor(t, VariantSales, "Let's book an appointment for a demo.")
	assertKinds(t, got, IntentBookAppointment)

	got = extractFor(t, VariantSales, "You sound very interested in the premium tier.")
	assertKinds(t, got, IntentUpdateCRM)
	if got[0].Payload["status"] != "qualified" {
		t.Fatalf("payload = %v", got[0].Payload)
	}

	// The All rule needs both words, in any position.
	got = extractFor(t, VariantSales, "I can book that for you.")
	assertKinds(t, got)
}

func TestSupportIntentExtraction(t *testing.T) {
	got := extractFor(t, VariantSupport, "I'll escalate this to a specialist.")
	assertKinds(t, got, IntentTriggerWorkflow)

	got = extractFor(t, VariantSupport, "A confirmation has been emailed to you.")
	assertKinds(t, got, IntentSendEmail)

	got = extractFor(t, VariantSupport, "Sorry about the problem, it's now fixed.")
	assertKinds(t, got, IntentUpdateCRM)
}

func TestAppointmentIntentExtraction(t *testing.T) {
	got := extractFor(t, VariantAppointment, "You're booked for Tuesday at 3pm.")
	assertKinds(t, got, IntentBookAppointment)

	// "confirmed" fires both the email and SMS confirmations.
	got = extractFor(t, VariantAppointment, "Your slot is confirmed.")
	assertKinds(t, got, IntentSendEmail, IntentSendSMS)

	got = extractFor(t, VariantAppointment, "I'll set a reminder for the day before.")
	assertKinds(t, got, IntentTriggerWorkflow)
	if got[0].Payload["workflow_type"] != "appointment_reminders" {
		t.Fatalf("payload = %v", got[0].Payload)
	}
}

func TestVoiceAlwaysLogsCall(t *testing.T) {
	// Any voice reply leaves a CRM call log, keywords or not.
	got := extractFor(t, VariantVoice, "Thanks for your time, goodbye.")
	assertKinds(t, got, IntentUpdateCRM)
	if got[0].Payload["type"] != "call_log" {
		t.Fatalf("payload = %v", got[0].Payload)
	}

	got = extractFor(t, VariantVoice, "I'll phone you tomorrow morning.")
	assertKinds(t, got, IntentMakeCall, IntentUpdateCRM)
}

func TestContentIntentExtraction(t *testing.T) {
	got := extractFor(t, VariantContent, "Here's the caption, I'll schedule the post for Friday.")
	assertKinds(t, got, IntentTriggerWorkflow)
	if got[0].Payload["workflow_type"] != "schedule_content" {
		t.Fatalf("payload = %v", got[0].Payload)
	}

	got = extractFor(t, VariantContent, "This email campaign has three touches.")
	assertKinds(t, got, IntentTriggerWorkflow)
	if got[0].Payload["workflow_type"] != "email_campaign" {
		t.Fatalf("payload = %v", got[0].Payload)
	}
}

func TestWorkflowIntentExtraction(t *testing.T) {
	got := extractFor(t, VariantWorkflow, "Here's the automation you asked for.")
	assertKinds(t, got, IntentTriggerWorkflow)
	if got[0].Payload["workflow_type"] != "create_workflow" {
		t.Fatalf("payload = %v", got[0].Payload)
	}

	got = extractFor(t, VariantWorkflow, "Could you clarify the trigger conditions?")
	assertKinds(t, got)
}

func TestExtractionIsCaseInsensitive(t *testing.T) {
	got := extractFor(t, VariantAppointment, "BOOKED! See you then.")
	assertKinds(t, got, IntentBookAppointment)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	if got := truncate("short", 200); got != "short" {
		t.Fatalf("truncate under limit = %q", got)
	}
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Fatalf("truncate = %q, want abcd", got)
	}

	// A cut landing mid-rune backs up to the previous boundary.
	s := strings.Repeat("é", 100) // 2 bytes per rune
	got := truncate(s, 5)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if len(got) != 4 {
		t.Fatalf("truncated to %d bytes, want 4", len(got))
	}

	got = truncate("日本語のテキスト", 200)
	if got != "日本語のテキスト" {
		t.Fatalf("truncate under limit = %q", got)
	}
}
