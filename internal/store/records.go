package store

import (
	"context"
	"time"
)

// Contact is a CRM contact row maintained by the update_crm tool.
type Contact struct {
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Appointment is a booking created by the book_appointment tool.
type Appointment struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	UserID        string    `json:"user_id"`
	ResponderType string    `json:"responder_type"`
	Title         string    `json:"title"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	AttendeeEmail string    `json:"attendee_email,omitempty"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// CommLog is one outbound communication (email, SMS or call) issued by a tool.
type CommLog struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	UserID        string    `json:"user_id"`
	ResponderType string    `json:"responder_type"`
	Channel       string    `json:"channel"` // "email", "sms" or "call"
	Recipient     string    `json:"recipient"`
	Subject       string    `json:"subject,omitempty"`
	Body          string    `json:"body,omitempty"`
	Template      string    `json:"template,omitempty"`
	Status        string    `json:"status"`
	SentAt        time.Time `json:"sent_at"`
}

// Interaction is the router's audit record for one routed message.
type Interaction struct {
	WorkspaceID   string    `json:"workspace_id"`
	UserID        string    `json:"user_id"`
	ResponderType string    `json:"responder_type"`
	Message       string    `json:"message"`
	Reply         string    `json:"reply"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecordStore defines the durable record side of the system: the rows tool
// executors and the router write. Both PostgresStore and SQLiteStore
// implement this interface. The schema beyond these upsert/insert calls is
// owned by the surrounding application.
type RecordStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Tool-issued records
	UpsertContact(ctx context.Context, c *Contact) error
	InsertAppointment(ctx context.Context, a *Appointment) error
	InsertCommLog(ctx context.Context, l *CommLog) error

	// Router audit trail
	InsertInteraction(ctx context.Context, i *Interaction) error
}
