package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements RecordStore on SQLite. It is the development
// fallback when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/dispatch.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/dispatch.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS crm_contacts (
		workspace_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status TEXT DEFAULT '',
		notes TEXT DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (workspace_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS appointments (
		id TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		responder_type TEXT NOT NULL,
		title TEXT NOT NULL,
		start_time DATETIME,
		end_time DATETIME,
		attendee_email TEXT DEFAULT '',
		description TEXT DEFAULT '',
		status TEXT DEFAULT 'confirmed',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS comm_logs (
		id TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		responder_type TEXT NOT NULL,
		channel TEXT NOT NULL,
		recipient TEXT DEFAULT '',
		subject TEXT DEFAULT '',
		body TEXT DEFAULT '',
		template TEXT DEFAULT '',
		status TEXT DEFAULT 'sent',
		sent_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		responder_type TEXT NOT NULL,
		message TEXT NOT NULL,
		reply TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_appointments_workspace ON appointments(workspace_id, start_time);
	CREATE INDEX IF NOT EXISTS idx_comm_logs_workspace ON comm_logs(workspace_id, sent_at);
	CREATE INDEX IF NOT EXISTS idx_interactions_workspace ON interactions(workspace_id, created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertContact creates or updates a CRM contact; last write wins.
func (s *SQLiteStore) UpsertContact(ctx context.Context, c *Contact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crm_contacts (workspace_id, user_id, status, notes, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (workspace_id, user_id)
		DO UPDATE SET status = excluded.status, notes = excluded.notes, updated_at = excluded.updated_at
	`, c.WorkspaceID, c.UserID, c.Status, c.Notes, time.Now().UTC())
	return err
}

// InsertAppointment records a booking.
func (s *SQLiteStore) InsertAppointment(ctx context.Context, a *Appointment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (id, workspace_id, user_id, responder_type, title,
			start_time, end_time, attendee_email, description, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.WorkspaceID, a.UserID, a.ResponderType, a.Title,
		a.StartTime, a.EndTime, a.AttendeeEmail, a.Description, a.Status)
	return err
}

// InsertCommLog records an outbound communication.
func (s *SQLiteStore) InsertCommLog(ctx context.Context, l *CommLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comm_logs (id, workspace_id, user_id, responder_type, channel,
			recipient, subject, body, template, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.WorkspaceID, l.UserID, l.ResponderType, l.Channel,
		l.Recipient, l.Subject, l.Body, l.Template, l.Status)
	return err
}

// InsertInteraction records a router audit entry.
func (s *SQLiteStore) InsertInteraction(ctx context.Context, i *Interaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (workspace_id, user_id, responder_type, message, reply)
		VALUES (?, ?, ?, ?, ?)
	`, i.WorkspaceID, i.UserID, i.ResponderType, i.Message, i.Reply)
	return err
}
