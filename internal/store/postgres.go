package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements RecordStore on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool and
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS crm_contacts (
		workspace_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status TEXT DEFAULT '',
		notes TEXT DEFAULT '',
		updated_at TIMESTAMPTZ DEFAULT now(),
		PRIMARY KEY (workspace_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS appointments (
		id UUID PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		responder_type TEXT NOT NULL,
		title TEXT NOT NULL,
		start_time TIMESTAMPTZ,
		end_time TIMESTAMPTZ,
		attendee_email TEXT DEFAULT '',
		description TEXT DEFAULT '',
		status TEXT DEFAULT 'confirmed',
		created_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS comm_logs (
		id UUID PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		responder_type TEXT NOT NULL,
		channel TEXT NOT NULL,
		recipient TEXT DEFAULT '',
		subject TEXT DEFAULT '',
		body TEXT DEFAULT '',
		template TEXT DEFAULT '',
		status TEXT DEFAULT 'sent',
		sent_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS interactions (
		id BIGSERIAL PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		responder_type TEXT NOT NULL,
		message TEXT NOT NULL,
		reply TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_appointments_workspace ON appointments(workspace_id, start_time);
	CREATE INDEX IF NOT EXISTS idx_comm_logs_workspace ON comm_logs(workspace_id, sent_at);
	CREATE INDEX IF NOT EXISTS idx_interactions_workspace ON interactions(workspace_id, created_at);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// UpsertContact creates or updates a CRM contact; last write wins.
func (s *PostgresStore) UpsertContact(ctx context.Context, c *Contact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO crm_contacts (workspace_id, user_id, status, notes, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (workspace_id, user_id)
		DO UPDATE SET status = $3, notes = $4, updated_at = now()
	`, c.WorkspaceID, c.UserID, c.Status, c.Notes)
	return err
}

// InsertAppointment records a booking.
func (s *PostgresStore) InsertAppointment(ctx context.Context, a *Appointment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO appointments (id, workspace_id, user_id, responder_type, title,
			start_time, end_time, attendee_email, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID, a.WorkspaceID, a.UserID, a.ResponderType, a.Title,
		a.StartTime, a.EndTime, a.AttendeeEmail, a.Description, a.Status)
	return err
}

// InsertCommLog records an outbound communication.
func (s *PostgresStore) InsertCommLog(ctx context.Context, l *CommLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO comm_logs (id, workspace_id, user_id, responder_type, channel,
			recipient, subject, body, template, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, l.ID, l.WorkspaceID, l.UserID, l.ResponderType, l.Channel,
		l.Recipient, l.Subject, l.Body, l.Template, l.Status)
	return err
}

// InsertInteraction records a router audit entry.
func (s *PostgresStore) InsertInteraction(ctx context.Context, i *Interaction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interactions (workspace_id, user_id, responder_type, message, reply)
		VALUES ($1, $2, $3, $4, $5)
	`, i.WorkspaceID, i.UserID, i.ResponderType, i.Message, i.Reply)
	return err
}
