package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides CRUD operations for appointment_reminders.
type Store struct {
	db DB
}

// NewStore creates a reminder store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Create inserts a new pending reminder.
func (s *Store) Create(ctx context.Context, r *Reminder) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = StatusPending
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO appointment_reminders (id, appointment_id, patient_phone, announcement_id, due_at, status, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.AppointmentID, r.PatientPhone, r.AnnouncementID, r.DueAt,
		string(r.Status), r.Attempts, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("reminders: create: %w", err)
	}
	return nil
}

// ListDue returns pending reminders whose due_at is on or before asOf.
func (s *Store) ListDue(ctx context.Context, asOf time.Time, limit int) ([]Reminder, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, appointment_id, patient_phone, announcement_id, due_at, status, attempts, sent_at, failed_at, created_at, updated_at
		FROM appointment_reminders
		WHERE status = 'pending' AND due_at <= $1
		ORDER BY due_at ASC
		LIMIT $2`, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("reminders: list due: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// MarkSent transitions a reminder from pending to sent.
func (s *Store) MarkSent(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	tag, err := s.db.Exec(ctx, `
		UPDATE appointment_reminders
		SET status = 'sent', sent_at = $1, attempts = attempts + 1, updated_at = $1
		WHERE id = $2 AND status = 'pending'`, now, id)
	if err != nil {
		return fmt.Errorf("reminders: mark sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reminders: mark sent: no pending reminder with id %s", id)
	}
	return nil
}

// MarkFailed records a failed trigger attempt.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
		UPDATE appointment_reminders
		SET status = 'failed', failed_at = $1, attempts = attempts + 1, updated_at = $1
		WHERE id = $2 AND status = 'pending'`, now, id)
	if err != nil {
		return fmt.Errorf("reminders: mark failed: %w", err)
	}
	return nil
}

// CancelForAppointment cancels any pending reminder for the appointment.
func (s *Store) CancelForAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
		UPDATE appointment_reminders
		SET status = 'cancelled', updated_at = $1
		WHERE appointment_id = $2 AND status = 'pending'`, now, appointmentID)
	if err != nil {
		return fmt.Errorf("reminders: cancel for appointment: %w", err)
	}
	return nil
}

// GetStats returns aggregated reminder counts.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	row := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'sent') AS sent,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled
		FROM appointment_reminders`)

	var stats Stats
	if err := row.Scan(&stats.PendingCount, &stats.SentCount, &stats.FailedCount, &stats.CancelledCount); err != nil {
		return nil, fmt.Errorf("reminders: stats: %w", err)
	}
	return &stats, nil
}

func scanReminders(rows pgx.Rows) ([]Reminder, error) {
	var result []Reminder
	for rows.Next() {
		var r Reminder
		var status string
		err := rows.Scan(
			&r.ID, &r.AppointmentID, &r.PatientPhone, &r.AnnouncementID, &r.DueAt,
			&status, &r.Attempts, &r.SentAt, &r.FailedAt, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("reminders: scan: %w", err)
		}
		r.Status = Status(status)
		result = append(result, r)
	}
	return result, rows.Err()
}
