package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSlotTaken is returned when a non-cancelled appointment already occupies
// the requested doctor+hospital+date+time slot. The partial unique index on
// the appointments table is the authority; the error surfaces from SQLSTATE
// 23505 so that concurrent check-then-insert races cannot double-book.
var ErrSlotTaken = errors.New("appointments: slot already booked")

// ErrNotFound is returned when an appointment id does not exist.
var ErrNotFound = errors.New("appointments: not found")

const uniqueViolation = "23505"

// DB abstracts the pgx interface for testing. Begin is needed because token
// assignment and the insert share one transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store provides persistence for appointments.
type Store struct {
	db DB
}

// NewStore creates an appointment store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// BookedSlot is one occupied time on a doctor's day.
type BookedSlot struct {
	DoctorID uuid.UUID
	Date     time.Time
	Minute   int
}

// Create inserts the appointment and assigns its queue token inside a single
// transaction. The token is the count of existing non-cancelled appointments
// for (doctor, hospital, date) plus one, so tokens follow creation order.
// A unique-index violation rolls the transaction back and returns ErrSlotTaken,
// leaving no partial writes.
func (s *Store) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = StatusPending
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var count int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1
		  AND hospital_id IS NOT DISTINCT FROM $2
		  AND date = $3
		  AND status <> 'cancelled'`,
		a.DoctorID, a.HospitalID, a.Date,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("appointments: count for token: %w", err)
	}
	a.TokenNumber = fmt.Sprintf("%d", count+1)

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, hospital_id, date, time_minute, status, token_number, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.PatientID, a.DoctorID, a.HospitalID, a.Date, a.TimeMinute,
		string(a.Status), a.TokenNumber, a.Reason, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("appointments: commit: %w", err)
	}
	a.Time = a.Clock()
	return nil
}

// GetByID loads one appointment.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, hospital_id, date, time_minute, status, token_number, reason, created_at, updated_at
		FROM appointments
		WHERE id = $1`, id)

	var a Appointment
	var status string
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.HospitalID, &a.Date, &a.TimeMinute,
		&status, &a.TokenNumber, &a.Reason, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: get by id: %w", err)
	}
	a.Status = Status(status)
	a.Time = a.Clock()
	return &a, nil
}

// Cancel transitions an appointment to cancelled.
func (s *Store) Cancel(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments SET status = 'cancelled', updated_at = $1
		WHERE id = $2 AND status <> 'cancelled'`, now, id)
	if err != nil {
		return fmt.Errorf("appointments: cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BookedMinutes returns the occupied start minutes per doctor for one day,
// across all non-cancelled appointments, in a single query.
func (s *Store) BookedMinutes(ctx context.Context, doctorIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT doctor_id, time_minute
		FROM appointments
		WHERE doctor_id = ANY($1) AND date = $2 AND status <> 'cancelled'
		ORDER BY time_minute`, doctorIDs, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: booked minutes: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]int)
	for rows.Next() {
		var doctorID uuid.UUID
		var minute int
		if err := rows.Scan(&doctorID, &minute); err != nil {
			return nil, fmt.Errorf("appointments: scan booked minute: %w", err)
		}
		out[doctorID] = append(out[doctorID], minute)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate booked minutes: %w", err)
	}
	return out, nil
}

// BookedForRange returns every occupied (doctor, date, minute) in [from, to)
// in one query, for the monthly rollup's batch fetch.
func (s *Store) BookedForRange(ctx context.Context, doctorIDs []uuid.UUID, from, to time.Time) ([]BookedSlot, error) {
	rows, err := s.db.Query(ctx, `
		SELECT doctor_id, date, time_minute
		FROM appointments
		WHERE doctor_id = ANY($1) AND date >= $2 AND date < $3 AND status <> 'cancelled'
		ORDER BY date, time_minute`, doctorIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("appointments: booked for range: %w", err)
	}
	defer rows.Close()

	var out []BookedSlot
	for rows.Next() {
		var b BookedSlot
		if err := rows.Scan(&b.DoctorID, &b.Date, &b.Minute); err != nil {
			return nil, fmt.Errorf("appointments: scan booked slot: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate booked range: %w", err)
	}
	return out, nil
}

// CountBookedOn returns the number of non-cancelled appointments per doctor
// on a date, used by first-available tie-breaking.
func (s *Store) CountBookedOn(ctx context.Context, doctorIDs []uuid.UUID, date time.Time) (map[uuid.UUID]int, error) {
	booked, err := s.BookedMinutes(ctx, doctorIDs, date)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(booked))
	for id, minutes := range booked {
		out[id] = len(minutes)
	}
	return out, nil
}
