package doctors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/careops/scheduling-platform/internal/schedule"
)

// ErrNotFound is returned when a doctor id does not exist.
var ErrNotFound = errors.New("doctors: not found")

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides read access to doctors and their weekly schedules.
type Store struct {
	db DB
}

// NewStore creates a doctor store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// GetByID loads one doctor with its weekly schedule.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, specialty, hospital_id, appointment_duration_mins, is_available
		FROM doctors
		WHERE id = $1`, id)

	var d Doctor
	if err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.HospitalID, &d.AppointmentDuration, &d.IsAvailable); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("doctors: get by id: %w", err)
	}

	weeks, err := s.loadSchedules(ctx, []uuid.UUID{d.ID})
	if err != nil {
		return nil, err
	}
	d.WorkSchedule = weeks[d.ID]
	return &d, nil
}

// ListCandidates returns the available doctors at a hospital, optionally
// narrowed by specialty, each with their weekly schedule loaded.
func (s *Store) ListCandidates(ctx context.Context, hospitalID uuid.UUID, specialty string) ([]Doctor, error) {
	query := `
		SELECT id, name, specialty, hospital_id, appointment_duration_mins, is_available
		FROM doctors
		WHERE hospital_id = $1 AND is_available = TRUE`
	args := []any{hospitalID}
	if specialty != "" {
		query += ` AND specialty = $2`
		args = append(args, specialty)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("doctors: list candidates: %w", err)
	}
	defer rows.Close()

	var result []Doctor
	var ids []uuid.UUID
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.HospitalID, &d.AppointmentDuration, &d.IsAvailable); err != nil {
			return nil, fmt.Errorf("doctors: scan candidate: %w", err)
		}
		result = append(result, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: iterate candidates: %w", err)
	}
	if len(result) == 0 {
		return nil, nil
	}

	weeks, err := s.loadSchedules(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].WorkSchedule = weeks[result[i].ID]
	}
	return result, nil
}

// SaveScheduleDay upserts one weekday window for a doctor.
func (s *Store) SaveScheduleDay(ctx context.Context, doctorID uuid.UUID, day time.Weekday, w schedule.Window) error {
	if w.Enabled && w.Start >= w.End {
		return fmt.Errorf("doctors: schedule window start must precede end")
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO doctor_schedules (doctor_id, weekday, start_minute, end_minute, enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (doctor_id, weekday)
		DO UPDATE SET start_minute = $3, end_minute = $4, enabled = $5`,
		doctorID, int(day), w.Start, w.End, w.Enabled,
	)
	if err != nil {
		return fmt.Errorf("doctors: save schedule day: %w", err)
	}
	return nil
}

func (s *Store) loadSchedules(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]schedule.Week, error) {
	rows, err := s.db.Query(ctx, `
		SELECT doctor_id, weekday, start_minute, end_minute, enabled
		FROM doctor_schedules
		WHERE doctor_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("doctors: load schedules: %w", err)
	}
	defer rows.Close()

	weeks := make(map[uuid.UUID]schedule.Week, len(ids))
	for rows.Next() {
		var doctorID uuid.UUID
		var weekday, start, end int
		var enabled bool
		if err := rows.Scan(&doctorID, &weekday, &start, &end, &enabled); err != nil {
			return nil, fmt.Errorf("doctors: scan schedule: %w", err)
		}
		if weekday < 0 || weekday > 6 {
			return nil, fmt.Errorf("doctors: weekday %d out of range for doctor %s", weekday, doctorID)
		}
		wk := weeks[doctorID]
		wk[weekday] = schedule.Window{Start: start, End: end, Enabled: enabled}
		weeks[doctorID] = wk
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: iterate schedules: %w", err)
	}
	return weeks, nil
}
