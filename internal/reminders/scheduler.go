package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careops/scheduling-platform/pkg/logging"
)

// DefaultLeadTime is how long before the appointment start the reminder fires.
const DefaultLeadTime = 10 * time.Minute

// ReminderStore is the persistence the scheduler needs.
type ReminderStore interface {
	Create(ctx context.Context, r *Reminder) error
	CancelForAppointment(ctx context.Context, appointmentID uuid.UUID) error
}

// Scheduler arranges durable reminder jobs for booked appointments.
type Scheduler struct {
	store          ReminderStore
	leadTime       time.Duration
	announcementID string
	logger         *logging.Logger
	now            func() time.Time
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(store ReminderStore, leadTime time.Duration, announcementID string, logger *logging.Logger) *Scheduler {
	if leadTime <= 0 {
		leadTime = DefaultLeadTime
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		store:          store,
		leadTime:       leadTime,
		announcementID: announcementID,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, for tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	if now != nil {
		s.now = now
	}
	return s
}

// ScheduleInput describes the appointment a reminder should precede.
type ScheduleInput struct {
	AppointmentID uuid.UUID
	StartAt       time.Time
	PatientPhone  string
}

// Schedule persists a reminder due leadTime before the appointment start.
// Returns nil without error when the fire time has already passed: a booking
// made inside the lead window simply gets no reminder.
func (s *Scheduler) Schedule(ctx context.Context, input ScheduleInput) (*Reminder, error) {
	dueAt := input.StartAt.Add(-s.leadTime)
	if !dueAt.After(s.now()) {
		s.logger.Info("reminder fire time already passed, skipping",
			"appointment_id", input.AppointmentID,
			"due_at", dueAt.Format(time.RFC3339),
		)
		return nil, nil
	}

	reminder := &Reminder{
		AppointmentID:  input.AppointmentID,
		PatientPhone:   input.PatientPhone,
		AnnouncementID: s.announcementID,
		DueAt:          dueAt.UTC(),
		Status:         StatusPending,
	}
	if err := s.store.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("reminders: schedule: %w", err)
	}

	s.logger.Info("reminder scheduled",
		"id", reminder.ID,
		"appointment_id", input.AppointmentID,
		"due_at", reminder.DueAt.Format(time.RFC3339),
	)
	return reminder, nil
}

// CancelForAppointment drops any pending reminder when a booking is cancelled.
func (s *Scheduler) CancelForAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	return s.store.CancelForAppointment(ctx, appointmentID)
}
