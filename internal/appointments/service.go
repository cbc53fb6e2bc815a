package appointments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/careops/scheduling-platform/internal/doctors"
	"github.com/careops/scheduling-platform/internal/observability/metrics"
	"github.com/careops/scheduling-platform/internal/patients"
	"github.com/careops/scheduling-platform/internal/reminders"
	"github.com/careops/scheduling-platform/internal/schedule"
	"github.com/careops/scheduling-platform/pkg/logging"
)

var bookingTracer = otel.Tracer("careops.internal.appointments")

// ErrInvalidInput is returned when the booking request is malformed.
var ErrInvalidInput = errors.New("appointments: invalid input")

// ErrDoctorUnavailable is returned when the doctor is not accepting appointments.
var ErrDoctorUnavailable = errors.New("appointments: doctor not accepting appointments")

// ErrNoAvailability is returned when no candidate doctor can serve the
// requested slot.
var ErrNoAvailability = errors.New("appointments: no availability for the requested slot")

// DoctorDirectory resolves candidate doctors.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*doctors.Doctor, error)
	ListCandidates(ctx context.Context, hospitalID uuid.UUID, specialty string) ([]doctors.Doctor, error)
}

// PatientDirectory looks up patient contact details for reminders and
// notifications.
type PatientDirectory interface {
	GetContact(ctx context.Context, id uuid.UUID) (*patients.Contact, error)
}

// Notifier delivers fire-and-forget booking notifications.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt *Appointment, doctorName string)
}

// ReminderScheduler arranges the pre-appointment reminder job.
type ReminderScheduler interface {
	Schedule(ctx context.Context, input reminders.ScheduleInput) (*reminders.Reminder, error)
	CancelForAppointment(ctx context.Context, appointmentID uuid.UUID) error
}

// Service is the booking engine: it validates a requested slot against the
// doctor's generated availability, assigns the queue token and persists the
// appointment, then triggers notification and reminder side effects.
type Service struct {
	store     *Store
	doctors   DoctorDirectory
	patients  PatientDirectory
	holds     *SlotHold
	notifier  Notifier
	reminders ReminderScheduler
	metrics   *metrics.SchedulingMetrics
	logger    *logging.Logger
}

// NewService constructs a booking service. Notifier, reminder scheduler,
// slot hold and metrics are optional.
func NewService(store *Store, doctorDir DoctorDirectory, patientDir PatientDirectory, logger *logging.Logger) *Service {
	if store == nil {
		panic("appointments: store required")
	}
	if doctorDir == nil {
		panic("appointments: doctor directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		doctors:  doctorDir,
		patients: patientDir,
		logger:   logger,
	}
}

func (s *Service) WithSlotHold(h *SlotHold) *Service {
	s.holds = h
	return s
}

func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) WithReminders(r ReminderScheduler) *Service {
	s.reminders = r
	return s
}

func (s *Service) WithMetrics(m *metrics.SchedulingMetrics) *Service {
	s.metrics = m
	return s
}

// CreateInput is a booking request. Either DoctorID is set, or HospitalID
// (plus optional Specialty) selects the first available doctor.
type CreateInput struct {
	PatientID  uuid.UUID
	DoctorID   *uuid.UUID
	HospitalID *uuid.UUID
	Specialty  string
	Date       time.Time
	Time       string
	Reason     string
}

// Create books an appointment.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "appointments.create")
	defer span.End()
	span.SetAttributes(attribute.String("careops.patient_id", in.PatientID.String()))

	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient id required", ErrInvalidInput)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date required", ErrInvalidInput)
	}
	minute, err := schedule.ParseClock(in.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	day := truncateToDay(in.Date)

	doctor, err := s.resolveDoctor(ctx, in, day, minute)
	if err != nil {
		s.metrics.ObserveBooking(outcomeLabel(err))
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("careops.doctor_id", doctor.ID.String()))

	if !s.holds.Acquire(ctx, doctor.ID, in.HospitalID, day, minute) {
		s.metrics.ObserveBooking("slot_taken")
		return nil, ErrSlotTaken
	}

	appt := &Appointment{
		PatientID:  in.PatientID,
		DoctorID:   doctor.ID,
		HospitalID: in.HospitalID,
		Date:       day,
		TimeMinute: minute,
		Status:     StatusPending,
		Reason:     in.Reason,
	}
	if err := s.store.Create(ctx, appt); err != nil {
		s.holds.Release(ctx, doctor.ID, in.HospitalID, day, minute)
		s.metrics.ObserveBooking(outcomeLabel(err))
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveBooking("created")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", doctor.ID,
		"patient_id", in.PatientID,
		"date", day.Format(time.DateOnly),
		"time", appt.Clock(),
		"token", appt.TokenNumber,
	)

	if s.notifier != nil {
		s.notifier.AppointmentBooked(ctx, appt, doctor.Name)
	}
	s.scheduleReminder(ctx, appt)

	return appt, nil
}

// Cancel marks an appointment cancelled and drops its pending reminder.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Cancel(ctx, id); err != nil {
		return err
	}
	if s.reminders != nil {
		if err := s.reminders.CancelForAppointment(ctx, id); err != nil {
			s.logger.Error("failed to cancel reminder", "appointment_id", id, "error", err)
		}
	}
	s.logger.Info("appointment cancelled", "appointment_id", id)
	return nil
}

// Get loads one appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.store.GetByID(ctx, id)
}

// resolveDoctor picks the concrete doctor for the request. A named doctor is
// validated directly; first-available mode filters the hospital's candidates
// to those with the slot open and breaks ties toward the least-booked doctor
// on that date, then the lowest id, so selection is deterministic.
func (s *Service) resolveDoctor(ctx context.Context, in CreateInput, day time.Time, minute int) (*doctors.Doctor, error) {
	if in.DoctorID != nil {
		doctor, err := s.doctors.GetByID(ctx, *in.DoctorID)
		if err != nil {
			return nil, err
		}
		if !doctor.IsAvailable {
			return nil, ErrDoctorUnavailable
		}
		booked, err := s.store.BookedMinutes(ctx, []uuid.UUID{doctor.ID}, day)
		if err != nil {
			return nil, err
		}
		open, taken := slotState(doctor, day, minute, booked[doctor.ID])
		if taken {
			return nil, ErrSlotTaken
		}
		if !open {
			return nil, ErrNoAvailability
		}
		return doctor, nil
	}

	if in.HospitalID == nil {
		return nil, fmt.Errorf("%w: hospital id required for first-available booking", ErrInvalidInput)
	}
	candidates, err := s.doctors.ListCandidates(ctx, *in.HospitalID, in.Specialty)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoAvailability
	}

	ids := make([]uuid.UUID, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}
	booked, err := s.store.BookedMinutes(ctx, ids, day)
	if err != nil {
		return nil, err
	}

	var best *doctors.Doctor
	bestLoad := 0
	anyTaken := false
	for i := range candidates {
		c := &candidates[i]
		open, taken := slotState(c, day, minute, booked[c.ID])
		if taken {
			anyTaken = true
		}
		if !open {
			continue
		}
		load := len(booked[c.ID])
		if best == nil || load < bestLoad || (load == bestLoad && lessID(c.ID, best.ID)) {
			best = c
			bestLoad = load
		}
	}
	if best == nil {
		if anyTaken {
			return nil, ErrSlotTaken
		}
		return nil, ErrNoAvailability
	}
	return best, nil
}

func (s *Service) scheduleReminder(ctx context.Context, appt *Appointment) {
	if s.reminders == nil {
		return
	}
	phone := ""
	if s.patients != nil {
		contact, err := s.patients.GetContact(ctx, appt.PatientID)
		if err != nil {
			s.logger.Error("failed to load patient contact for reminder",
				"appointment_id", appt.ID, "patient_id", appt.PatientID, "error", err)
			return
		}
		phone = contact.Phone
	}
	_, err := s.reminders.Schedule(ctx, reminders.ScheduleInput{
		AppointmentID: appt.ID,
		StartAt:       appt.StartAt(),
		PatientPhone:  phone,
	})
	if err != nil {
		s.logger.Error("failed to schedule reminder", "appointment_id", appt.ID, "error", err)
	}
}

// slotState reports whether the requested minute is an open generated slot
// for the doctor, and whether it is specifically taken by a booking.
func slotState(d *doctors.Doctor, day time.Time, minute int, bookedMinutes []int) (open bool, taken bool) {
	duration := d.AppointmentDuration
	if duration <= 0 {
		duration = doctors.DefaultAppointmentDuration
	}
	window := d.WorkSchedule.On(day.Weekday())
	generable := false
	for _, m := range schedule.Slots(window, duration) {
		if m == minute {
			generable = true
			break
		}
	}
	if !generable {
		return false, false
	}
	for _, m := range bookedMinutes {
		if m == minute {
			return false, true
		}
	}
	return true, false
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, ErrNoAvailability):
		return "no_availability"
	case errors.Is(err, ErrDoctorUnavailable):
		return "doctor_unavailable"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, doctors.ErrNotFound):
		return "doctor_not_found"
	default:
		return "error"
	}
}
