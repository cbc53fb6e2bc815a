package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/careops/scheduling-platform/internal/appointments"
	"github.com/careops/scheduling-platform/internal/doctors"
	"github.com/careops/scheduling-platform/internal/observability/metrics"
	"github.com/careops/scheduling-platform/internal/schedule"
	"github.com/careops/scheduling-platform/pkg/logging"
)

// Slot is a bookable start time offered to a patient.
type Slot struct {
	Time   string `json:"time"`
	Status string `json:"status"`
}

// DayClassification summarizes how booked a calendar day is.
type DayClassification string

const (
	DayUnavailable        DayClassification = "unavailable"
	DayPartiallyAvailable DayClassification = "partially_available"
	DayFullyAvailable     DayClassification = "fully_available"
)

// Selector names the candidate doctors for a query: one doctor by id, or
// every available doctor at a hospital, optionally narrowed by specialty.
type Selector struct {
	DoctorID   *uuid.UUID
	HospitalID *uuid.UUID
	Specialty  string
}

// DoctorSource resolves candidate doctors.
type DoctorSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*doctors.Doctor, error)
	ListCandidates(ctx context.Context, hospitalID uuid.UUID, specialty string) ([]doctors.Doctor, error)
}

// AppointmentSource reads booked slots.
type AppointmentSource interface {
	BookedMinutes(ctx context.Context, doctorIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]int, error)
	BookedForRange(ctx context.Context, doctorIDs []uuid.UUID, from, to time.Time) ([]appointments.BookedSlot, error)
}

// ErrInvalidSelector is returned when neither a doctor nor a hospital is named.
var ErrInvalidSelector = errors.New("availability: doctor id or hospital id required")

// Service answers availability questions. It is read-only: concurrent
// bookings landing mid-query only make the answer stale, never wrong.
type Service struct {
	doctors DoctorSource
	appts   AppointmentSource
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger
}

// NewService constructs an availability service.
func NewService(doctorSrc DoctorSource, apptSrc AppointmentSource, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{doctors: doctorSrc, appts: apptSrc, logger: logger}
}

func (s *Service) WithMetrics(m *metrics.SchedulingMetrics) *Service {
	s.metrics = m
	return s
}

// AvailableSlots returns the deduplicated, ascending union of every candidate
// doctor's open slots for the date. An empty result is a valid answer.
func (s *Service) AvailableSlots(ctx context.Context, date time.Time, sel Selector) ([]Slot, error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveSlotQuery("day", time.Since(started).Seconds())
	}()

	candidates, err := s.resolveCandidates(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Slot{}, nil
	}
	day := truncateToDay(date)

	ids := make([]uuid.UUID, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}
	booked, err := s.appts.BookedMinutes(ctx, ids, day)
	if err != nil {
		return nil, err
	}

	union := make(map[int]struct{})
	for i := range candidates {
		for _, m := range openMinutes(&candidates[i], day.Weekday(), booked[candidates[i].ID]) {
			union[m] = struct{}{}
		}
	}

	minutes := make([]int, 0, len(union))
	for m := range union {
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)

	slots := make([]Slot, len(minutes))
	for i, m := range minutes {
		slots[i] = Slot{Time: schedule.FormatClock(m), Status: "available"}
	}
	return slots, nil
}

// MonthlyAvailability classifies every day of the month. Booked appointments
// for the whole month are fetched in one query; per-day work is pure
// computation, checked against ctx so long fan-outs remain cancellable.
func (s *Service) MonthlyAvailability(ctx context.Context, year int, month time.Month, sel Selector) (map[string]DayClassification, error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveSlotQuery("month", time.Since(started).Seconds())
	}()

	candidates, err := s.resolveCandidates(ctx, sel)
	if err != nil {
		return nil, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	daysInMonth := int(next.Sub(first).Hours() / 24)

	out := make(map[string]DayClassification, daysInMonth)
	if len(candidates) == 0 {
		for d := 0; d < daysInMonth; d++ {
			out[first.AddDate(0, 0, d).Format(time.DateOnly)] = DayUnavailable
		}
		return out, nil
	}

	ids := make([]uuid.UUID, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}
	bookedSlots, err := s.appts.BookedForRange(ctx, ids, first, next)
	if err != nil {
		return nil, err
	}

	// Patients see a merged slot list, so a time booked with two doctors
	// still occupies one visible slot: count distinct times per day.
	bookedByDay := make(map[string]map[int]struct{})
	for _, b := range bookedSlots {
		key := truncateToDay(b.Date).Format(time.DateOnly)
		if bookedByDay[key] == nil {
			bookedByDay[key] = make(map[int]struct{})
		}
		bookedByDay[key][b.Minute] = struct{}{}
	}

	for d := 0; d < daysInMonth; d++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		day := first.AddDate(0, 0, d)
		key := day.Format(time.DateOnly)

		totalPossible := 0
		for i := range candidates {
			c := &candidates[i]
			totalPossible += len(schedule.Slots(c.WorkSchedule.On(day.Weekday()), durationOf(c)))
		}
		out[key] = Classify(totalPossible, len(bookedByDay[key]))
	}
	return out, nil
}

// Classify applies the rollup rule for one day.
func Classify(totalPossible, bookedCount int) DayClassification {
	switch {
	case totalPossible == 0:
		return DayUnavailable
	case bookedCount >= totalPossible:
		return DayUnavailable
	case bookedCount > 0:
		return DayPartiallyAvailable
	default:
		return DayFullyAvailable
	}
}

func (s *Service) resolveCandidates(ctx context.Context, sel Selector) ([]doctors.Doctor, error) {
	if sel.DoctorID != nil {
		doctor, err := s.doctors.GetByID(ctx, *sel.DoctorID)
		if err != nil {
			return nil, err
		}
		if !doctor.IsAvailable {
			return nil, nil
		}
		return []doctors.Doctor{*doctor}, nil
	}
	if sel.HospitalID == nil {
		return nil, ErrInvalidSelector
	}
	return s.doctors.ListCandidates(ctx, *sel.HospitalID, sel.Specialty)
}

func openMinutes(d *doctors.Doctor, weekday time.Weekday, bookedMinutes []int) []int {
	all := schedule.Slots(d.WorkSchedule.On(weekday), durationOf(d))
	if len(all) == 0 {
		return nil
	}
	taken := make(map[int]struct{}, len(bookedMinutes))
	for _, m := range bookedMinutes {
		taken[m] = struct{}{}
	}
	open := make([]int, 0, len(all))
	for _, m := range all {
		if _, ok := taken[m]; !ok {
			open = append(open, m)
		}
	}
	return open
}

func durationOf(d *doctors.Doctor) int {
	if d.AppointmentDuration > 0 {
		return d.AppointmentDuration
	}
	return doctors.DefaultAppointmentDuration
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
