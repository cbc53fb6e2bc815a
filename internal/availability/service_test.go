package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/scheduling-platform/internal/appointments"
	"github.com/careops/scheduling-platform/internal/doctors"
	"github.com/careops/scheduling-platform/internal/schedule"
)

// 2026-09-07 is a Monday, 2026-09-08 a Tuesday.
var (
	monday  = time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)
	tuesday = time.Date(2026, time.September, 8, 0, 0, 0, 0, time.UTC)
)

type stubDoctorSource struct {
	byID       map[uuid.UUID]*doctors.Doctor
	candidates []doctors.Doctor
}

func (s *stubDoctorSource) GetByID(_ context.Context, id uuid.UUID) (*doctors.Doctor, error) {
	if d, ok := s.byID[id]; ok {
		return d, nil
	}
	return nil, doctors.ErrNotFound
}

func (s *stubDoctorSource) ListCandidates(_ context.Context, _ uuid.UUID, _ string) ([]doctors.Doctor, error) {
	return s.candidates, nil
}

type stubApptSource struct {
	booked     map[uuid.UUID][]int
	ranged     []appointments.BookedSlot
	rangeCalls int
}

func (s *stubApptSource) BookedMinutes(_ context.Context, _ []uuid.UUID, _ time.Time) (map[uuid.UUID][]int, error) {
	return s.booked, nil
}

func (s *stubApptSource) BookedForRange(_ context.Context, _ []uuid.UUID, _, _ time.Time) ([]appointments.BookedSlot, error) {
	s.rangeCalls++
	return s.ranged, nil
}

func newDoctor(t *testing.T, day time.Weekday, from, to string, duration int) doctors.Doctor {
	t.Helper()
	var wk schedule.Week
	require.NoError(t, wk.Set(day, from, to, true))
	return doctors.Doctor{
		ID:                  uuid.New(),
		Name:                "Dr. Test",
		AppointmentDuration: duration,
		IsAvailable:         true,
		WorkSchedule:        wk,
	}
}

func TestAvailableSlotsRemovesBookedTime(t *testing.T) {
	doc := newDoctor(t, time.Monday, "09:00", "09:45", 15)
	svc := NewService(
		&stubDoctorSource{byID: map[uuid.UUID]*doctors.Doctor{doc.ID: &doc}},
		&stubApptSource{booked: map[uuid.UUID][]int{doc.ID: {555}}}, // 09:15 booked
		nil,
	)

	got, err := svc.AvailableSlots(context.Background(), monday, Selector{DoctorID: &doc.ID})
	require.NoError(t, err)
	assert.Equal(t, []Slot{
		{Time: "09:00", Status: "available"},
		{Time: "09:30", Status: "available"},
	}, got)
}

func TestAvailableSlotsUnionAcrossDoctors(t *testing.T) {
	// One doctor fully booked on Tuesday, the other wide open: "first
	// available" still offers the second doctor's three slots.
	hospital := uuid.New()
	busy := newDoctor(t, time.Tuesday, "10:00", "10:45", 15)
	free := newDoctor(t, time.Tuesday, "10:00", "10:45", 15)

	svc := NewService(
		&stubDoctorSource{candidates: []doctors.Doctor{busy, free}},
		&stubApptSource{booked: map[uuid.UUID][]int{busy.ID: {600, 615, 630}}},
		nil,
	)

	got, err := svc.AvailableSlots(context.Background(), tuesday, Selector{HospitalID: &hospital})
	require.NoError(t, err)
	assert.Equal(t, []Slot{
		{Time: "10:00", Status: "available"},
		{Time: "10:15", Status: "available"},
		{Time: "10:30", Status: "available"},
	}, got)
}

func TestAvailableSlotsDeduplicatesOverlap(t *testing.T) {
	hospital := uuid.New()
	a := newDoctor(t, time.Monday, "09:00", "10:00", 30)
	b := newDoctor(t, time.Monday, "09:30", "10:30", 30)

	svc := NewService(
		&stubDoctorSource{candidates: []doctors.Doctor{a, b}},
		&stubApptSource{booked: map[uuid.UUID][]int{}},
		nil,
	)

	got, err := svc.AvailableSlots(context.Background(), monday, Selector{HospitalID: &hospital})
	require.NoError(t, err)
	assert.Equal(t, []Slot{
		{Time: "09:00", Status: "available"},
		{Time: "09:30", Status: "available"},
		{Time: "10:00", Status: "available"},
	}, got)
}

func TestAvailableSlotsDisabledDayIsEmpty(t *testing.T) {
	doc := newDoctor(t, time.Tuesday, "09:00", "17:00", 15)
	svc := NewService(
		&stubDoctorSource{byID: map[uuid.UUID]*doctors.Doctor{doc.ID: &doc}},
		&stubApptSource{booked: map[uuid.UUID][]int{}},
		nil,
	)

	// Monday has no window for this doctor.
	got, err := svc.AvailableSlots(context.Background(), monday, Selector{DoctorID: &doc.ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAvailableSlotsUnknownDoctor(t *testing.T) {
	svc := NewService(&stubDoctorSource{}, &stubApptSource{}, nil)
	id := uuid.New()
	_, err := svc.AvailableSlots(context.Background(), monday, Selector{DoctorID: &id})
	assert.ErrorIs(t, err, doctors.ErrNotFound)
}

func TestAvailableSlotsRequiresSelector(t *testing.T) {
	svc := NewService(&stubDoctorSource{}, &stubApptSource{}, nil)
	_, err := svc.AvailableSlots(context.Background(), monday, Selector{})
	assert.ErrorIs(t, err, ErrInvalidSelector)
}

func TestMonthlyAvailabilityClassification(t *testing.T) {
	// Three 15-minute slots every Monday, nothing else.
	doc := newDoctor(t, time.Monday, "09:00", "09:45", 15)
	src := &stubApptSource{ranged: []appointments.BookedSlot{
		{DoctorID: doc.ID, Date: monday, Minute: 540},
		// 2026-09-14: every slot booked.
		{DoctorID: doc.ID, Date: monday.AddDate(0, 0, 7), Minute: 540},
		{DoctorID: doc.ID, Date: monday.AddDate(0, 0, 7), Minute: 555},
		{DoctorID: doc.ID, Date: monday.AddDate(0, 0, 7), Minute: 570},
	}}
	svc := NewService(
		&stubDoctorSource{byID: map[uuid.UUID]*doctors.Doctor{doc.ID: &doc}},
		src,
		nil,
	)

	got, err := svc.MonthlyAvailability(context.Background(), 2026, time.September, Selector{DoctorID: &doc.ID})
	require.NoError(t, err)
	require.Len(t, got, 30)

	assert.Equal(t, DayPartiallyAvailable, got["2026-09-07"], "one of three slots booked")
	assert.Equal(t, DayUnavailable, got["2026-09-14"], "all slots booked")
	assert.Equal(t, DayFullyAvailable, got["2026-09-21"], "no bookings")
	assert.Equal(t, DayUnavailable, got["2026-09-08"], "no Tuesday window")
	assert.Equal(t, 1, src.rangeCalls, "month must be fetched in one batch query")
}

func TestMonthlyAvailabilitySharedTimeCountsOnce(t *testing.T) {
	hospital := uuid.New()
	a := newDoctor(t, time.Monday, "09:00", "09:30", 15)
	b := newDoctor(t, time.Monday, "09:00", "09:30", 15)

	// Both doctors booked at 09:00: patients still see one occupied time out
	// of four possible, so the day stays partially available.
	svc := NewService(
		&stubDoctorSource{candidates: []doctors.Doctor{a, b}},
		&stubApptSource{ranged: []appointments.BookedSlot{
			{DoctorID: a.ID, Date: monday, Minute: 540},
			{DoctorID: b.ID, Date: monday, Minute: 540},
		}},
		nil,
	)

	got, err := svc.MonthlyAvailability(context.Background(), 2026, time.September, Selector{HospitalID: &hospital})
	require.NoError(t, err)
	assert.Equal(t, DayPartiallyAvailable, got["2026-09-07"])
}

func TestMonthlyAvailabilityNoCandidates(t *testing.T) {
	hospital := uuid.New()
	svc := NewService(&stubDoctorSource{}, &stubApptSource{}, nil)

	got, err := svc.MonthlyAvailability(context.Background(), 2026, time.February, Selector{HospitalID: &hospital})
	require.NoError(t, err)
	require.Len(t, got, 28)
	for day, class := range got {
		assert.Equal(t, DayUnavailable, class, day)
	}
}

func TestMonthlyAvailabilityHonorsCancellation(t *testing.T) {
	doc := newDoctor(t, time.Monday, "09:00", "09:45", 15)
	svc := NewService(
		&stubDoctorSource{byID: map[uuid.UUID]*doctors.Doctor{doc.ID: &doc}},
		&stubApptSource{},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.MonthlyAvailability(ctx, 2026, time.September, Selector{DoctorID: &doc.ID})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassifyMonotonic(t *testing.T) {
	rank := func(c DayClassification) int {
		switch c {
		case DayFullyAvailable:
			return 2
		case DayPartiallyAvailable:
			return 1
		default:
			return 0
		}
	}
	for totalPossible := 0; totalPossible <= 6; totalPossible++ {
		prev := rank(Classify(totalPossible, 0))
		for booked := 1; booked <= totalPossible+2; booked++ {
			cur := rank(Classify(totalPossible, booked))
			assert.LessOrEqual(t, cur, prev,
				"classification must never improve as bookings grow (total=%d booked=%d)", totalPossible, booked)
			prev = cur
		}
	}
}
