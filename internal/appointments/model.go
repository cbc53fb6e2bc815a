package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/careops/scheduling-platform/internal/schedule"
)

// Status tracks the lifecycle of an appointment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNowServing Status = "now_serving"
	StatusUpNext     Status = "up_next"
	StatusWaiting    Status = "waiting"
)

// Appointment is a booked slot for a patient with a doctor.
// Date carries the calendar day only; TimeMinute is the start time as
// minutes from midnight.
type Appointment struct {
	ID          uuid.UUID  `json:"id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	DoctorID    uuid.UUID  `json:"doctor_id"`
	HospitalID  *uuid.UUID `json:"hospital_id,omitempty"`
	Date        time.Time  `json:"date"`
	TimeMinute  int        `json:"-"`
	Time        string     `json:"time"`
	Status      Status     `json:"status"`
	TokenNumber string     `json:"token_number"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clock renders the appointment start as "HH:MM".
func (a *Appointment) Clock() string {
	return schedule.FormatClock(a.TimeMinute)
}

// StartAt combines the calendar day and start minute into one instant.
func (a *Appointment) StartAt() time.Time {
	day := a.Date.UTC()
	return time.Date(day.Year(), day.Month(), day.Day(), a.TimeMinute/60, a.TimeMinute%60, 0, 0, time.UTC)
}
