package reminders

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks the lifecycle of a reminder job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Reminder is a durable one-shot job: ring the patient shortly before their
// appointment starts. Rows survive process restarts; a poller drains the due
// ones.
type Reminder struct {
	ID             uuid.UUID  `json:"id"`
	AppointmentID  uuid.UUID  `json:"appointment_id"`
	PatientPhone   string     `json:"patient_phone"`
	AnnouncementID string     `json:"announcement_id"`
	DueAt          time.Time  `json:"due_at"`
	Status         Status     `json:"status"`
	Attempts       int        `json:"attempts"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	FailedAt       *time.Time `json:"failed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Stats holds aggregated reminder counts for the ops dashboard.
type Stats struct {
	PendingCount   int64 `json:"pending_count"`
	SentCount      int64 `json:"sent_count"`
	FailedCount    int64 `json:"failed_count"`
	CancelledCount int64 `json:"cancelled_count"`
}
