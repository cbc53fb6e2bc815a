package doctors

import (
	"github.com/google/uuid"

	"github.com/careops/scheduling-platform/internal/schedule"
)

// DefaultAppointmentDuration is used when a doctor has no explicit duration.
const DefaultAppointmentDuration = 15

// Doctor is the scheduling view of a doctor: identity, matching filters and
// the recurring weekly availability used to generate slots.
type Doctor struct {
	ID                  uuid.UUID     `json:"id"`
	Name                string        `json:"name"`
	Specialty           string        `json:"specialty"`
	HospitalID          *uuid.UUID    `json:"hospital_id,omitempty"`
	AppointmentDuration int           `json:"appointment_duration_mins"`
	IsAvailable         bool          `json:"is_available"`
	WorkSchedule        schedule.Week `json:"-"`
}
