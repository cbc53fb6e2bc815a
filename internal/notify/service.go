package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/careops/scheduling-platform/internal/appointments"
	"github.com/careops/scheduling-platform/pkg/logging"
)

// Service publishes booking notifications to the notification queue. Delivery
// is fire-and-forget: a booking never fails because its notification could
// not be queued.
type Service struct {
	queue  queueClient
	logger *logging.Logger
}

// NewService creates a notification service on top of a queue.
func NewService(queue queueClient, logger *logging.Logger) *Service {
	if queue == nil {
		panic("notify: queue required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{queue: queue, logger: logger}
}

// AppointmentBooked notifies both the patient and the doctor about a new
// booking.
func (s *Service) AppointmentBooked(ctx context.Context, appt *appointments.Appointment, doctorName string) {
	date := appt.Date.Format("Monday, 2 Jan 2006")
	clock := appt.Clock()

	s.publish(ctx, Notification{
		RecipientID:   appt.PatientID.String(),
		RecipientKind: recipientPatient,
		Title:         "Appointment confirmed",
		Message:       fmt.Sprintf("Your appointment with %s is on %s at %s. Your token number is %s.", doctorName, date, clock, appt.TokenNumber),
		Category:      categoryBooking,
		Link:          "/appointments/" + appt.ID.String(),
	})
	s.publish(ctx, Notification{
		RecipientID:   appt.DoctorID.String(),
		RecipientKind: recipientDoctor,
		Title:         "New appointment",
		Message:       fmt.Sprintf("A patient booked %s at %s (token %s).", date, clock, appt.TokenNumber),
		Category:      categoryBooking,
		Link:          "/appointments/" + appt.ID.String(),
	})
}

func (s *Service) publish(ctx context.Context, n Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		s.logger.Error("notify: marshal notification", "error", err)
		return
	}

	// Bound the publish so a slow queue cannot stall the booking path.
	sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.queue.Send(sendCtx, string(body)); err != nil {
		s.logger.Error("notify: failed to publish notification",
			"recipient_kind", n.RecipientKind,
			"category", n.Category,
			"error", err,
		)
		return
	}
	s.logger.Debug("notify: notification queued",
		"recipient_kind", n.RecipientKind,
		"category", n.Category,
	)
}
