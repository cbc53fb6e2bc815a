package notify

import "context"

// queueClient is the transport notifications are published to. Both the SQS
// and in-memory implementations satisfy it.
type queueClient interface {
	Send(ctx context.Context, body string) error
}

// Notification is one message delivered to a recipient's notification feed.
type Notification struct {
	RecipientID   string `json:"recipient_id"`
	RecipientKind string `json:"recipient_kind"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	Category      string `json:"category"`
	Link          string `json:"link,omitempty"`
}

const (
	recipientPatient = "patient"
	recipientDoctor  = "doctor"

	categoryBooking = "appointment_booked"
)
