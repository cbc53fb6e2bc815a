package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careops/scheduling-platform/internal/observability/metrics"
	"github.com/careops/scheduling-platform/pkg/logging"
)

// Caller triggers the outbound reminder announcement call.
type Caller interface {
	TriggerCall(ctx context.Context, phone, announcementID string) error
}

type workerStore interface {
	ListDue(ctx context.Context, asOf time.Time, limit int) ([]Reminder, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// Worker drains due reminders and fires the telephony trigger for each.
// Trigger failures are logged and marked on the row; they never propagate to
// the bookings that created them.
type Worker struct {
	store     workerStore
	caller    Caller
	logger    *logging.Logger
	metrics   *metrics.SchedulingMetrics
	interval  time.Duration
	batchSize int
}

// NewWorker creates a reminder worker.
func NewWorker(store workerStore, caller Caller, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		store:     store,
		caller:    caller,
		logger:    logger,
		interval:  30 * time.Second,
		batchSize: 50,
	}
}

func (w *Worker) WithInterval(d time.Duration) *Worker {
	if d > 0 {
		w.interval = d
	}
	return w
}

func (w *Worker) WithBatchSize(n int) *Worker {
	if n > 0 {
		w.batchSize = n
	}
	return w
}

func (w *Worker) WithMetrics(m *metrics.SchedulingMetrics) *Worker {
	w.metrics = m
	return w
}

// Run polls for due reminders until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	if _, err := w.ProcessDue(ctx); err != nil {
		w.logger.Error("reminder worker: drain failed", "error", err)
	}
}

// ProcessDue fires every due reminder once and returns how many were sent.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	due, err := w.store.ListDue(ctx, time.Now().UTC(), w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	w.logger.Info("reminder worker: processing due reminders", "count", len(due))

	sent := 0
	for i := range due {
		r := &due[i]
		if err := w.caller.TriggerCall(ctx, r.PatientPhone, r.AnnouncementID); err != nil {
			w.logger.Error("reminder worker: trigger call failed",
				"id", r.ID, "appointment_id", r.AppointmentID, "error", err)
			w.metrics.ObserveReminder("failed")
			if err := w.store.MarkFailed(ctx, r.ID); err != nil {
				w.logger.Error("reminder worker: mark failed errored", "id", r.ID, "error", err)
			}
			continue
		}
		if err := w.store.MarkSent(ctx, r.ID); err != nil {
			w.logger.Error("reminder worker: mark sent errored", "id", r.ID, "error", err)
			continue
		}
		w.metrics.ObserveReminder("sent")
		sent++
	}
	return sent, nil
}
