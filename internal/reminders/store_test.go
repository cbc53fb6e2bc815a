package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateDefaults(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO appointment_reminders`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r := &Reminder{
		AppointmentID: uuid.New(),
		PatientPhone:  "+233200000001",
		DueAt:         time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, NewStore(mock).Create(context.Background(), r))
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, StatusPending, r.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreListDue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	apptID := uuid.New()
	asOf := time.Date(2026, 9, 7, 8, 50, 0, 0, time.UTC)
	dueAt := asOf.Add(-time.Minute)
	created := asOf.Add(-time.Hour)

	mock.ExpectQuery(`WHERE status = 'pending' AND due_at <= \$1`).
		WithArgs(asOf, 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "appointment_id", "patient_phone", "announcement_id", "due_at",
			"status", "attempts", "sent_at", "failed_at", "created_at", "updated_at",
		}).AddRow(id, apptID, "+233200000001", "ann-42", dueAt,
			"pending", 0, (*time.Time)(nil), (*time.Time)(nil), created, created))

	got, err := NewStore(mock).ListDue(context.Background(), asOf, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, StatusPending, got[0].Status)
	assert.Equal(t, dueAt, got[0].DueAt)
}

func TestStoreMarkSentRequiresPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(`SET status = 'sent'`).
		WithArgs(pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewStore(mock).MarkSent(context.Background(), id)
	assert.Error(t, err, "marking a non-pending reminder sent must fail")
}

func TestStoreGetStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM appointment_reminders`).
		WillReturnRows(pgxmock.NewRows([]string{"pending", "sent", "failed", "cancelled"}).
			AddRow(int64(3), int64(12), int64(1), int64(2)))

	stats, err := NewStore(mock).GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.PendingCount)
	assert.Equal(t, int64(12), stats.SentCount)
	assert.Equal(t, int64(1), stats.FailedCount)
	assert.Equal(t, int64(2), stats.CancelledCount)
}
