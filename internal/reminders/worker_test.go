package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkerStore struct {
	due     []Reminder
	listErr error
	sent    []uuid.UUID
	failed  []uuid.UUID
}

func (f *fakeWorkerStore) ListDue(_ context.Context, _ time.Time, _ int) ([]Reminder, error) {
	return f.due, f.listErr
}

func (f *fakeWorkerStore) MarkSent(_ context.Context, id uuid.UUID) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeWorkerStore) MarkFailed(_ context.Context, id uuid.UUID) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeCaller struct {
	calls   []string
	failFor map[string]error
}

func (f *fakeCaller) TriggerCall(_ context.Context, phone, _ string) error {
	f.calls = append(f.calls, phone)
	if f.failFor != nil {
		return f.failFor[phone]
	}
	return nil
}

func TestProcessDueSendsAll(t *testing.T) {
	store := &fakeWorkerStore{due: []Reminder{
		{ID: uuid.New(), PatientPhone: "+233200000001"},
		{ID: uuid.New(), PatientPhone: "+233200000002"},
	}}
	caller := &fakeCaller{}

	sent, err := NewWorker(store, caller, nil).ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"+233200000001", "+233200000002"}, caller.calls)
	assert.Len(t, store.sent, 2)
	assert.Empty(t, store.failed)
}

func TestProcessDueMarksFailuresAndContinues(t *testing.T) {
	bad := Reminder{ID: uuid.New(), PatientPhone: "+233200000001"}
	good := Reminder{ID: uuid.New(), PatientPhone: "+233200000002"}
	store := &fakeWorkerStore{due: []Reminder{bad, good}}
	caller := &fakeCaller{failFor: map[string]error{
		"+233200000001": errors.New("line busy"),
	}}

	sent, err := NewWorker(store, caller, nil).ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "one failed trigger must not stop the batch")
	assert.Equal(t, []uuid.UUID{bad.ID}, store.failed)
	assert.Equal(t, []uuid.UUID{good.ID}, store.sent)
}

func TestProcessDueEmpty(t *testing.T) {
	store := &fakeWorkerStore{}
	caller := &fakeCaller{}

	sent, err := NewWorker(store, caller, nil).ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, caller.calls)
}

func TestProcessDueListError(t *testing.T) {
	store := &fakeWorkerStore{listErr: errors.New("db down")}
	_, err := NewWorker(store, &fakeCaller{}, nil).ProcessDue(context.Background())
	assert.Error(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := &fakeWorkerStore{}
	worker := NewWorker(store, &fakeCaller{}, nil).WithInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
