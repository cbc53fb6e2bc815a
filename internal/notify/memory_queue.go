package notify

import "context"

// MemoryQueue is a queueClient backed by an in-memory buffered channel. Used
// in local development and tests where no SQS endpoint exists.
type MemoryQueue struct {
	ch chan string
}

// NewMemoryQueue creates a MemoryQueue with the provided buffer capacity.
func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 128
	}
	return &MemoryQueue{ch: make(chan string, buffer)}
}

// Send enqueues a payload or blocks until ctx is done.
func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case q.ch <- body:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain returns every buffered payload without blocking.
func (q *MemoryQueue) Drain() []string {
	var out []string
	for {
		select {
		case body := <-q.ch:
			out = append(out, body)
		default:
			return out
		}
	}
}
