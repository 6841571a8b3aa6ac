package bus

import (
	"context"
	"sync"

	"marketspread/pkg/exception"
)

// Inbound is one raw record waiting to be handled.
type Inbound struct {
	Seq    uint64
	RecvTs int64
	Raw    []byte
}

// Queue is a bounded queue of inbound records. Run may be called from
// several goroutines to form a worker pool.
type Queue struct {
	ch     chan Inbound
	mu     sync.RWMutex
	closed bool
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan Inbound, capacity)}
}

// TryPublish enqueues a record without blocking.
func (q *Queue) TryPublish(in Inbound) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return exception.ErrQueueClosed
	}
	select {
	case q.ch <- in:
		return nil
	default:
		return exception.ErrQueueFull
	}
}

// Publish enqueues a record, waiting for room until ctx is done.
func (q *Queue) Publish(ctx context.Context, in Inbound) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return exception.ErrQueueClosed
	}
	select {
	case q.ch <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the queue from accepting new records. Records already queued are still delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Len returns the number of queued records.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Run consumes records until the context is done or the queue is closed and drained.
func (q *Queue) Run(ctx context.Context, handler func(Inbound)) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-q.ch:
			if !ok {
				return
			}
			handler(in)
		}
	}
}
