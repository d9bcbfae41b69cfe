package engine

import (
	"context"
	"sync"
)

// queuedRow is a row plus its position in the submitted batch, so results
// land in submission order regardless of which worker ran them.
type queuedRow struct {
	index int
	row   Row
}

// rowQueue is a thread-safe FIFO queue feeding batch workers.
//
// The queue uses a channel for signaling to enable context-aware waiting
// (workers never hang on cancellation).
type rowQueue struct {
	mu     sync.Mutex
	rows   []queuedRow
	closed bool
	signal chan struct{} // Signals row availability (buffered, size 1)
}

func newRowQueue(capacity int) *rowQueue {
	return &rowQueue{
		rows:   make([]queuedRow, 0, capacity),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a row to the back of the queue.
// Returns false if the queue is closed.
func (q *rowQueue) Enqueue(r queuedRow) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.rows = append(q.rows, r)

	// Non-blocking: buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue attempts to dequeue without blocking.
func (q *rowQueue) TryDequeue() (queuedRow, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.rows) == 0 {
		return queuedRow{}, false
	}
	r := q.rows[0]
	q.rows[0] = queuedRow{}
	if len(q.rows) == 1 {
		q.rows = q.rows[:0]
	} else {
		q.rows = q.rows[1:]
	}
	return r, true
}

// Next blocks until a row is available, the queue is closed and drained,
// or ctx is done. The boolean is false in the latter two cases.
func (q *rowQueue) Next(ctx context.Context) (queuedRow, bool) {
	for {
		if ctx.Err() != nil {
			return queuedRow{}, false
		}
		if r, ok := q.TryDequeue(); ok {
			return r, true
		}
		q.mu.Lock()
		drained := q.closed && len(q.rows) == 0
		q.mu.Unlock()
		if drained {
			return queuedRow{}, false
		}
		select {
		case <-ctx.Done():
			return queuedRow{}, false
		case <-q.signal:
		}
	}
}

// Len returns the current queue length.
func (q *rowQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.rows)
}

// Close signals that no more rows will be enqueued and wakes all waiters.
func (q *rowQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
