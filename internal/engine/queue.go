package engine

import "sync"

// submission is a request waiting for the Run loop, plus the channel its
// receipt is delivered on.
type submission struct {
	req   Request
	reply chan submitResult
}

type submitResult struct {
	receipt Receipt
	err     error
}

// requestQueue is a thread-safe FIFO of submissions.
//
// Callers enqueue from any goroutine; only the Run loop dequeues. The queue
// uses a channel for signaling so the Run loop can wait on it alongside
// context cancellation.
type requestQueue struct {
	mu      sync.Mutex
	pending []submission
	closed  bool
	signal  chan struct{} // Signals availability (buffered, size 1)
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		pending: make([]submission, 0, 64),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds a submission to the back of the queue.
// Returns false if the queue is closed.
func (q *requestQueue) Enqueue(s submission) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.pending = append(q.pending, s)

	// Non-blocking: a buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (submission{}, false) if the queue is empty.
func (q *requestQueue) TryDequeue() (submission, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return submission{}, false
	}

	s := q.pending[0]

	// Clear the slot so the backing array does not pin the reply channel
	q.pending[0] = submission{}

	if len(q.pending) == 1 {
		q.pending = q.pending[:0]
	} else {
		q.pending = q.pending[1:]
	}

	return s, true
}

// Wait returns a channel that signals when submissions may be available.
// The channel is closed when the queue closes.
func (q *requestQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Closed reports whether Close has been called.
func (q *requestQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops further enqueues and wakes the Run loop. Submissions still
// queued are drained by Run before it returns.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
