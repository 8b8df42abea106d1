package engine

import (
	"sync/atomic"
	"time"
)

// Clock is the monotonic logical clock that stamps every transition.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// However, the Engine's single-writer design means only one goroutine
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used to resume from the last journaled seq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// Observe moves the clock forward to seq if it is behind. Replay uses it so
// transitions admitted after a replay continue the recorded sequence.
func (c *Clock) Observe(seq int64) {
	for {
		cur := c.seq.Load()
		if seq <= cur || c.seq.CompareAndSwap(cur, seq) {
			return
		}
	}
}

// TimeSource supplies the trusted wall time, in Unix seconds, for
// transitions. Ledger rules never read the wall clock themselves.
type TimeSource interface {
	Now() int64
}

// SystemTime reads the host clock.
type SystemTime struct{}

// Now returns the current Unix time in seconds.
func (SystemTime) Now() int64 {
	return time.Now().Unix()
}
