package testutil

import "sync"

// StepTime is a manually driven wall-clock source for tests, in Unix
// seconds. It satisfies engine.TimeSource.
//
// With a non-zero step, every call to Now advances the time by step after
// reading it, so consecutive transitions get distinct, predictable times.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepTime struct {
	mu    sync.Mutex
	start int64
	now   int64
	step  int64
}

// NewStepTime creates a time source that starts at start and advances by
// step on each read.
func NewStepTime(start, step int64) *StepTime {
	return &StepTime{start: start, now: start, step: step}
}

// Now returns the current time, then applies the step.
func (s *StepTime) Now() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now
	s.now += s.step
	return t
}

// Peek returns the time the next Now call will report.
func (s *StepTime) Peek() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Set jumps to t. Moving backwards is allowed so tests can exercise the
// engine's monotonic floor.
func (s *StepTime) Set(t int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = t
}

// Advance moves time forward by d seconds.
func (s *StepTime) Advance(d int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now += d
}

// Reset returns to the start time.
func (s *StepTime) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.start
}
