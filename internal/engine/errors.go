package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is an engine failure that is not a ledger rule violation:
// the request never reached the ledger, or replay diverged from the journal.
// Ledger failures are reported as *ledger.Error inside a Receipt instead.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Seq identifies the affected transition, when there is one.
	Seq int64

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeStopped indicates the engine no longer accepts submissions.
	ErrCodeStopped RuntimeErrorCode = "ENGINE_STOPPED"

	// ErrCodeParamsMismatch indicates the ledger was initialized with
	// different economic parameters than the engine was given.
	ErrCodeParamsMismatch RuntimeErrorCode = "PARAMS_MISMATCH"

	// ErrCodeReplayMismatch indicates re-execution diverged from the journal.
	ErrCodeReplayMismatch RuntimeErrorCode = "REPLAY_MISMATCH"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Seq != 0 {
		return fmt.Sprintf("%s: %s (seq=%d)", e.Code, e.Message, e.Seq)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsStopped returns true if err reports a stopped engine.
func IsStopped(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeStopped
	}
	return false
}

// IsReplayMismatch returns true if err reports a replay divergence.
func IsReplayMismatch(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeReplayMismatch
	}
	return false
}

func newStoppedError() *RuntimeError {
	return &RuntimeError{Code: ErrCodeStopped, Message: "engine is not accepting requests"}
}
