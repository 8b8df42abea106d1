package harness

import (
	"github.com/roach88/solidarity/internal/engine"
	"github.com/roach88/solidarity/internal/ir"
)

// TraceEvent is one journaled transition as seen by the scenario.
type TraceEvent struct {
	Seq          int64       `json:"seq"`
	Now          int64       `json:"now"`
	RequestID    string      `json:"request_id"`
	TransitionID string      `json:"transition_id"`
	Kind         string      `json:"kind"`
	Caller       string      `json:"caller"`
	Args         ir.IRObject `json:"args"`
	Outcome      string      `json:"outcome"`
	Code         string      `json:"code,omitempty"`
	Result       ir.IRObject `json:"result"`
	Keys         []string    `json:"keys"`
}

func traceEventFrom(args ir.IRObject, r engine.Receipt) TraceEvent {
	return TraceEvent{
		Seq:          r.Seq,
		Now:          r.Now,
		RequestID:    r.RequestID,
		TransitionID: r.TransitionID,
		Kind:         r.Kind,
		Caller:       r.Caller,
		Args:         args,
		Outcome:      r.Outcome,
		Code:         r.Code,
		Result:       r.Result,
		Keys:         r.Keys,
	}
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every transition, setup included, in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Vars holds the values saved by steps.
	Vars map[string]string `json:"vars,omitempty"`

	// StateDigest is the digest of the final record set.
	StateDigest string `json:"state_digest"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Vars:   map[string]string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
