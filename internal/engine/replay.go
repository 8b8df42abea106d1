package engine

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
	"github.com/roach88/solidarity/internal/store"
)

// Mismatch is one divergence between a journaled transition and its
// re-execution.
type Mismatch struct {
	Seq   int64  `json:"seq"`
	Field string `json:"field"`
	Want  string `json:"want"`
	Got   string `json:"got"`
}

// ReplayReport summarizes a replay.
type ReplayReport struct {
	Transitions  int        `json:"transitions"`
	Failed       int        `json:"failed"`
	Mismatches   []Mismatch `json:"mismatches"`
	SourceDigest string     `json:"source_digest"`
	ReplayDigest string     `json:"replay_digest"`
}

// OK reports whether every transition reproduced and the final states match.
func (r ReplayReport) OK() bool {
	return len(r.Mismatches) == 0 && r.SourceDigest == r.ReplayDigest
}

// Err returns a REPLAY_MISMATCH error describing the first divergence, or
// nil if the replay reproduced the journal.
func (r ReplayReport) Err() error {
	if r.OK() {
		return nil
	}
	if len(r.Mismatches) == 0 {
		return &RuntimeError{
			Code:    ErrCodeReplayMismatch,
			Message: "state digest differs",
			Details: map[string]string{"want": r.SourceDigest, "got": r.ReplayDigest},
		}
	}
	m := r.Mismatches[0]
	return &RuntimeError{
		Code:    ErrCodeReplayMismatch,
		Message: fmt.Sprintf("%s differs (%d mismatches)", m.Field, len(r.Mismatches)),
		Seq:     m.Seq,
		Details: map[string]string{"want": m.Want, "got": m.Got},
	}
}

// Replay re-executes the journal of src, in seq order, on the empty store
// dst under parameters p. Each transition runs with its journaled seq, now,
// caller and args through the same path as Apply. The report lists every
// transition whose id, outcome, code, result or keys differ, and compares
// the final state digests.
func Replay(ctx context.Context, src, dst *store.Store, p ledger.Params, opts ...Option) (ReplayReport, error) {
	e, err := New(ctx, dst, p, opts...)
	if err != nil {
		return ReplayReport{}, err
	}
	if e.clock.Current() != 0 {
		return ReplayReport{}, fmt.Errorf("replay target already has %d journaled transitions", e.clock.Current())
	}

	journal, err := src.ReadTransitions(ctx, 0, 0)
	if err != nil {
		return ReplayReport{}, err
	}

	report := ReplayReport{Mismatches: []Mismatch{}}
	for _, tr := range journal {
		req := Request{ID: tr.RequestID, Kind: tr.Kind, Caller: ledger.Identity(tr.Caller)}
		got, err := e.replayOne(ctx, req, tr.Args, tr.Seq, tr.Now)
		if err != nil {
			return report, fmt.Errorf("replay seq %d: %w", tr.Seq, err)
		}
		report.Transitions++
		if !tr.OK() {
			report.Failed++
		}
		report.Mismatches = append(report.Mismatches, compareTransition(tr, got)...)
	}

	if report.SourceDigest, err = src.StateDigest(ctx); err != nil {
		return report, err
	}
	if report.ReplayDigest, err = dst.StateDigest(ctx); err != nil {
		return report, err
	}
	return report, nil
}

// replayOne executes a journaled transition at its recorded seq and now.
func (e *Engine) replayOne(ctx context.Context, req Request, args ir.IRObject, seq, now int64) (Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if args == nil {
		args = ir.IRObject{}
	}
	rec, err := e.execute(ctx, req, args, seq, now)
	if err != nil {
		return Receipt{}, err
	}
	e.clock.Observe(seq)
	if now > e.lastNow {
		e.lastNow = now
	}
	return rec, nil
}

func compareTransition(want ir.Transition, got Receipt) []Mismatch {
	var out []Mismatch
	check := func(field, w, g string) {
		if w != g {
			out = append(out, Mismatch{Seq: want.Seq, Field: field, Want: w, Got: g})
		}
	}
	check("id", want.ID, got.TransitionID)
	check("outcome", want.Outcome, got.Outcome)
	check("code", want.Code, got.Code)
	check("result", canonicalString(want.Result), canonicalString(got.Result))
	if !slices.Equal(want.Keys, got.Keys) {
		check("keys", fmt.Sprint(want.Keys), fmt.Sprint(got.Keys))
	}
	return out
}

func canonicalString(obj ir.IRObject) string {
	if obj == nil {
		obj = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "error: " + strconv.Quote(err.Error())
	}
	return string(data)
}
