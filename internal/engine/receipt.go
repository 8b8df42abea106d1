package engine

import (
	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
)

// Receipt reports the outcome of one admitted transition. A failed
// transition still has a Receipt: Code and Message carry the ledger error
// and Result carries its details.
type Receipt struct {
	Seq          int64       `json:"seq"`
	TransitionID string      `json:"transition_id"`
	RequestID    string      `json:"request_id"`
	Kind         string      `json:"kind"`
	Caller       string      `json:"caller"`
	Now          int64       `json:"now"`
	Outcome      string      `json:"outcome"`
	Code         string      `json:"code,omitempty"`
	Message      string      `json:"message,omitempty"`
	Keys         []string    `json:"keys"`
	Result       ir.IRObject `json:"result"`

	err *ledger.Error
}

// OK reports whether the transition committed.
func (r Receipt) OK() bool { return r.Outcome == ir.OutcomeOK }

// Err returns the ledger error of a failed transition, or nil.
func (r Receipt) Err() error {
	if r.OK() {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	e := ledger.NewError(ledger.Code(r.Code))
	if r.Message != "" {
		e.Message = r.Message
	}
	return e
}

// ReceiptFromTransition rebuilds the receipt of a journaled transition.
func ReceiptFromTransition(tr ir.Transition) Receipt {
	return Receipt{
		Seq:          tr.Seq,
		TransitionID: tr.ID,
		RequestID:    tr.RequestID,
		Kind:         tr.Kind,
		Caller:       tr.Caller,
		Now:          tr.Now,
		Outcome:      tr.Outcome,
		Code:         tr.Code,
		Message:      tr.Message,
		Keys:         tr.Keys,
		Result:       tr.Result,
	}
}

// detailsObject converts error details into a journal result.
func detailsObject(details map[string]string) ir.IRObject {
	obj := make(ir.IRObject, len(details))
	for k, v := range details {
		obj[k] = ir.IRString(v)
	}
	return obj
}
