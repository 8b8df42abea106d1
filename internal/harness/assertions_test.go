package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solidarity/internal/ir"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Kind: "initialize", Caller: "authority", Outcome: ir.OutcomeOK},
		{Seq: 2, Kind: "registerUser", Caller: "alice", Outcome: ir.OutcomeOK},
		{Seq: 3, Kind: "registerUser", Caller: "alice", Outcome: ir.OutcomeFailed, Code: "RECORD_EXISTS"},
		{Seq: 4, Kind: "createStrike", Caller: "bob", Outcome: ir.OutcomeOK},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Kind: "registerUser", Code: "RECORD_EXISTS"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Kind: "createStrike", Caller: "bob"}))

	err := assertTraceContains(trace, Assertion{Kind: "createStrike", Caller: "alice"})
	require.Error(t, err)
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, AssertTraceContains, aerr.Type)
	assert.Contains(t, err.Error(), "createStrike caller=alice")
	assert.Contains(t, err.Error(), "[3] registerUser by alice: failed RECORD_EXISTS")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Kinds: []string{"initialize", "createStrike"}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Kinds: []string{"registerUser", "registerUser"}}))

	err := assertTraceOrder(trace, Assertion{Kinds: []string{"createStrike", "registerUser"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no registerUser after [createStrike]")

	err = assertTraceOrder(trace, Assertion{Kinds: []string{"registerUser", "registerUser", "registerUser"}})
	require.Error(t, err)
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Kind: "registerUser", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Kind: "registerUser", Outcome: ir.OutcomeOK, Count: 1}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Kind: "voteOnProposal", Count: 0}))

	err := assertTraceCount(trace, Assertion{Kind: "registerUser", Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 occurrences of registerUser")
	assert.Contains(t, err.Error(), "Actual: 2 occurrences")
}

func TestMatchFields(t *testing.T) {
	actual := ir.IRObject{
		"status":   ir.IRString("verified"),
		"count":    ir.IRUint(3),
		"offset":   ir.IRInt(-2),
		"location": ir.IRObject{"address": ir.IRString("12 Union St")},
		"verifiers": ir.IRObject{
			"capacity": ir.IRUint(3),
			"members":  ir.IRArray{ir.IRString("bob"), ir.IRString("carol")},
		},
	}

	assert.NoError(t, matchFields(map[string]any{
		"status":            "verified",
		"count":             3,
		"offset":            -2,
		"location.address":  "12 Union St",
		"verifiers.members": []any{"bob", "carol"},
	}, actual))

	err := matchFields(map[string]any{"count": 4}, actual)
	require.Error(t, err)
	assert.Equal(t, "count: expected 4, got 3", err.Error())

	err = matchFields(map[string]any{"location.city": "Sydney"}, actual)
	require.Error(t, err)
	assert.Equal(t, "location.city: missing", err.Error())

	err = matchFields(map[string]any{"status.inner": "x"}, actual)
	require.Error(t, err)
}

func TestEvaluateAssertions_RequiresStoreForState(t *testing.T) {
	result := NewResult()
	errs := EvaluateAssertions(result, []Assertion{{Type: AssertDao, Expect: map[string]any{"active_users": 0}}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires database context")
}

func TestEvaluateAssertions_RecordNotFound(t *testing.T) {
	scenario := loadTestdata(t, "ubi_lifecycle.yaml")
	scenario.Assertions = []Assertion{{Type: AssertRecord, Ref: "activity:missing", Expect: map[string]any{"status": "pending"}}}

	result, err := RunContext(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Actual: not found")
}
