package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/solidarity/internal/ir"
)

// TraceSnapshot captures the ledger-visible trace of a scenario execution.
// Request and transition ids and record keys are left out: the snapshot
// pins behavior, not the hashing scheme.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonical converts the snapshot into an IR value for canonical JSON
// serialization.
func (s *TraceSnapshot) toCanonical() ir.IRObject {
	trace := make(ir.IRArray, len(s.Trace))
	for i, event := range s.Trace {
		obj := ir.IRObject{
			"seq":     ir.IRInt(event.Seq),
			"now":     ir.IRInt(event.Now),
			"kind":    ir.IRString(event.Kind),
			"caller":  ir.IRString(event.Caller),
			"args":    nonNil(event.Args),
			"outcome": ir.IRString(event.Outcome),
			"result":  nonNil(event.Result),
		}
		if event.Code != "" {
			obj["code"] = ir.IRString(event.Code)
		}
		trace[i] = obj
	}
	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"trace":         trace,
	}
}

func nonNil(obj ir.IRObject) ir.IRObject {
	if obj == nil {
		return ir.IRObject{}
	}
	return obj
}

// SnapshotJSON renders the canonical golden form of a result's trace.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace}
	return ir.MarshalCanonical(snapshot.toCanonical())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
