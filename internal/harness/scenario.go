package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/solidarity/internal/engine"
	"github.com/roach88/solidarity/internal/ir"
)

// DefaultStart is the scenario clock's starting Unix time when a scenario
// does not set one.
const DefaultStart int64 = 1_700_000_000

// Scenario is a scripted ledger session with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Params is an optional CUE parameter file, relative to the scenario file.
	Params string `yaml:"params,omitempty"`

	// Start is the Unix time of the first transition. Default: DefaultStart.
	Start int64 `yaml:"start,omitempty"`

	// RequestPrefix prefixes the generated request ids. Default: "req".
	RequestPrefix string `yaml:"request_prefix,omitempty"`

	// Setup steps must all commit; a failure aborts the run.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow steps may fail; their expect clauses are checked.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`

	dir string
}

// Step submits one transition.
type Step struct {
	// Kind is the transition kind, e.g. "createActivity".
	Kind string `yaml:"kind"`

	// Caller is the authenticated identity running the transition.
	Caller string `yaml:"caller"`

	// Args are the transition arguments. String values of the form "$name"
	// are replaced by a variable saved by an earlier step.
	Args map[string]any `yaml:"args,omitempty"`

	// Advance moves the scenario clock forward by this many seconds before
	// the step runs.
	Advance int64 `yaml:"advance,omitempty"`

	// Save maps variable names to string result fields of this step, e.g.
	// {act: activity} stores the new activity key as $act.
	Save map[string]string `yaml:"save,omitempty"`

	// Expect validates the receipt. If nil, the step must commit.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected receipt.
type ExpectClause struct {
	// Outcome is "ok" or "failed".
	Outcome string `yaml:"outcome"`

	// Code is the expected error code of a failed step.
	Code string `yaml:"code,omitempty"`

	// Result is a subset match on the receipt's result fields.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type selects the assertion; see the Assert* constants.
	Type string `yaml:"type"`

	// Kind, Caller, Outcome and Code filter trace events
	// (trace_contains, trace_count).
	Kind    string `yaml:"kind,omitempty"`
	Caller  string `yaml:"caller,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`
	Code    string `yaml:"code,omitempty"`

	// Count is the expected number of matches (trace_count, list_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected order of transition kinds (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Ref is a record key or "$name" variable (record).
	Ref string `yaml:"ref,omitempty"`

	// Owner selects a profile (profile).
	Owner string `yaml:"owner,omitempty"`

	// RecordKind and Status filter stored records (list_count).
	RecordKind string `yaml:"record_kind,omitempty"`
	Status     string `yaml:"status,omitempty"`

	// Expect is a subset match on record fields. Keys may be dotted paths
	// such as "verifiers.members".
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertRecord        = "record"
	AssertProfile       = "profile"
	AssertDao           = "dao"
	AssertListCount     = "list_count"
	AssertReplay        = "replay"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.dir = filepath.Dir(path)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ParamsPath returns the resolved parameter file path, or "" for defaults.
func (s *Scenario) ParamsPath() string {
	if s.Params == "" || filepath.IsAbs(s.Params) {
		return s.Params
	}
	return filepath.Join(s.dir, s.Params)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Params != "" {
		if _, err := os.Stat(s.ParamsPath()); err != nil {
			return fmt.Errorf("params file not found: %s", s.ParamsPath())
		}
	}

	for i, step := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), step); err != nil {
			return err
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(fmt.Sprintf("flow[%d]", i), step); err != nil {
			return err
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(where string, step Step) error {
	if step.Kind == "" {
		return fmt.Errorf("%s: kind is required", where)
	}
	if step.Caller == "" {
		return fmt.Errorf("%s: caller is required", where)
	}
	if step.Advance < 0 {
		return fmt.Errorf("%s: advance must be non-negative", where)
	}
	if e := step.Expect; e != nil {
		if e.Outcome != ir.OutcomeOK && e.Outcome != ir.OutcomeFailed {
			return fmt.Errorf("%s.expect: outcome must be %q or %q", where, ir.OutcomeOK, ir.OutcomeFailed)
		}
		if e.Code != "" && e.Outcome != ir.OutcomeFailed {
			return fmt.Errorf("%s.expect: code requires outcome %q", where, ir.OutcomeFailed)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
		for _, k := range a.Kinds {
			if !slices.Contains(engine.Kinds, k) {
				return fmt.Errorf("assertions[%d]: unknown kind %q", index, k)
			}
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertRecord:
		if a.Ref == "" {
			return fmt.Errorf("assertions[%d]: ref is required for record", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
	case AssertProfile:
		if a.Owner == "" {
			return fmt.Errorf("assertions[%d]: owner is required for profile", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for profile", index)
		}
	case AssertDao:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for dao", index)
		}
	case AssertListCount:
		if a.RecordKind == "" {
			return fmt.Errorf("assertions[%d]: record_kind is required for list_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for list_count", index)
		}
	case AssertReplay:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
