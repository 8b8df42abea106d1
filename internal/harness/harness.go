package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/solidarity/internal/engine"
	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
	"github.com/roach88/solidarity/internal/params"
	"github.com/roach88/solidarity/internal/store"
	"github.com/roach88/solidarity/internal/testutil"
)

// Harness holds the per-run state of one scenario.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	params ledger.Params
	time   *testutil.StepTime
	vars   map[string]string
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database and load parameters
// 2. Execute setup steps, each of which must commit
// 3. Execute flow steps with expect validation
// 4. Evaluate assertions against the trace and final state
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	p, err := params.Load(scenario.ParamsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load params: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	start := scenario.Start
	if start == 0 {
		start = DefaultStart
	}
	clock := testutil.NewStepTime(start, 0)

	eng, err := engine.New(ctx, st, p,
		engine.WithTimeSource(clock),
		engine.WithRequestIDs(testutil.NewSequentialIDs(scenario.RequestPrefix)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{
		store:  st,
		engine: eng,
		params: p,
		time:   clock,
		vars:   map[string]string{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("setup failed: %w", err)
	}

	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("flow failed: %w", err)
	}

	actx := &AssertionContext{Ctx: ctx, Store: st, Params: p, Vars: h.vars}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	digest, err := st.StateDigest(ctx)
	if err != nil {
		return nil, fmt.Errorf("state digest: %w", err)
	}
	result.StateDigest = digest
	for k, v := range h.vars {
		result.Vars[k] = v
	}

	return result, nil
}

// executeSetup runs setup steps. Setup steps must commit: any failure
// aborts the scenario.
func (h *Harness) executeSetup(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		receipt, err := h.apply(ctx, step, result)
		if err != nil {
			return fmt.Errorf("setup[%d] %s: %w", i, step.Kind, err)
		}
		if !receipt.OK() {
			return fmt.Errorf("setup[%d] %s: %w", i, step.Kind, receipt.Err())
		}
		if err := h.save(step, receipt); err != nil {
			return fmt.Errorf("setup[%d] %s: %w", i, step.Kind, err)
		}
	}
	return nil
}

// executeFlow runs flow steps and validates each receipt against its expect
// clause. Mismatches are recorded on the result; infrastructure errors
// abort the run.
func (h *Harness) executeFlow(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		receipt, err := h.apply(ctx, step, result)
		if err != nil {
			return fmt.Errorf("flow[%d] %s: %w", i, step.Kind, err)
		}

		expect := step.Expect
		if expect == nil {
			expect = &ExpectClause{Outcome: ir.OutcomeOK}
		}
		for _, msg := range checkExpect(expect, receipt) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Kind, msg))
		}

		if receipt.OK() {
			if err := h.save(step, receipt); err != nil {
				result.AddError(fmt.Sprintf("flow[%d] %s: %v", i, step.Kind, err))
			}
		}
	}
	return nil
}

func (h *Harness) apply(ctx context.Context, step Step, result *Result) (engine.Receipt, error) {
	h.time.Advance(step.Advance)

	args, err := substitute(step.Args, h.vars)
	if err != nil {
		return engine.Receipt{}, err
	}
	req, err := engine.NewRequest(step.Kind, ledger.Identity(step.Caller), args)
	if err != nil {
		return engine.Receipt{}, err
	}
	receipt, err := h.engine.Apply(ctx, req)
	if err != nil {
		return engine.Receipt{}, err
	}

	var obj ir.IRObject
	if err := json.Unmarshal(req.Args, &obj); err != nil {
		return engine.Receipt{}, fmt.Errorf("decode args: %w", err)
	}
	result.Trace = append(result.Trace, traceEventFrom(obj, receipt))

	h.logger.Debug("scenario step",
		"kind", receipt.Kind,
		"seq", receipt.Seq,
		"outcome", receipt.Outcome,
	)
	return receipt, nil
}

// save copies string result fields into scenario variables.
func (h *Harness) save(step Step, receipt engine.Receipt) error {
	for name, field := range step.Save {
		v, ok := receipt.Result[field]
		if !ok {
			return fmt.Errorf("save %s: result has no field %q", name, field)
		}
		s, ok := v.(ir.IRString)
		if !ok {
			return fmt.Errorf("save %s: result field %q is %T, not a string", name, field, v)
		}
		h.vars[name] = string(s)
	}
	return nil
}

func checkExpect(expect *ExpectClause, receipt engine.Receipt) []string {
	var errs []string
	if receipt.Outcome != expect.Outcome {
		msg := fmt.Sprintf("expected outcome %q, got %q", expect.Outcome, receipt.Outcome)
		if receipt.Code != "" {
			msg += fmt.Sprintf(" (%s)", receipt.Code)
		}
		errs = append(errs, msg)
	}
	if expect.Code != "" && receipt.Code != expect.Code {
		errs = append(errs, fmt.Sprintf("expected code %q, got %q", expect.Code, receipt.Code))
	}
	if len(expect.Result) > 0 {
		if err := matchFields(expect.Result, receipt.Result); err != nil {
			errs = append(errs, fmt.Sprintf("result: %v", err))
		}
	}
	return errs
}

// substitute replaces "$name" strings in args with saved variables.
func substitute(args map[string]any, vars map[string]string) (map[string]any, error) {
	if args == nil {
		return nil, nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		sv, err := substituteValue(v, vars)
		if err != nil {
			return nil, fmt.Errorf("args.%s: %w", k, err)
		}
		out[k] = sv
	}
	return out, nil
}

func substituteValue(v any, vars map[string]string) (any, error) {
	switch val := v.(type) {
	case string:
		return resolveRef(val, vars)
	case map[string]any:
		return substitute(val, vars)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			sv, err := substituteValue(item, vars)
			if err != nil {
				return nil, err
			}
			out[i] = sv
		}
		return out, nil
	default:
		return v, nil
	}
}

// resolveRef expands a "$name" reference. Other strings pass through.
func resolveRef(s string, vars map[string]string) (string, error) {
	name, ok := strings.CutPrefix(s, "$")
	if !ok {
		return s, nil
	}
	v, ok := vars[name]
	if !ok {
		return "", fmt.Errorf("undefined variable $%s", name)
	}
	return v, nil
}
