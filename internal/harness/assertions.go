package harness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/solidarity/internal/engine"
	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
	"github.com/roach88/solidarity/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			line := fmt.Sprintf("  [%d] %s by %s: %s", event.Seq, event.Kind, event.Caller, event.Outcome)
			if event.Code != "" {
				line += " " + event.Code
			}
			fmt.Fprintln(&buf, line)
		}
	}

	return buf.String()
}

// AssertionContext provides state access for state assertions.
type AssertionContext struct {
	Ctx    context.Context
	Store  *store.Store
	Params ledger.Params
	Vars   map[string]string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertRecord, AssertProfile, AssertDao, AssertListCount, AssertReplay:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: %s requires database context", i, assertion.Type)
				break
			}
			err = evaluateStateAssertion(actx, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func evaluateStateAssertion(actx *AssertionContext, a Assertion) error {
	switch a.Type {
	case AssertRecord:
		return assertRecord(actx, a)
	case AssertProfile:
		return assertStoredRecord(actx, AssertProfile, ir.ProfileKey(a.Owner), a.Expect)
	case AssertDao:
		return assertStoredRecord(actx, AssertDao, ir.DaoKey, a.Expect)
	case AssertListCount:
		return assertListCount(actx, a)
	default:
		return assertReplay(actx)
	}
}

// matchEvent reports whether event satisfies the assertion's filters.
// Empty filters match anything.
func matchEvent(event TraceEvent, a Assertion) bool {
	if event.Kind != a.Kind {
		return false
	}
	if a.Caller != "" && event.Caller != a.Caller {
		return false
	}
	if a.Outcome != "" && event.Outcome != a.Outcome {
		return false
	}
	if a.Code != "" && event.Code != a.Code {
		return false
	}
	return true
}

func describeFilter(a Assertion) string {
	parts := []string{a.Kind}
	if a.Caller != "" {
		parts = append(parts, "caller="+a.Caller)
	}
	if a.Outcome != "" {
		parts = append(parts, "outcome="+a.Outcome)
	}
	if a.Code != "" {
		parts = append(parts, "code="+a.Code)
	}
	return strings.Join(parts, " ")
}

// assertTraceContains checks that at least one transition matches.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if matchEvent(event, assertion) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describeFilter(assertion),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if kinds appear in the specified order.
// Kinds don't need to be consecutive (intervening transitions are allowed).
// Each expected kind is matched after the position of the previous one, so
// a kind may be listed more than once.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	pos := 0
	for i, kind := range assertion.Kinds {
		found := false
		for pos < len(trace) {
			event := trace[pos]
			pos++
			if event.Kind == kind {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("kinds in order: %v", assertion.Kinds),
				Actual:   fmt.Sprintf("no %s after %v", kind, assertion.Kinds[:i]),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks if the kind appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if matchEvent(event, assertion) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, describeFilter(assertion)),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

func assertRecord(actx *AssertionContext, a Assertion) error {
	key, err := resolveRef(a.Ref, actx.Vars)
	if err != nil {
		return err
	}
	return assertStoredRecord(actx, AssertRecord, key, a.Expect)
}

// assertStoredRecord loads the record at key and subset-matches its body.
func assertStoredRecord(actx *AssertionContext, typ, key string, expect map[string]any) error {
	rec, err := actx.Store.GetRecord(actx.Ctx, key)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return &AssertionError{
				Type:     typ,
				Expected: fmt.Sprintf("record %s", key),
				Actual:   "not found",
			}
		}
		return err
	}
	body, err := ir.FromJSON([]byte(rec.Body))
	if err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	obj, ok := body.(ir.IRObject)
	if !ok {
		return fmt.Errorf("decode %s: body is not an object", key)
	}
	if err := matchFields(expect, obj); err != nil {
		return &AssertionError{
			Type:     typ,
			Expected: fmt.Sprintf("%s matches %s", key, formatExpect(expect)),
			Actual:   err.Error(),
		}
	}
	return nil
}

func assertListCount(actx *AssertionContext, a Assertion) error {
	records, err := actx.Store.List(actx.Ctx, store.ListFilter{Kind: a.RecordKind, Status: a.Status})
	if err != nil {
		return err
	}
	if len(records) != a.Count {
		what := a.RecordKind
		if a.Status != "" {
			what += "/" + a.Status
		}
		return &AssertionError{
			Type:     AssertListCount,
			Expected: fmt.Sprintf("%d %s records", a.Count, what),
			Actual:   fmt.Sprintf("%d records", len(records)),
		}
	}
	return nil
}

// assertReplay re-executes the journal on a fresh in-memory store.
func assertReplay(actx *AssertionContext) error {
	dst, err := store.Open(":memory:")
	if err != nil {
		return fmt.Errorf("open replay store: %w", err)
	}
	defer dst.Close()

	report, err := engine.Replay(actx.Ctx, actx.Store, dst, actx.Params)
	if err != nil {
		return err
	}
	if err := report.Err(); err != nil {
		return &AssertionError{
			Type:     AssertReplay,
			Expected: fmt.Sprintf("journal reproduces (digest %s)", report.SourceDigest),
			Actual:   err.Error(),
		}
	}
	return nil
}

// matchFields checks expected fields against actual using subset semantics.
// Keys may be dotted paths into nested objects. Values compare by their
// canonical encoding, so 3 in YAML equals a stored unsigned 3.
func matchFields(expected map[string]any, actual ir.IRObject) error {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, path := range keys {
		want, err := ir.FromValue(expected[path])
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		got, ok := lookupPath(actual, path)
		if !ok {
			return fmt.Errorf("%s: missing", path)
		}
		if !valuesEqual(want, got) {
			return fmt.Errorf("%s: expected %s, got %s", path, canonicalString(want), canonicalString(got))
		}
	}
	return nil
}

func lookupPath(obj ir.IRObject, path string) (ir.IRValue, bool) {
	var cur ir.IRValue = obj
	for _, part := range strings.Split(path, ".") {
		o, ok := cur.(ir.IRObject)
		if !ok {
			return nil, false
		}
		cur, ok = o[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func valuesEqual(a, b ir.IRValue) bool {
	return canonicalString(a) == canonicalString(b)
}

func canonicalString(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}

func formatExpect(expect map[string]any) string {
	v, err := ir.FromValue(expect)
	if err != nil {
		return fmt.Sprintf("%v", expect)
	}
	return canonicalString(v)
}
