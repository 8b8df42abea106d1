package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
	"github.com/roach88/solidarity/internal/store"
	"github.com/roach88/solidarity/internal/testutil"
)

const (
	testStart = int64(1_700_000_000)
	authority = ledger.Identity("authority")
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// testLedger bundles an engine with its store and a manual time source.
type testLedger struct {
	t      *testing.T
	store  *store.Store
	engine *Engine
	time   *testutil.StepTime
}

func newTestLedger(t *testing.T, opts ...Option) *testLedger {
	t.Helper()
	s := setupTestStore(t)
	st := testutil.NewStepTime(testStart, 0)
	all := append([]Option{
		WithTimeSource(st),
		WithRequestIDs(testutil.NewSequentialIDs("req")),
	}, opts...)
	e, err := New(context.Background(), s, ledger.DefaultParams(), all...)
	require.NoError(t, err)
	return &testLedger{t: t, store: s, engine: e, time: st}
}

// newInitializedLedger initializes the DAO and registers users.
func newInitializedLedger(t *testing.T, users ...ledger.Identity) *testLedger {
	t.Helper()
	l := newTestLedger(t)
	l.ok(KindInitialize, authority, nil)
	for _, u := range users {
		l.ok(KindRegisterUser, u, RegisterUserArgs{})
	}
	return l
}

func (l *testLedger) apply(kind string, caller ledger.Identity, args any) Receipt {
	l.t.Helper()
	req, err := NewRequest(kind, caller, args)
	require.NoError(l.t, err)
	rec, err := l.engine.Apply(context.Background(), req)
	require.NoError(l.t, err)
	return rec
}

func (l *testLedger) ok(kind string, caller ledger.Identity, args any) Receipt {
	l.t.Helper()
	rec := l.apply(kind, caller, args)
	require.True(l.t, rec.OK(), "%s by %s failed: %s %s", kind, caller, rec.Code, rec.Message)
	return rec
}

func (l *testLedger) fails(code ledger.Code, kind string, caller ledger.Identity, args any) Receipt {
	l.t.Helper()
	rec := l.apply(kind, caller, args)
	require.False(l.t, rec.OK(), "%s by %s should fail with %s", kind, caller, code)
	require.Equal(l.t, string(code), rec.Code)
	return rec
}

func (l *testLedger) get(key, kind string, out any) {
	l.t.Helper()
	_, err := l.store.Get(context.Background(), key, kind, out)
	require.NoError(l.t, err)
}

func (l *testLedger) profile(owner ledger.Identity) ledger.UserProfile {
	l.t.Helper()
	var p ledger.UserProfile
	l.get(ir.ProfileKey(string(owner)), ledger.KindProfile, &p)
	return p
}

func (l *testLedger) dao() ledger.DaoState {
	l.t.Helper()
	var d ledger.DaoState
	l.get(ir.DaoKey, ledger.KindDao, &d)
	return d
}

func resultString(rec Receipt, field string) string {
	v, _ := rec.Result[field].(ir.IRString)
	return string(v)
}

func resultUint(rec Receipt, field string) uint64 {
	v, _ := rec.Result[field].(ir.IRUint)
	return uint64(v)
}

func workerSolidarityActivity() CreateActivityArgs {
	return CreateActivityArgs{
		Category:       ledger.CategoryWorkerSolidarity,
		Description:    "picket line coffee",
		LatitudeE6:     -33_868_800,
		LongitudeE6:    151_209_300,
		Address:        "1 George St",
		EstimatedHours: 10,
	}
}
