package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solidarity/internal/ledger"
)

// buildMixedLedger runs a session with committed and failed transitions
// across every record kind.
func buildMixedLedger(t *testing.T) *testLedger {
	t.Helper()
	l := newInitializedLedger(t, "alice", "bob")

	act := resultString(l.ok(KindCreateActivity, "alice", workerSolidarityActivity()), "activity")
	for _, v := range []ledger.Identity{"v1", "v2", "v3"} {
		l.time.Advance(60)
		l.ok(KindVerifyActivity, v, VerifyActivityArgs{Activity: act, Verified: true})
	}
	l.fails(ledger.CodeActivityNotPending, KindVerifyActivity, "v4", VerifyActivityArgs{Activity: act, Verified: true})

	strike := resultString(l.ok(KindCreateStrike, "bob", CreateStrikeArgs{Company: "Acme", ParticipantCount: 3}), "strike")
	l.ok(KindSupportStrike, "alice", SupportStrikeArgs{Strike: strike, Amount: 42})

	coop := resultString(l.ok(KindCreateWorkerCoop, "bob", CreateWorkerCoopArgs{
		BusinessPlan: "bike repair", FundingGoal: 900, Skills: []ledger.SkillType{ledger.SkillTechnical},
	}), "coop")
	l.ok(KindFundWorkerCoop, "alice", FundWorkerCoopArgs{Coop: coop, Amount: 100})

	prop := resultString(l.ok(KindCreateProposal, "alice", CreateProposalArgs{
		Title: "Policy", Description: "x", ProposalType: ledger.ProposalPolicyUpdate,
	}), "proposal")
	l.ok(KindVoteOnProposal, "bob", VoteOnProposalArgs{Proposal: prop, Vote: true, TokenAmount: 400})

	l.ok(KindDistributeUbi, "bob", nil)
	l.ok(KindPublishMedian, authority, PublishMedianArgs{Median: 100_000_000_000})
	l.ok(KindApplyTokenDecay, "crank", ProfileArgs{Owner: "alice"})
	l.fails(ledger.CodeInvalidArgument, "mintTokens", "alice", nil)
	return l
}

func TestReplay_ReproducesJournal(t *testing.T) {
	l := buildMixedLedger(t)
	dst := setupTestStore(t)

	report, err := Replay(context.Background(), l.store, dst, ledger.DefaultParams())
	require.NoError(t, err)

	assert.True(t, report.OK(), "mismatches: %+v", report.Mismatches)
	assert.NoError(t, report.Err())
	assert.Equal(t, int(l.engine.Seq()), report.Transitions)
	assert.Equal(t, 2, report.Failed)
	assert.NotEmpty(t, report.SourceDigest)
	assert.Equal(t, report.SourceDigest, report.ReplayDigest)

	srcJournal, err := l.store.ReadTransitions(context.Background(), 0, 0)
	require.NoError(t, err)
	dstJournal, err := dst.ReadTransitions(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, srcJournal, dstJournal, "journals are identical, request ids included")
}

func TestReplay_ContinuesSequence(t *testing.T) {
	l := buildMixedLedger(t)
	dst := setupTestStore(t)

	_, err := Replay(context.Background(), l.store, dst, ledger.DefaultParams())
	require.NoError(t, err)

	e, err := New(context.Background(), dst, ledger.DefaultParams(), WithTimeSource(l.time))
	require.NoError(t, err)
	assert.Equal(t, l.engine.Seq(), e.Seq())
}

func TestReplay_DetectsDivergence(t *testing.T) {
	l := buildMixedLedger(t)
	dst := setupTestStore(t)

	p := ledger.DefaultParams()
	p.Rates.WorkerSolidarity = 71

	report, err := Replay(context.Background(), l.store, dst, p)
	require.NoError(t, err)
	assert.False(t, report.OK())
	require.NotEmpty(t, report.Mismatches)
	assert.Equal(t, "result", report.Mismatches[0].Field)
	assert.NotEqual(t, report.SourceDigest, report.ReplayDigest)
	assert.True(t, IsReplayMismatch(report.Err()))
}

func TestReplay_RequiresEmptyTarget(t *testing.T) {
	l := buildMixedLedger(t)

	_, err := Replay(context.Background(), l.store, l.store, ledger.DefaultParams())
	require.Error(t, err)
}
