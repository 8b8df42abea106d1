package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributeUbi_Window(t *testing.T) {
	p := DefaultParams()
	now := testNow + 1_000_000

	prof := UserProfile{Owner: "alice", LastActivity: now - 600_000}
	got, err := DistributeUbi(p, prof, now)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000), got.TokensEarned)
	assert.Equal(t, now-600_000, got.LastActivity, "last_activity is not refreshed")

	prof.LastActivity = now - 700_000
	_, err = DistributeUbi(p, prof, now)
	assert.True(t, errors.Is(err, ErrUserNotActive))
}

func TestDistributeUbi_WindowBoundary(t *testing.T) {
	p := DefaultParams()
	prof := UserProfile{Owner: "alice", LastActivity: testNow - p.UBIWindowSeconds}

	_, err := DistributeUbi(p, prof, testNow)
	assert.True(t, errors.Is(err, ErrUserNotActive), "exactly seven days is outside the window")

	prof.LastActivity++
	_, err = DistributeUbi(p, prof, testNow)
	assert.NoError(t, err)
}

func TestDistributeUbi_Overflow(t *testing.T) {
	prof := UserProfile{Owner: "alice", LastActivity: testNow, TokensEarned: math.MaxUint64}
	_, err := DistributeUbi(DefaultParams(), prof, testNow)
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestApplyTokenDecay_NoMedianIsNoop(t *testing.T) {
	dao := newTestDao(t)
	prof := UserProfile{Owner: "alice", TokensEarned: 20_000}

	got, amount, err := ApplyTokenDecay(DefaultParams(), dao, prof)
	require.NoError(t, err)
	assert.Zero(t, amount)
	assert.Equal(t, uint64(20_000), got.TokensEarned)
}

func TestApplyTokenDecay_AtOrBelowMedianIsNoop(t *testing.T) {
	dao := newTestDao(t)
	dao.MedianBalance = 10_000

	got, amount, err := ApplyTokenDecay(DefaultParams(), dao, UserProfile{TokensEarned: 10_000})
	require.NoError(t, err)
	assert.Zero(t, amount)
	assert.Equal(t, uint64(10_000), got.TokensEarned)
}

func TestApplyTokenDecay_Example(t *testing.T) {
	dao := newTestDao(t)
	dao.MedianBalance = 10_000

	rate, err := DecayRate(DefaultParams(), dao, 20_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), rate)

	got, amount, err := ApplyTokenDecay(DefaultParams(), dao, UserProfile{TokensEarned: 20_000})
	require.NoError(t, err)
	assert.Equal(t, uint64(20), amount)
	assert.Equal(t, uint64(19_980), got.TokensEarned)
}

func TestApplyTokenDecay_LargeBalanceUses128BitProduct(t *testing.T) {
	dao := newTestDao(t)
	dao.MedianBalance = 1_000_000_000_000_000_000
	tokens := uint64(10_000_000_000_000_000_000)

	got, amount, err := ApplyTokenDecay(DefaultParams(), dao, UserProfile{TokensEarned: tokens})
	require.NoError(t, err)
	// rate = 10 * 5 = 50 bps
	assert.Equal(t, tokens/10000*50, amount)
	assert.Equal(t, tokens-amount, got.TokensEarned)
}

func TestApplyTokenDecay_NeverZeroesBalance(t *testing.T) {
	dao := newTestDao(t)
	dao.MedianBalance = 1
	// rate = 2000 * 5 = 10000 bps would remove everything.
	prof := UserProfile{TokensEarned: 2_000}

	got, _, err := ApplyTokenDecay(DefaultParams(), dao, prof)
	assert.True(t, errors.Is(err, ErrUnderflow))
	assert.Equal(t, uint64(2_000), got.TokensEarned)
}

func TestApplyTokenDecay_StrictlyLessProperty(t *testing.T) {
	dao := newTestDao(t)
	for median := uint64(1); median < 50; median += 7 {
		dao.MedianBalance = median
		for tokens := median + 1; tokens < median*1500; tokens += median*3 + 1 {
			got, amount, err := ApplyTokenDecay(DefaultParams(), dao, UserProfile{TokensEarned: tokens})
			if err != nil {
				assert.True(t, errors.Is(err, ErrUnderflow))
				continue
			}
			assert.Less(t, amount, tokens)
			assert.Positive(t, got.TokensEarned)
		}
	}
}
