package ledger

import (
	"math/bits"
	"strconv"
)

// DistributeUbi credits the fixed UBI amount to a profile that has been
// active within the window. It neither refreshes last_activity nor draws
// down DAO supply.
func DistributeUbi(p Params, prof UserProfile, now int64) (UserProfile, error) {
	if prof.LastActivity <= now-p.UBIWindowSeconds {
		return prof, NewError(CodeUserNotActive,
			"last_activity", strconv.FormatInt(prof.LastActivity, 10),
			"now", strconv.FormatInt(now, 10))
	}
	tokens, err := add("tokens_earned", prof.TokensEarned, p.UBIAmount)
	if err != nil {
		return prof, err
	}
	prof.TokensEarned = tokens
	return prof, nil
}

// DecayRate returns the decay rate in basis points for a balance, or 0 when
// decay does not apply.
func DecayRate(p Params, dao DaoState, tokens uint64) (uint64, error) {
	if dao.MedianBalance == 0 || tokens <= dao.MedianBalance {
		return 0, nil
	}
	return mul("decay_rate", tokens/dao.MedianBalance, p.DecayBaseRateBps)
}

// ApplyTokenDecay shrinks a balance above the median and returns the amount
// removed. The amount is not credited anywhere: there is no treasury record.
//
// A rate high enough to remove the whole balance fails with
// ARITHMETIC_UNDERFLOW instead of zeroing it.
func ApplyTokenDecay(p Params, dao DaoState, prof UserProfile) (UserProfile, uint64, error) {
	rate, err := DecayRate(p, dao, prof.TokensEarned)
	if err != nil || rate == 0 {
		return prof, 0, err
	}
	hi, lo := bits.Mul64(prof.TokensEarned, rate)
	if hi >= 10000 {
		return prof, 0, NewError(CodeUnderflow, "field", "tokens_earned",
			"value", strconv.FormatUint(prof.TokensEarned, 10), "rate_bps", strconv.FormatUint(rate, 10))
	}
	amount, _ := bits.Div64(hi, lo, 10000)
	if amount >= prof.TokensEarned {
		return prof, 0, NewError(CodeUnderflow, "field", "tokens_earned",
			"value", strconv.FormatUint(prof.TokensEarned, 10), "delta", strconv.FormatUint(amount, 10))
	}
	tokens, err := sub("tokens_earned", prof.TokensEarned, amount)
	if err != nil {
		return prof, 0, err
	}
	prof.TokensEarned = tokens
	return prof, amount, nil
}
