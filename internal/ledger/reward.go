package ledger

import "strconv"

// ComputeBaseReward returns rate[category] * hours * UnitScale.
func ComputeBaseReward(p Params, c Category, hours uint32) (uint64, error) {
	rate, ok := p.Rates.Rate(c)
	if !ok {
		return 0, NewError(CodeInvalidArgument, "category", strconv.Itoa(int(c)))
	}
	perUnit, err := mul("reward_amount", rate, uint64(hours))
	if err != nil {
		return 0, err
	}
	return mul("reward_amount", perUnit, p.UnitScale)
}

// CreditActivityReward applies the completion bonus for a verified activity
// to its creator's profile.
func CreditActivityReward(p Params, a Activity, prof UserProfile) (UserProfile, error) {
	tokens, err := add("tokens_earned", prof.TokensEarned, a.RewardAmount)
	if err != nil {
		return prof, err
	}
	hours, err := add("hours_worked", prof.HoursWorked, uint64(a.EstimatedHours))
	if err != nil {
		return prof, err
	}
	completed, err := add("activities_completed", prof.ActivitiesCompleted, 1)
	if err != nil {
		return prof, err
	}
	rep, err := add("reputation_score", prof.ReputationScore, p.ReputationBonus)
	if err != nil {
		return prof, err
	}
	prof.TokensEarned = tokens
	prof.HoursWorked = hours
	prof.ActivitiesCompleted = completed
	prof.ReputationScore = rep
	return prof, nil
}
