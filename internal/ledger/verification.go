package ledger

// ActivityInput is the caller-supplied part of a new activity.
type ActivityInput struct {
	Category       Category
	Description    string
	Location       Location
	EstimatedHours uint32
}

// CreateActivity validates the input, precomputes the reward and counts the
// activity on the DAO.
func CreateActivity(p Params, dao DaoState, creator Identity, in ActivityInput, now int64) (DaoState, Activity, error) {
	if err := creator.Validate(); err != nil {
		return dao, Activity{}, err
	}
	desc, err := boundedText(in.Description, p.Limits.Description, CodeDescriptionTooLong)
	if err != nil {
		return dao, Activity{}, err
	}
	addr, err := boundedText(in.Location.Address, p.Limits.Address, CodeAddressTooLong)
	if err != nil {
		return dao, Activity{}, err
	}
	loc := Location{LatitudeE6: in.Location.LatitudeE6, LongitudeE6: in.Location.LongitudeE6, Address: addr}
	if err := loc.Validate(); err != nil {
		return dao, Activity{}, err
	}
	reward, err := ComputeBaseReward(p, in.Category, in.EstimatedHours)
	if err != nil {
		return dao, Activity{}, err
	}
	verifiers, err := NewBoundedSet[Identity](p.Budgets.Verifiers)
	if err != nil {
		return dao, Activity{}, err
	}
	total, err := add("total_activities", dao.TotalActivities, 1)
	if err != nil {
		return dao, Activity{}, err
	}
	dao.TotalActivities = total
	return dao, Activity{
		Creator:        creator,
		Category:       in.Category,
		Description:    desc,
		Location:       loc,
		EstimatedHours: in.EstimatedHours,
		Status:         ActivityPending,
		Verifiers:      verifiers,
		RewardAmount:   reward,
		Timestamp:      now,
	}, nil
}

// VerificationResult reports what a verification did.
type VerificationResult struct {
	Activity Activity

	// QuorumReached is true when this vote moved the activity to Verified.
	// The caller must then credit the reward to the creator's profile.
	QuorumReached bool

	// Rejected is true when this vote moved the activity to Rejected.
	Rejected bool
}

// SubmitVerification records one verifier's vote.
//
// A "no" vote consumes a verifier slot. Once the set is full with a mixed
// outcome the activity stays Pending and further votes fail with
// CAPACITY_EXCEEDED.
func SubmitVerification(p Params, a Activity, verifier Identity, verified bool) (VerificationResult, error) {
	if err := verifier.Validate(); err != nil {
		return VerificationResult{Activity: a}, err
	}
	if a.Verifiers.Contains(verifier) {
		return VerificationResult{Activity: a}, NewError(CodeAlreadyVerified, "verifier", verifier.String())
	}
	if a.Status != ActivityPending {
		return VerificationResult{Activity: a}, NewError(CodeActivityNotPending, "status", a.Status.String())
	}
	verifiers, _, err := a.Verifiers.With(verifier)
	if err != nil {
		return VerificationResult{Activity: a}, err
	}
	next := a
	next.Verifiers = verifiers
	if verified {
		count, err := inc32("verification_count", a.VerificationCount)
		if err != nil {
			return VerificationResult{Activity: a}, err
		}
		next.VerificationCount = count
	}

	res := VerificationResult{Activity: next}
	switch {
	case next.VerificationCount >= p.Quorum:
		res.Activity.Status = ActivityVerified
		res.QuorumReached = true
	case next.Verifiers.Len() >= int(p.Quorum) && next.VerificationCount == 0:
		res.Activity.Status = ActivityRejected
		res.Rejected = true
	}
	return res, nil
}
