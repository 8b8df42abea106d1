package ledger

import "strconv"

// StrikeInput is the caller-supplied part of a new strike.
type StrikeInput struct {
	Company          string
	UnionVerified    bool
	ParticipantCount uint32
}

// CreateStrike opens a strike fund with the fixed daily support amount.
func CreateStrike(p Params, creator Identity, in StrikeInput, now int64) (Strike, error) {
	if err := creator.Validate(); err != nil {
		return Strike{}, err
	}
	company, err := boundedText(in.Company, p.Limits.Company, CodeCompanyTooLong)
	if err != nil {
		return Strike{}, err
	}
	supporters, err := NewBoundedSet[Identity](p.Budgets.Supporters)
	if err != nil {
		return Strike{}, err
	}
	legitimacy := p.DefaultLegitimacy
	if in.UnionVerified {
		legitimacy = p.UnionLegitimacy
	}
	return Strike{
		Creator:           creator,
		Company:           company,
		UnionVerification: in.UnionVerified,
		ParticipantCount:  in.ParticipantCount,
		DailySupport:      p.StrikeDailySupport,
		LegitimacyScore:   legitimacy,
		Supporters:        supporters,
		Timestamp:         now,
	}, nil
}

// SupportStrike adds amount to the fund and credits the supporter's
// solidarity score. Repeat supporters are counted once in the set but every
// contribution is added to the fund.
func SupportStrike(p Params, s Strike, supporter UserProfile, amount uint64) (Strike, UserProfile, error) {
	supporters, _, err := s.Supporters.With(supporter.Owner)
	if err != nil {
		return s, supporter, err
	}
	fund, err := add("total_fund", s.TotalFund, amount)
	if err != nil {
		return s, supporter, err
	}
	score, err := add("class_solidarity_score", supporter.ClassSolidarityScore, p.StrikeSupportScore)
	if err != nil {
		return s, supporter, err
	}
	s.Supporters = supporters
	s.TotalFund = fund
	supporter.ClassSolidarityScore = score
	return s, supporter, nil
}

// CoopInput is the caller-supplied part of a new worker cooperative.
type CoopInput struct {
	BusinessPlan string
	FundingGoal  uint64
	Skills       []SkillType
}

// CreateWorkerCoop registers a cooperative whose founder and first member is
// the creator.
func CreateWorkerCoop(p Params, creator Identity, in CoopInput, now int64) (WorkerCoop, error) {
	if err := creator.Validate(); err != nil {
		return WorkerCoop{}, err
	}
	plan, err := boundedText(in.BusinessPlan, p.Limits.BusinessPlan, CodeBusinessPlanTooLong)
	if err != nil {
		return WorkerCoop{}, err
	}
	skills, err := NewBoundedSet[SkillType](p.Budgets.Skills)
	if err != nil {
		return WorkerCoop{}, err
	}
	for _, sk := range in.Skills {
		if _, ok := skillNames[sk]; !ok {
			return WorkerCoop{}, NewError(CodeInvalidArgument, "skill", strconv.Itoa(int(sk)))
		}
		var added bool
		skills, added, err = skills.With(sk)
		if err != nil {
			return WorkerCoop{}, err
		}
		if !added {
			return WorkerCoop{}, NewError(CodeInvalidArgument, "skill", sk.String(), "reason", "duplicate")
		}
	}
	founders, err := NewBoundedSet(p.Budgets.Founders, creator)
	if err != nil {
		return WorkerCoop{}, err
	}
	members, err := NewBoundedSet(p.Budgets.Members, creator)
	if err != nil {
		return WorkerCoop{}, err
	}
	return WorkerCoop{
		Founders:            founders,
		BusinessPlan:        plan,
		FundingGoal:         in.FundingGoal,
		SkillRequirements:   skills,
		SustainabilityScore: p.InitialSustainability,
		Members:             members,
		Timestamp:           now,
	}, nil
}

// FundWorkerCoop adds amount to the coop's funding and credits the funder's
// solidarity score. Funding does not make the funder a member.
func FundWorkerCoop(p Params, c WorkerCoop, funder UserProfile, amount uint64) (WorkerCoop, UserProfile, error) {
	funding, err := add("current_funding", c.CurrentFunding, amount)
	if err != nil {
		return c, funder, err
	}
	score, err := add("class_solidarity_score", funder.ClassSolidarityScore, p.CoopFundingScore)
	if err != nil {
		return c, funder, err
	}
	c.CurrentFunding = funding
	funder.ClassSolidarityScore = score
	return c, funder, nil
}
