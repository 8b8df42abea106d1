package ledger

import (
	"strconv"
	"strings"
)

// Record kinds, used by the store and for key derivation.
const (
	KindDao      = "dao"
	KindProfile  = "profile"
	KindActivity = "activity"
	KindStrike   = "strike"
	KindCoop     = "coop"
	KindProposal = "proposal"
)

// DaoState is the ledger-wide singleton.
//
// CirculatingSupply is declared but no transition maintains it yet, so the
// invariant CirculatingSupply <= TotalSupply is observable (SupplyConsistent)
// but not enforced.
type DaoState struct {
	Authority         Identity `json:"authority"`
	TotalSupply       uint64   `json:"total_supply"`
	CirculatingSupply uint64   `json:"circulating_supply"`
	MedianBalance     uint64   `json:"median_balance"`
	ActiveUsers       uint64   `json:"active_users"`
	TotalActivities   uint64   `json:"total_activities"`
}

// SupplyConsistent reports whether circulating supply is within total supply.
func (d DaoState) SupplyConsistent() bool {
	return d.CirculatingSupply <= d.TotalSupply
}

// UserProfile is a member's balance and standing.
type UserProfile struct {
	Owner                Identity `json:"owner"`
	UnionMembership      bool     `json:"union_membership"`
	TokensEarned         uint64   `json:"tokens_earned"`
	HoursWorked          uint64   `json:"hours_worked"`
	ActivitiesCompleted  uint64   `json:"activities_completed"`
	ReputationScore      uint64   `json:"reputation_score"`
	StrikeParticipation  uint64   `json:"strike_participation"`
	ClassSolidarityScore uint64   `json:"class_solidarity_score"`
	LastActivity         int64    `json:"last_activity"`
}

// Location pins an activity. Coordinates are fixed-point micro-degrees so no
// float is ever persisted.
type Location struct {
	LatitudeE6  int64  `json:"latitude_e6"`
	LongitudeE6 int64  `json:"longitude_e6"`
	Address     string `json:"address"`
}

// Validate checks coordinate ranges.
func (l Location) Validate() error {
	if l.LatitudeE6 < -90_000_000 || l.LatitudeE6 > 90_000_000 {
		return NewError(CodeInvalidArgument, "latitude_e6", strconv.FormatInt(l.LatitudeE6, 10))
	}
	if l.LongitudeE6 < -180_000_000 || l.LongitudeE6 > 180_000_000 {
		return NewError(CodeInvalidArgument, "longitude_e6", strconv.FormatInt(l.LongitudeE6, 10))
	}
	return nil
}

// ParseCoordinate converts a decimal degree string such as "-33.8688" into
// micro-degrees without going through float64. At most six fractional digits
// are accepted.
func ParseCoordinate(s string) (int64, error) {
	bad := func() (int64, error) {
		return 0, NewError(CodeInvalidArgument, "coordinate", s)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return bad()
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || len(frac) > 6 || len(whole) > 3 {
		return bad()
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return bad()
	}
	var f int64
	if frac != "" {
		f, err = strconv.ParseInt(frac+strings.Repeat("0", 6-len(frac)), 10, 64)
		if err != nil || f < 0 {
			return bad()
		}
	}
	v := w*1_000_000 + f
	if neg {
		v = -v
	}
	return v, nil
}

// Activity is a community contribution awaiting peer verification.
type Activity struct {
	Creator           Identity             `json:"creator"`
	Category          Category             `json:"category"`
	Description       string               `json:"description"`
	Location          Location             `json:"location"`
	EstimatedHours    uint32               `json:"estimated_hours"`
	Status            ActivityStatus       `json:"status"`
	VerificationCount uint32               `json:"verification_count"`
	Verifiers         BoundedSet[Identity] `json:"verifiers"`
	RewardAmount      uint64               `json:"reward_amount"`
	Timestamp         int64                `json:"timestamp"`
}

// Stalled reports the mixed-vote dead state: every verifier slot is used,
// the activity is still pending and no further transition applies.
func (a Activity) Stalled() bool {
	return a.Status == ActivityPending && a.Verifiers.Full()
}

// Strike is a labor action collecting solidarity funds.
type Strike struct {
	Creator           Identity             `json:"creator"`
	Company           string               `json:"company"`
	UnionVerification bool                 `json:"union_verification"`
	ParticipantCount  uint32               `json:"participant_count"`
	DailySupport      uint64               `json:"daily_support"`
	LegitimacyScore   uint8                `json:"legitimacy_score"`
	TotalFund         uint64               `json:"total_fund"`
	StrikeDuration    uint32               `json:"strike_duration"`
	Supporters        BoundedSet[Identity] `json:"supporters"`
	Timestamp         int64                `json:"timestamp"`
}

// WorkerCoop is a cooperative raising start-up funding.
//
// Members, DemocraticVotes and SustainabilityScore are set at creation and
// not mutated by any transition; funding never grants membership.
type WorkerCoop struct {
	Founders            BoundedSet[Identity]  `json:"founders"`
	BusinessPlan        string                `json:"business_plan"`
	FundingGoal         uint64                `json:"funding_goal"`
	CurrentFunding      uint64                `json:"current_funding"`
	SkillRequirements   BoundedSet[SkillType] `json:"skill_requirements"`
	DemocraticVotes     uint32                `json:"democratic_votes"`
	SustainabilityScore uint8                 `json:"sustainability_score"`
	Members             BoundedSet[Identity]  `json:"members"`
	Timestamp           int64                 `json:"timestamp"`
}

// Proposal is a governance question decided by quadratic voting.
type Proposal struct {
	Creator        Identity             `json:"creator"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	ProposalType   ProposalType         `json:"proposal_type"`
	VotesFor       uint64               `json:"votes_for"`
	VotesAgainst   uint64               `json:"votes_against"`
	Status         ProposalStatus       `json:"status"`
	CreatedAt      int64                `json:"created_at"`
	VotingDeadline int64                `json:"voting_deadline"`
	Voters         BoundedSet[Identity] `json:"voters"`
}
