package ledger

import "fmt"

// Rates is the per-hour reward rate table, in whole tokens before UnitScale.
type Rates struct {
	Environmental    uint64 `json:"environmental"`
	Disaster         uint64 `json:"disaster"`
	Elderly          uint64 `json:"elderly"`
	Education        uint64 `json:"education"`
	WorkerSolidarity uint64 `json:"worker_solidarity"`
}

// Rate returns the rate for c. ok is false for an unknown category; a
// configured rate of zero is a valid rate.
func (r Rates) Rate(c Category) (rate uint64, ok bool) {
	switch c {
	case CategoryEnvironmental:
		return r.Environmental, true
	case CategoryDisaster:
		return r.Disaster, true
	case CategoryElderly:
		return r.Elderly, true
	case CategoryEducation:
		return r.Education, true
	case CategoryWorkerSolidarity:
		return r.WorkerSolidarity, true
	}
	return 0, false
}

// Budgets are the capacities fixed into each bounded collection at creation.
type Budgets struct {
	Verifiers  int `json:"verifiers"`
	Supporters int `json:"supporters"`
	Founders   int `json:"founders"`
	Members    int `json:"members"`
	Skills     int `json:"skills"`
	Voters     int `json:"voters"`
}

// Limits are text bounds in characters (runes after NFC normalization).
type Limits struct {
	Description         int `json:"description"`
	Address             int `json:"address"`
	Company             int `json:"company"`
	BusinessPlan        int `json:"business_plan"`
	Title               int `json:"title"`
	ProposalDescription int `json:"proposal_description"`
}

// Params holds every economic constant the rules consult. The rules never
// read package-level constants so a ledger can be replayed under the exact
// parameters it was run with.
type Params struct {
	UnitScale             uint64  `json:"unit_scale"`
	TotalSupply           uint64  `json:"total_supply"`
	Rates                 Rates   `json:"rates"`
	Quorum                uint32  `json:"quorum"`
	InitialReputation     uint64  `json:"initial_reputation"`
	ReputationBonus       uint64  `json:"reputation_bonus"`
	UBIAmount             uint64  `json:"ubi_amount"`
	UBIWindowSeconds      int64   `json:"ubi_window_seconds"`
	VotingPeriodSeconds   int64   `json:"voting_period_seconds"`
	StrikeDailySupport    uint64  `json:"strike_daily_support"`
	UnionLegitimacy       uint8   `json:"union_legitimacy"`
	DefaultLegitimacy     uint8   `json:"default_legitimacy"`
	StrikeSupportScore    uint64  `json:"strike_support_score"`
	CoopFundingScore      uint64  `json:"coop_funding_score"`
	InitialSustainability uint8   `json:"initial_sustainability"`
	DecayBaseRateBps      uint64  `json:"decay_base_rate_bps"`
	Budgets               Budgets `json:"budgets"`
	Limits                Limits  `json:"limits"`
}

// DefaultParams returns the launch parameters.
func DefaultParams() Params {
	return Params{
		UnitScale:   1_000_000_000,
		TotalSupply: 1_000_000_000 * 1_000_000_000,
		Rates: Rates{
			Environmental:    40,
			Disaster:         80,
			Elderly:          50,
			Education:        60,
			WorkerSolidarity: 70,
		},
		Quorum:                3,
		InitialReputation:     50,
		ReputationBonus:       10,
		UBIAmount:             10_000_000_000,
		UBIWindowSeconds:      7 * 24 * 60 * 60,
		VotingPeriodSeconds:   72 * 60 * 60,
		StrikeDailySupport:    80_000_000_000,
		UnionLegitimacy:       100,
		DefaultLegitimacy:     50,
		StrikeSupportScore:    30,
		CoopFundingScore:      40,
		InitialSustainability: 50,
		DecayBaseRateBps:      5,
		Budgets: Budgets{
			Verifiers:  3,
			Supporters: 100,
			Founders:   10,
			Members:    100,
			Skills:     20,
			Voters:     1000,
		},
		Limits: Limits{
			Description:         200,
			Address:             48,
			Company:             100,
			BusinessPlan:        500,
			Title:               100,
			ProposalDescription: 500,
		},
	}
}

// Validate rejects parameter sets the rules cannot run under.
func (p Params) Validate() error {
	if p.UnitScale == 0 {
		return fmt.Errorf("unit_scale must be positive")
	}
	if p.Quorum == 0 {
		return fmt.Errorf("quorum must be positive")
	}
	if p.Budgets.Verifiers < int(p.Quorum) {
		return fmt.Errorf("budgets.verifiers (%d) must be at least quorum (%d)", p.Budgets.Verifiers, p.Quorum)
	}
	if p.UBIWindowSeconds <= 0 || p.VotingPeriodSeconds <= 0 {
		return fmt.Errorf("ubi_window_seconds and voting_period_seconds must be positive")
	}
	for _, b := range []struct {
		name string
		v    int
	}{
		{"budgets.supporters", p.Budgets.Supporters},
		{"budgets.founders", p.Budgets.Founders},
		{"budgets.members", p.Budgets.Members},
		{"budgets.skills", p.Budgets.Skills},
		{"budgets.voters", p.Budgets.Voters},
	} {
		if b.v < 1 {
			return fmt.Errorf("%s must be positive", b.name)
		}
	}
	return nil
}
