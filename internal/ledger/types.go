package ledger

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Identity is an opaque, unforgeable caller reference. The host verifies it
// before a transition reaches the ledger.
type Identity string

// MaxIdentityLength bounds the stored size of an identity.
const MaxIdentityLength = 64

// Validate rejects empty or oversized identities, and any identity that is
// not valid UTF-8 in NFC form. Record keys are derived from the canonical
// (NFC) encoding, so only the normalized spelling may name a profile.
func (id Identity) Validate() error {
	if id == "" {
		return NewError(CodeInvalidArgument, "reason", "identity is empty")
	}
	if len(id) > MaxIdentityLength {
		return NewError(CodeInvalidArgument, "reason", "identity is too long")
	}
	if !utf8.ValidString(string(id)) {
		return NewError(CodeInvalidArgument, "reason", "identity is not valid UTF-8")
	}
	if !norm.NFC.IsNormalString(string(id)) {
		return NewError(CodeInvalidArgument, "reason", "identity is not NFC normalized")
	}
	return nil
}

// String returns the identity text.
func (id Identity) String() string { return string(id) }

// Category classifies community activities.
type Category uint8

const (
	CategoryEnvironmental Category = iota + 1
	CategoryDisaster
	CategoryElderly
	CategoryEducation
	CategoryWorkerSolidarity
)

var categoryNames = map[Category]string{
	CategoryEnvironmental:    "environmental",
	CategoryDisaster:         "disaster",
	CategoryElderly:          "elderly",
	CategoryEducation:        "education",
	CategoryWorkerSolidarity: "worker_solidarity",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "unknown"
}

func (c Category) MarshalText() ([]byte, error) {
	n, ok := categoryNames[c]
	if !ok {
		return nil, fmt.Errorf("invalid category %d", c)
	}
	return []byte(n), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCategory accepts the snake_case name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	for c, n := range categoryNames {
		if strings.EqualFold(n, s) {
			return c, nil
		}
	}
	return 0, NewError(CodeInvalidArgument, "category", s)
}

// ActivityStatus is the verification state of an activity.
type ActivityStatus uint8

const (
	ActivityPending ActivityStatus = iota + 1
	ActivityVerified
	ActivityRejected
)

var activityStatusNames = map[ActivityStatus]string{
	ActivityPending:  "pending",
	ActivityVerified: "verified",
	ActivityRejected: "rejected",
}

func (s ActivityStatus) String() string {
	if n, ok := activityStatusNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s ActivityStatus) MarshalText() ([]byte, error) {
	n, ok := activityStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid activity status %d", s)
	}
	return []byte(n), nil
}

func (s *ActivityStatus) UnmarshalText(b []byte) error {
	for v, n := range activityStatusNames {
		if n == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("invalid activity status %q", b)
}

// ProposalType classifies governance proposals.
type ProposalType uint8

const (
	ProposalTokenomicsChange ProposalType = iota + 1
	ProposalPolicyUpdate
	ProposalResourceAllocation
	ProposalTechnicalUpgrade
	ProposalCommunityGuidelines
)

var proposalTypeNames = map[ProposalType]string{
	ProposalTokenomicsChange:    "tokenomics_change",
	ProposalPolicyUpdate:        "policy_update",
	ProposalResourceAllocation:  "resource_allocation",
	ProposalTechnicalUpgrade:    "technical_upgrade",
	ProposalCommunityGuidelines: "community_guidelines",
}

func (t ProposalType) String() string {
	if n, ok := proposalTypeNames[t]; ok {
		return n
	}
	return "unknown"
}

func (t ProposalType) MarshalText() ([]byte, error) {
	n, ok := proposalTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("invalid proposal type %d", t)
	}
	return []byte(n), nil
}

func (t *ProposalType) UnmarshalText(b []byte) error {
	v, err := ParseProposalType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseProposalType accepts the snake_case name, case-insensitively.
func ParseProposalType(s string) (ProposalType, error) {
	for t, n := range proposalTypeNames {
		if strings.EqualFold(n, s) {
			return t, nil
		}
	}
	return 0, NewError(CodeInvalidArgument, "proposal_type", s)
}

// ProposalStatus is the lifecycle state of a proposal.
//
// Only Active is reachable today; see CastVote.
type ProposalStatus uint8

const (
	ProposalActive ProposalStatus = iota + 1
	ProposalPassed
	ProposalRejected
	ProposalExecuted
)

var proposalStatusNames = map[ProposalStatus]string{
	ProposalActive:   "active",
	ProposalPassed:   "passed",
	ProposalRejected: "rejected",
	ProposalExecuted: "executed",
}

func (s ProposalStatus) String() string {
	if n, ok := proposalStatusNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s ProposalStatus) MarshalText() ([]byte, error) {
	n, ok := proposalStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid proposal status %d", s)
	}
	return []byte(n), nil
}

func (s *ProposalStatus) UnmarshalText(b []byte) error {
	for v, n := range proposalStatusNames {
		if n == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("invalid proposal status %q", b)
}

// SkillType names a skill a worker cooperative needs.
type SkillType uint8

const (
	SkillTechnical SkillType = iota + 1
	SkillAdministrative
	SkillLegal
	SkillMarketing
	SkillProduction
	SkillEducation
	SkillHealthcare
	SkillConstruction
)

var skillNames = map[SkillType]string{
	SkillTechnical:      "technical",
	SkillAdministrative: "administrative",
	SkillLegal:          "legal",
	SkillMarketing:      "marketing",
	SkillProduction:     "production",
	SkillEducation:      "education",
	SkillHealthcare:     "healthcare",
	SkillConstruction:   "construction",
}

func (s SkillType) String() string {
	if n, ok := skillNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s SkillType) MarshalText() ([]byte, error) {
	n, ok := skillNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid skill %d", s)
	}
	return []byte(n), nil
}

func (s *SkillType) UnmarshalText(b []byte) error {
	v, err := ParseSkill(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSkill accepts the lower-case name, case-insensitively.
func ParseSkill(s string) (SkillType, error) {
	for k, n := range skillNames {
		if strings.EqualFold(n, s) {
			return k, nil
		}
	}
	return 0, NewError(CodeInvalidArgument, "skill", s)
}
