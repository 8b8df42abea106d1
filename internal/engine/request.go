package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/solidarity/internal/ledger"
)

// Transition kinds accepted by the engine.
const (
	KindInitialize       = "initialize"
	KindRegisterUser     = "registerUser"
	KindCreateActivity   = "createActivity"
	KindVerifyActivity   = "verifyActivity"
	KindCreateStrike     = "createStrike"
	KindSupportStrike    = "supportStrike"
	KindCreateWorkerCoop = "createWorkerCoop"
	KindFundWorkerCoop   = "fundWorkerCoop"
	KindCreateProposal   = "createProposal"
	KindVoteOnProposal   = "voteOnProposal"
	KindDistributeUbi    = "distributeUbi"
	KindApplyTokenDecay  = "applyTokenDecay"
	KindPublishMedian    = "publishMedian"
)

// Kinds lists every transition kind in a fixed order.
var Kinds = []string{
	KindInitialize,
	KindRegisterUser,
	KindCreateActivity,
	KindVerifyActivity,
	KindCreateStrike,
	KindSupportStrike,
	KindCreateWorkerCoop,
	KindFundWorkerCoop,
	KindCreateProposal,
	KindVoteOnProposal,
	KindDistributeUbi,
	KindApplyTokenDecay,
	KindPublishMedian,
}

// Request asks the engine to run one transition on behalf of Caller.
// Caller must already be authenticated by the host.
type Request struct {
	ID     string          `json:"id,omitempty"`
	Kind   string          `json:"kind"`
	Caller ledger.Identity `json:"caller"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// NewRequest builds a request whose Args are the JSON encoding of args.
// A nil args value produces an empty object.
func NewRequest(kind string, caller ledger.Identity, args any) (Request, error) {
	req := Request{Kind: kind, Caller: caller, Args: json.RawMessage(`{}`)}
	if args == nil {
		return req, nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return Request{}, fmt.Errorf("encode %s args: %w", kind, err)
	}
	req.Args = data
	return req, nil
}

// Typed arguments per kind. Field names are the JSON keys journaled with
// every transition.

type RegisterUserArgs struct {
	UnionMembership bool `json:"union_membership"`
}

type CreateActivityArgs struct {
	Category       ledger.Category `json:"category"`
	Description    string          `json:"description"`
	LatitudeE6     int64           `json:"latitude_e6"`
	LongitudeE6    int64           `json:"longitude_e6"`
	Address        string          `json:"address"`
	EstimatedHours uint32          `json:"estimated_hours"`
}

type VerifyActivityArgs struct {
	Activity string `json:"activity"`
	Verified bool   `json:"verified"`
}

type CreateStrikeArgs struct {
	Company          string `json:"company"`
	UnionVerified    bool   `json:"union_verified"`
	ParticipantCount uint32 `json:"participant_count"`
}

type SupportStrikeArgs struct {
	Strike string `json:"strike"`
	Amount uint64 `json:"amount"`
}

type CreateWorkerCoopArgs struct {
	BusinessPlan string             `json:"business_plan"`
	FundingGoal  uint64             `json:"funding_goal"`
	Skills       []ledger.SkillType `json:"skills"`
}

type FundWorkerCoopArgs struct {
	Coop   string `json:"coop"`
	Amount uint64 `json:"amount"`
}

type CreateProposalArgs struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	ProposalType ledger.ProposalType `json:"proposal_type"`
}

type VoteOnProposalArgs struct {
	Proposal    string `json:"proposal"`
	Vote        bool   `json:"vote"`
	TokenAmount uint64 `json:"token_amount"`
}

// ProfileArgs targets a profile by its owner. An empty Owner means the
// caller's own profile.
type ProfileArgs struct {
	Owner ledger.Identity `json:"owner,omitempty"`
}

type PublishMedianArgs struct {
	Median uint64 `json:"median"`
}

// decodeArgs strictly decodes raw into out. Unknown fields, trailing data
// and type mismatches fail with INVALID_ARGUMENT.
func decodeArgs(raw json.RawMessage, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage(`{}`)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var le *ledger.Error
		if errors.As(err, &le) {
			return le
		}
		return ledger.NewError(ledger.CodeInvalidArgument, "args", err.Error())
	}
	if dec.More() {
		return ledger.NewError(ledger.CodeInvalidArgument, "args", "trailing data")
	}
	return nil
}
