package ledger

// ProposalInput is the caller-supplied part of a new proposal.
type ProposalInput struct {
	Title        string
	Description  string
	ProposalType ProposalType
}

// CreateProposal opens a proposal for voting until now + VotingPeriodSeconds.
func CreateProposal(p Params, creator Identity, in ProposalInput, now int64) (Proposal, error) {
	if err := creator.Validate(); err != nil {
		return Proposal{}, err
	}
	title, err := boundedText(in.Title, p.Limits.Title, CodeTitleTooLong)
	if err != nil {
		return Proposal{}, err
	}
	desc, err := boundedText(in.Description, p.Limits.ProposalDescription, CodeDescriptionTooLong)
	if err != nil {
		return Proposal{}, err
	}
	if _, ok := proposalTypeNames[in.ProposalType]; !ok {
		return Proposal{}, NewError(CodeInvalidArgument, "proposal_type", in.ProposalType.String())
	}
	voters, err := NewBoundedSet[Identity](p.Budgets.Voters)
	if err != nil {
		return Proposal{}, err
	}
	return Proposal{
		Creator:        creator,
		Title:          title,
		Description:    desc,
		ProposalType:   in.ProposalType,
		Status:         ProposalActive,
		CreatedAt:      now,
		VotingDeadline: now + p.VotingPeriodSeconds,
		Voters:         voters,
	}, nil
}

// VoteWeight is the quadratic weight of a token commitment.
func VoteWeight(tokens uint64) uint64 {
	return ISqrt(tokens)
}

// CastVote tallies one quadratic vote. tokens is declared by the voter and
// is not checked against any balance.
//
// No transition moves a proposal out of Active yet; resolution needs a
// tally rule and a quorum for governance that have not been decided.
func CastVote(prop Proposal, voter Identity, vote bool, tokens uint64, now int64) (Proposal, uint64, error) {
	if err := voter.Validate(); err != nil {
		return prop, 0, err
	}
	if prop.Status != ProposalActive {
		return prop, 0, NewError(CodeProposalNotActive, "status", prop.Status.String())
	}
	if now >= prop.VotingDeadline {
		return prop, 0, ErrDeadlinePassed
	}
	if prop.Voters.Contains(voter) {
		return prop, 0, NewError(CodeAlreadyVoted, "voter", voter.String())
	}
	voters, _, err := prop.Voters.With(voter)
	if err != nil {
		return prop, 0, err
	}
	weight := VoteWeight(tokens)
	next := prop
	next.Voters = voters
	if vote {
		if next.VotesFor, err = add("votes_for", prop.VotesFor, weight); err != nil {
			return prop, 0, err
		}
	} else {
		if next.VotesAgainst, err = add("votes_against", prop.VotesAgainst, weight); err != nil {
			return prop, 0, err
		}
	}
	return next, weight, nil
}
