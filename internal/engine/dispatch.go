package engine

import (
	"context"
	"encoding/json"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
	"github.com/roach88/solidarity/internal/store"
)

// call is the admitted form of a request: trusted seq and now, the
// authenticated caller and canonical args.
type call struct {
	seq    int64
	now    int64
	caller ledger.Identity
	args   json.RawMessage
}

// effect is what a committed transition reports: the journal result and
// the record keys it wrote, in write order.
type effect struct {
	result ir.IRObject
	keys   []string
}

// dispatch routes a transition to its handler.
// CRITICAL: Called only under the writer lock, inside tx.
func (e *Engine) dispatch(ctx context.Context, tx *store.Tx, kind string, c call) (effect, error) {
	switch kind {
	case KindInitialize:
		return e.initialize(ctx, tx, c)
	case KindRegisterUser:
		return e.registerUser(ctx, tx, c)
	case KindCreateActivity:
		return e.createActivity(ctx, tx, c)
	case KindVerifyActivity:
		return e.verifyActivity(ctx, tx, c)
	case KindCreateStrike:
		return e.createStrike(ctx, tx, c)
	case KindSupportStrike:
		return e.supportStrike(ctx, tx, c)
	case KindCreateWorkerCoop:
		return e.createWorkerCoop(ctx, tx, c)
	case KindFundWorkerCoop:
		return e.fundWorkerCoop(ctx, tx, c)
	case KindCreateProposal:
		return e.createProposal(ctx, tx, c)
	case KindVoteOnProposal:
		return e.voteOnProposal(ctx, tx, c)
	case KindDistributeUbi:
		return e.distributeUbi(ctx, tx, c)
	case KindApplyTokenDecay:
		return e.applyTokenDecay(ctx, tx, c)
	case KindPublishMedian:
		return e.publishMedian(ctx, tx, c)
	default:
		return effect{}, ledger.NewError(ledger.CodeInvalidArgument, "kind", kind)
	}
}

func (e *Engine) initialize(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	if err := decodeArgs(c.args, &struct{}{}); err != nil {
		return effect{}, err
	}
	dao, err := ledger.NewDaoState(e.params, c.caller)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Insert(ctx, ir.DaoKey, ledger.KindDao, dao); err != nil {
		return effect{}, err
	}
	if err := tx.SetMeta(ctx, metaParams, e.paramsJSON); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{
			"dao":          ir.IRString(ir.DaoKey),
			"authority":    ir.IRString(dao.Authority),
			"total_supply": ir.IRUint(dao.TotalSupply),
		},
		keys: []string{ir.DaoKey},
	}, nil
}

func (e *Engine) registerUser(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args RegisterUserArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	var dao ledger.DaoState
	daoVersion, err := tx.Get(ctx, ir.DaoKey, ledger.KindDao, &dao)
	if err != nil {
		return effect{}, err
	}
	dao, prof, err := ledger.RegisterUser(e.params, dao, c.caller, args.UnionMembership, c.now)
	if err != nil {
		return effect{}, err
	}
	key := ir.ProfileKey(string(c.caller))
	if err := tx.Insert(ctx, key, ledger.KindProfile, prof); err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, ir.DaoKey, daoVersion, dao); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{
			"profile":          ir.IRString(key),
			"reputation_score": ir.IRUint(prof.ReputationScore),
			"active_users":     ir.IRUint(dao.ActiveUsers),
		},
		keys: []string{key, ir.DaoKey},
	}, nil
}

func (e *Engine) createActivity(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args CreateActivityArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	var dao ledger.DaoState
	daoVersion, err := tx.Get(ctx, ir.DaoKey, ledger.KindDao, &dao)
	if err != nil {
		return effect{}, err
	}
	dao, act, err := ledger.CreateActivity(e.params, dao, c.caller, ledger.ActivityInput{
		Category:    args.Category,
		Description: args.Description,
		Location: ledger.Location{
			LatitudeE6:  args.LatitudeE6,
			LongitudeE6: args.LongitudeE6,
			Address:     args.Address,
		},
		EstimatedHours: args.EstimatedHours,
	}, c.now)
	if err != nil {
		return effect{}, err
	}
	key, err := ir.RecordKey(ledger.KindActivity, string(c.caller), c.seq)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Insert(ctx, key, ledger.KindActivity, act); err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, ir.DaoKey, daoVersion, dao); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{
			"activity":         ir.IRString(key),
			"reward_amount":    ir.IRUint(act.RewardAmount),
			"total_activities": ir.IRUint(dao.TotalActivities),
		},
		keys: []string{key, ir.DaoKey},
	}, nil
}

// verifyActivity records one vote. The vote that reaches quorum also
// credits the reward to the creator's profile in the same transaction; if
// that profile is missing the whole transition fails and the vote is not
// recorded.
func (e *Engine) verifyActivity(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args VerifyActivityArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	var act ledger.Activity
	actVersion, err := tx.Get(ctx, args.Activity, ledger.KindActivity, &act)
	if err != nil {
		return effect{}, err
	}
	res, err := ledger.SubmitVerification(e.params, act, c.caller, args.Verified)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, args.Activity, actVersion, res.Activity); err != nil {
		return effect{}, err
	}
	eff := effect{
		result: ir.IRObject{
			"activity":           ir.IRString(args.Activity),
			"status":             ir.IRString(res.Activity.Status.String()),
			"verification_count": ir.IRUint(res.Activity.VerificationCount),
			"verifiers":          ir.IRUint(res.Activity.Verifiers.Len()),
			"reward_credited":    ir.IRUint(0),
		},
		keys: []string{args.Activity},
	}
	if res.Activity.Stalled() {
		eff.result["stalled"] = ir.IRBool(true)
	}
	if !res.QuorumReached {
		return eff, nil
	}

	profKey := ir.ProfileKey(string(res.Activity.Creator))
	var prof ledger.UserProfile
	profVersion, err := tx.Get(ctx, profKey, ledger.KindProfile, &prof)
	if err != nil {
		return effect{}, err
	}
	prof, err = ledger.CreditActivityReward(e.params, res.Activity, prof)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, profKey, profVersion, prof); err != nil {
		return effect{}, err
	}
	eff.result["reward_credited"] = ir.IRUint(res.Activity.RewardAmount)
	eff.result["creator_profile"] = ir.IRString(profKey)
	eff.keys = append(eff.keys, profKey)
	return eff, nil
}

func (e *Engine) createStrike(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args CreateStrikeArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	strike, err := ledger.CreateStrike(e.params, c.caller, ledger.StrikeInput{
		Company:          args.Company,
		UnionVerified:    args.UnionVerified,
		ParticipantCount: args.ParticipantCount,
	}, c.now)
	if err != nil {
		return effect{}, err
	}
	key, err := ir.RecordKey(ledger.KindStrike, string(c.caller), c.seq)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Insert(ctx, key, ledger.KindStrike, strike); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{
			"strike":           ir.IRString(key),
			"legitimacy_score": ir.IRUint(strike.LegitimacyScore),
			"daily_support":    ir.IRUint(strike.DailySupport),
		},
		keys: []string{key},
	}, nil
}

func (e *Engine) supportStrike(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args SupportStrikeArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	var strike ledger.Strike
	strikeVersion, err := tx.Get(ctx, args.Strike, ledger.KindStrike, &strike)
	if err != nil {
		return effect{}, err
	}
	profKey, prof, profVersion, err := e.loadProfile(ctx, tx, c.caller)
	if err != nil {
		return effect{}, err
	}
	strike, prof, err = ledger.SupportStrike(e.params, strike, prof, args.Amount)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, args.Strike, strikeVersion, strike); err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, profKey, profVersion, prof); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{
			"strike":                 ir.IRString(args.Strike),
			"total_fund":             ir.IRUint(strike.TotalFund),
			"supporters":             ir.IRUint(strike.Supporters.Len()),
			"class_solidarity_score": ir.IRUint(prof.ClassSolidarityScore),
		},
		keys: []string{args.Strike, profKey},
	}, nil
}

func (e *Engine) createWorkerCoop(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args CreateWorkerCoopArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	coop, err := ledger.CreateWorkerCoop(e.params, c.caller, ledger.CoopInput{
		BusinessPlan: args.BusinessPlan,
		FundingGoal:  args.FundingGoal,
		Skills:       args.Skills,
	}, c.now)
	if err != nil {
		return effect{}, err
	}
	key, err := ir.RecordKey(ledger.KindCoop, string(c.caller), c.seq)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Insert(ctx, key, ledger.KindCoop, coop); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{
			"coop":                 ir.IRString(key),
			"funding_goal":         ir.IRUint(coop.FundingGoal),
			"sustainability_score": ir.IRUint(coop.SustainabilityScore),
		},
		keys: []string{key},
	}, nil
}

func (e *Engine) fundWorkerCoop(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args FundWorkerCoopArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	var coop ledger.WorkerCoop
	coopVersion, err := tx.Get(ctx, args.Coop, ledger.KindCoop, &coop)
	if err != nil {
		return effect{}, err
	}
	profKey, prof, profVersion, err := e.loadProfile(ctx, tx, c.caller)
	if err != nil {
		return effect{}, err
	}
	coop, prof, err = ledger.FundWorkerCoop(e.params, coop, prof, args.Amount)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, args.Coop, coopVersion, coop); err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, profKey, profVersion, prof); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{
			"coop":                   ir.IRString(args.Coop),
			"current_funding":        ir.IRUint(coop.CurrentFunding),
			"class_solidarity_score": ir.IRUint(prof.ClassSolidarityScore),
		},
		keys: []string{args.Coop, profKey},
	}, nil
}

func (e *Engine) createProposal(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args CreateProposalArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	prop, err := ledger.CreateProposal(e.params, c.caller, ledger.ProposalInput{
		Title:        args.Title,
		Description:  args.Description,
		ProposalType: args.ProposalType,
	}, c.now)
	if err != nil {
		return effect{}, err
	}
	key, err := ir.RecordKey(ledger.KindProposal, string(c.caller), c.seq)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Insert(ctx, key, ledger.KindProposal, prop); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{
			"proposal":        ir.IRString(key),
			"voting_deadline": ir.IRInt(prop.VotingDeadline),
		},
		keys: []string{key},
	}, nil
}

func (e *Engine) voteOnProposal(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args VoteOnProposalArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	var prop ledger.Proposal
	propVersion, err := tx.Get(ctx, args.Proposal, ledger.KindProposal, &prop)
	if err != nil {
		return effect{}, err
	}
	prop, weight, err := ledger.CastVote(prop, c.caller, args.Vote, args.TokenAmount, c.now)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, args.Proposal, propVersion, prop); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{
			"proposal":      ir.IRString(args.Proposal),
			"weight":        ir.IRUint(weight),
			"votes_for":     ir.IRUint(prop.VotesFor),
			"votes_against": ir.IRUint(prop.VotesAgainst),
		},
		keys: []string{args.Proposal},
	}, nil
}

func (e *Engine) distributeUbi(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args ProfileArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	profKey, prof, profVersion, err := e.loadProfile(ctx, tx, targetOwner(args, c.caller))
	if err != nil {
		return effect{}, err
	}
	prof, err = ledger.DistributeUbi(e.params, prof, c.now)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, profKey, profVersion, prof); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{
			"profile":       ir.IRString(profKey),
			"amount":        ir.IRUint(e.params.UBIAmount),
			"tokens_earned": ir.IRUint(prof.TokensEarned),
		},
		keys: []string{profKey},
	}, nil
}

// applyTokenDecay writes the profile only when something decayed.
func (e *Engine) applyTokenDecay(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args ProfileArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	var dao ledger.DaoState
	if _, err := tx.Get(ctx, ir.DaoKey, ledger.KindDao, &dao); err != nil {
		return effect{}, err
	}
	profKey, prof, profVersion, err := e.loadProfile(ctx, tx, targetOwner(args, c.caller))
	if err != nil {
		return effect{}, err
	}
	prof, amount, err := ledger.ApplyTokenDecay(e.params, dao, prof)
	if err != nil {
		return effect{}, err
	}
	eff := effect{
		result: ir.IRObject{
			"profile":       ir.IRString(profKey),
			"decayed":       ir.IRUint(amount),
			"tokens_earned": ir.IRUint(prof.TokensEarned),
		},
		keys: []string{},
	}
	if amount == 0 {
		return eff, nil
	}
	if err := tx.Update(ctx, profKey, profVersion, prof); err != nil {
		return effect{}, err
	}
	eff.keys = append(eff.keys, profKey)
	return eff, nil
}

func (e *Engine) publishMedian(ctx context.Context, tx *store.Tx, c call) (effect, error) {
	var args PublishMedianArgs
	if err := decodeArgs(c.args, &args); err != nil {
		return effect{}, err
	}
	var dao ledger.DaoState
	daoVersion, err := tx.Get(ctx, ir.DaoKey, ledger.KindDao, &dao)
	if err != nil {
		return effect{}, err
	}
	dao, err = ledger.PublishMedian(dao, c.caller, args.Median)
	if err != nil {
		return effect{}, err
	}
	if err := tx.Update(ctx, ir.DaoKey, daoVersion, dao); err != nil {
		return effect{}, err
	}
	return effect{
		result: ir.IRObject{"median_balance": ir.IRUint(dao.MedianBalance)},
		keys:   []string{ir.DaoKey},
	}, nil
}

// loadProfile reads owner's profile. An unregistered owner fails with
// NOT_FOUND.
func (e *Engine) loadProfile(ctx context.Context, tx *store.Tx, owner ledger.Identity) (string, ledger.UserProfile, int64, error) {
	if err := owner.Validate(); err != nil {
		return "", ledger.UserProfile{}, 0, err
	}
	key := ir.ProfileKey(string(owner))
	var prof ledger.UserProfile
	version, err := tx.Get(ctx, key, ledger.KindProfile, &prof)
	if err != nil {
		return "", ledger.UserProfile{}, 0, err
	}
	return key, prof, version, nil
}

func targetOwner(args ProfileArgs, caller ledger.Identity) ledger.Identity {
	if args.Owner != "" {
		return args.Owner
	}
	return caller
}
