package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/solidarity/internal/engine"
	"github.com/roach88/solidarity/internal/ledger"
)

// runTransition submits one transition as --as and prints its receipt.
func runTransition(cmd *cobra.Command, opts *RootOptions, kind string, args any) error {
	if opts.Caller == "" {
		return NewExitError(ExitCommandError, "--as (or SOLIDARITY_CALLER) is required")
	}
	req, err := engine.NewRequest(kind, ledger.Identity(opts.Caller), args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid request", err)
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	receipt, err := s.submit(ctx, req)
	if err != nil {
		return err
	}
	return opts.formatter(cmd).Receipt(receipt)
}

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the ledger with the caller as authority",
		Long: `Create the DAO record. The caller becomes the authority allowed to publish
the median balance. The parameters in effect (--params or defaults) are
recorded and every later command runs under them.

Examples:
  solidarity init --db ./ledger.db --as treasurer
  solidarity init --db ./ledger.db --as treasurer --params ./pilot.cue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, opts, engine.KindInitialize, nil)
		},
	}
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(opts *RootOptions) *cobra.Command {
	var union bool
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the caller as a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, opts, engine.KindRegisterUser, engine.RegisterUserArgs{UnionMembership: union})
		},
	}
	cmd.Flags().BoolVar(&union, "union", false, "caller is a union member")
	return cmd
}

// NewActivityCommand creates the activity command group.
func NewActivityCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Create and verify community activities",
	}
	cmd.AddCommand(newActivityCreateCommand(opts))
	cmd.AddCommand(newActivityVerifyCommand(opts))
	return cmd
}

func newActivityCreateCommand(opts *RootOptions) *cobra.Command {
	var (
		category, description, lat, lon, address string
		hours                                    uint32
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a community activity for peer verification",
		Long: `Record a community activity. Once enough peers approve it, the reward
(rate for the category x hours) is credited to the creator.

Categories: environmental, disaster, elderly, education, worker_solidarity.
Coordinates are decimal degrees with at most six fractional digits.

Example:
  solidarity activity create --as alice --category elderly --hours 4 \
    --description "Grocery runs" --lat -33.8688 --lon 151.2093 --address "12 Union St"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ledger.ParseCategory(category)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --category", err)
			}
			latE6, err := parseCoordinate("--lat", lat)
			if err != nil {
				return err
			}
			lonE6, err := parseCoordinate("--lon", lon)
			if err != nil {
				return err
			}
			return runTransition(cmd, opts, engine.KindCreateActivity, engine.CreateActivityArgs{
				Category:       cat,
				Description:    description,
				LatitudeE6:     latE6,
				LongitudeE6:    lonE6,
				Address:        address,
				EstimatedHours: hours,
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "activity category (required)")
	cmd.Flags().StringVar(&description, "description", "", "what was done")
	cmd.Flags().StringVar(&lat, "lat", "0", "latitude in decimal degrees")
	cmd.Flags().StringVar(&lon, "lon", "0", "longitude in decimal degrees")
	cmd.Flags().StringVar(&address, "address", "", "street address")
	cmd.Flags().Uint32Var(&hours, "hours", 0, "estimated hours")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func parseCoordinate(flag, s string) (int64, error) {
	v, err := ledger.ParseCoordinate(s)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "invalid "+flag, err)
	}
	return v, nil
}

func newActivityVerifyCommand(opts *RootOptions) *cobra.Command {
	var reject bool
	cmd := &cobra.Command{
		Use:   "verify <activity-key>",
		Short: "Approve (or with --reject, reject) an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, opts, engine.KindVerifyActivity, engine.VerifyActivityArgs{
				Activity: args[0],
				Verified: !reject,
			})
		},
	}
	cmd.Flags().BoolVar(&reject, "reject", false, "vote against the activity")
	return cmd
}

// NewStrikeCommand creates the strike command group.
func NewStrikeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strike",
		Short: "Create and support strike funds",
	}

	var (
		company       string
		unionVerified bool
		participants  uint32
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a strike fund",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, opts, engine.KindCreateStrike, engine.CreateStrikeArgs{
				Company:          company,
				UnionVerified:    unionVerified,
				ParticipantCount: participants,
			})
		},
	}
	create.Flags().StringVar(&company, "company", "", "company being struck (required)")
	create.Flags().BoolVar(&unionVerified, "union-verified", false, "strike is verified by a union")
	create.Flags().Uint32Var(&participants, "participants", 0, "number of strikers")
	_ = create.MarkFlagRequired("company")

	var amount uint64
	support := &cobra.Command{
		Use:   "support <strike-key>",
		Short: "Contribute to a strike fund",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, opts, engine.KindSupportStrike, engine.SupportStrikeArgs{
				Strike: args[0],
				Amount: amount,
			})
		},
	}
	support.Flags().Uint64Var(&amount, "amount", 0, "amount in base units")

	cmd.AddCommand(create, support)
	return cmd
}

// NewCoopCommand creates the coop command group.
func NewCoopCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coop",
		Short: "Create and fund worker cooperatives",
	}

	var (
		plan   string
		goal   uint64
		skills []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Found a worker cooperative",
		Long: `Found a worker cooperative with the caller as founder.

Skills: technical, administrative, legal, marketing, production, education,
healthcare, construction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]ledger.SkillType, 0, len(skills))
			for _, s := range skills {
				skill, err := ledger.ParseSkill(s)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --skills", err)
				}
				parsed = append(parsed, skill)
			}
			return runTransition(cmd, opts, engine.KindCreateWorkerCoop, engine.CreateWorkerCoopArgs{
				BusinessPlan: plan,
				FundingGoal:  goal,
				Skills:       parsed,
			})
		},
	}
	create.Flags().StringVar(&plan, "plan", "", "business plan")
	create.Flags().Uint64Var(&goal, "goal", 0, "funding goal in base units")
	create.Flags().StringSliceVar(&skills, "skills", nil, "required skills, comma separated")

	var amount uint64
	fund := &cobra.Command{
		Use:   "fund <coop-key>",
		Short: "Contribute funding to a cooperative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, opts, engine.KindFundWorkerCoop, engine.FundWorkerCoopArgs{
				Coop:   args[0],
				Amount: amount,
			})
		},
	}
	fund.Flags().Uint64Var(&amount, "amount", 0, "amount in base units")

	cmd.AddCommand(create, fund)
	return cmd
}

// NewProposalCommand creates the proposal command group.
func NewProposalCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Create and vote on governance proposals",
	}

	var title, description, typ string
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a proposal for voting",
		Long: `Open a proposal. Voting closes after the configured voting period.

Types: tokenomics_change, policy_update, resource_allocation,
technical_upgrade, community_guidelines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pt, err := ledger.ParseProposalType(typ)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --type", err)
			}
			return runTransition(cmd, opts, engine.KindCreateProposal, engine.CreateProposalArgs{
				Title:        title,
				Description:  description,
				ProposalType: pt,
			})
		},
	}
	create.Flags().StringVar(&title, "title", "", "proposal title (required)")
	create.Flags().StringVar(&description, "description", "", "proposal text")
	create.Flags().StringVar(&typ, "type", "policy_update", "proposal type")
	_ = create.MarkFlagRequired("title")

	var (
		against bool
		tokens  uint64
	)
	vote := &cobra.Command{
		Use:   "vote <proposal-key>",
		Short: "Cast a quadratic vote",
		Long: `Cast a vote weighted by the integer square root of --tokens.
Each identity votes once per proposal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, opts, engine.KindVoteOnProposal, engine.VoteOnProposalArgs{
				Proposal:    args[0],
				Vote:        !against,
				TokenAmount: tokens,
			})
		},
	}
	vote.Flags().BoolVar(&against, "against", false, "vote against the proposal")
	vote.Flags().Uint64Var(&tokens, "tokens", 0, "tokens committed to the vote")

	cmd.AddCommand(create, vote)
	return cmd
}

// NewUbiCommand creates the ubi command.
func NewUbiCommand(opts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "ubi",
		Short: "Pay UBI to an active member",
		Long: `Pay the UBI amount to a member active within the UBI window.
Defaults to the caller's own profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, opts, engine.KindDistributeUbi, engine.ProfileArgs{Owner: ledger.Identity(owner)})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "member to pay (default: caller)")
	return cmd
}

// NewDecayCommand creates the decay command.
func NewDecayCommand(opts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "decay",
		Short: "Apply token decay to a balance above the median",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, opts, engine.KindApplyTokenDecay, engine.ProfileArgs{Owner: ledger.Identity(owner)})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "member to decay (default: caller)")
	return cmd
}

// NewMedianCommand creates the median command.
func NewMedianCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "median <balance>",
		Short: "Publish the median balance (authority only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			median, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid median", err)
			}
			return runTransition(cmd, opts, engine.KindPublishMedian, engine.PublishMedianArgs{Median: median})
		},
	}
}
