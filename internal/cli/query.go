package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
	"github.com/roach88/solidarity/internal/store"
)

// RecordView is a stored record as shown to users.
type RecordView struct {
	Key        string      `json:"key"`
	Kind       string      `json:"kind"`
	Version    int64       `json:"version"`
	CreatedSeq int64       `json:"created_seq"`
	UpdatedSeq int64       `json:"updated_seq"`
	Body       ir.IRObject `json:"body"`
}

func recordView(r store.Record) (RecordView, error) {
	v, err := ir.FromJSON([]byte(r.Body))
	if err != nil {
		return RecordView{}, fmt.Errorf("decode %s: %w", r.Key, err)
	}
	body, ok := v.(ir.IRObject)
	if !ok {
		return RecordView{}, fmt.Errorf("decode %s: body is not an object", r.Key)
	}
	return RecordView{
		Key:        r.Key,
		Kind:       r.Kind,
		Version:    r.Version,
		CreatedSeq: r.CreatedSeq,
		UpdatedSeq: r.UpdatedSeq,
		Body:       body,
	}, nil
}

func (v RecordView) status() string {
	if s, ok := v.Body["status"].(ir.IRString); ok {
		return string(s)
	}
	return "-"
}

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	var (
		profile string
		dao     bool
	)
	cmd := &cobra.Command{
		Use:   "show [record-key]",
		Short: "Show one record",
		Long: `Show a record by key, a member's profile by identity, or the DAO.

Examples:
  solidarity show activity:5d41402abc4b2a76b9719d911017c592
  solidarity show --profile alice
  solidarity show --dao`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			switch {
			case dao:
				key = ir.DaoKey
			case profile != "":
				key = ir.ProfileKey(profile)
			case len(args) == 1:
				key = args[0]
			default:
				return NewExitError(ExitCommandError, "a record key, --profile or --dao is required")
			}
			return runShow(cmd, opts, key)
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "show the profile of this identity")
	cmd.Flags().BoolVar(&dao, "dao", false, "show the DAO record")
	return cmd
}

func runShow(cmd *cobra.Command, opts *RootOptions, key string) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	f := opts.formatter(cmd)
	rec, err := st.GetRecord(cmd.Context(), key)
	if errors.Is(err, ledger.ErrNotFound) {
		if err := f.Error(string(ledger.CodeNotFound), "record not found", map[string]string{"key": key}); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "record not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read record", err)
	}
	view, err := recordView(rec)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to decode record", err)
	}

	if opts.Format == "json" {
		return f.Success(view)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s, version %d, created at seq %d, updated at seq %d)\n",
		view.Key, view.Kind, view.Version, view.CreatedSeq, view.UpdatedSeq)
	writeFields(w, "  ", view.Body)
	return nil
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Status  string
	Owner   string
	Limit   int
	Stalled bool
}

var listKinds = []string{
	ledger.KindProfile,
	ledger.KindActivity,
	ledger.KindStrike,
	ledger.KindCoop,
	ledger.KindProposal,
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "list <profile|activity|strike|coop|proposal>",
		Short: "List records of one kind",
		Long: `List records of one kind in creation order.

--stalled lists pending activities whose verifier slots are all used by
mixed votes; no further transition can settle them.

Examples:
  solidarity list activity --status pending
  solidarity list activity --stalled
  solidarity list proposal --owner alice --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "filter by creator (or owner, for profiles)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of records (0 = all)")
	cmd.Flags().BoolVar(&opts.Stalled, "stalled", false, "only stalled activities")
	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions, kind string) error {
	if !slices.Contains(listKinds, kind) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown kind %q: must be one of %v", kind, listKinds))
	}
	if opts.Stalled && kind != ledger.KindActivity {
		return NewExitError(ExitCommandError, "--stalled applies to activities only")
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	filter := store.ListFilter{Kind: kind, Status: opts.Status, Owner: opts.Owner}
	if !opts.Stalled {
		filter.Limit = opts.Limit
	}
	records, err := st.List(cmd.Context(), filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list records", err)
	}

	views := make([]RecordView, 0, len(records))
	for _, r := range records {
		if opts.Stalled {
			var act ledger.Activity
			if err := r.Decode(&act); err != nil {
				return WrapExitError(ExitCommandError, "failed to decode activity", err)
			}
			if !act.Stalled() {
				continue
			}
		}
		view, err := recordView(r)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to decode record", err)
		}
		views = append(views, view)
		if opts.Stalled && opts.Limit > 0 && len(views) == opts.Limit {
			break
		}
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(views)
	}
	w := cmd.OutOrStdout()
	if len(views) == 0 {
		fmt.Fprintf(w, "No %s records found.\n", kind)
		return nil
	}
	for _, v := range views {
		fmt.Fprintf(w, "%-48s  %-9s  seq %d\n", v.Key, v.status(), v.CreatedSeq)
		if opts.Verbose {
			writeFields(w, "    ", v.Body)
		}
	}
	return nil
}

// StatsResult is the output of the stats command.
type StatsResult struct {
	store.Stats
	Dao *ledger.DaoState `json:"dao,omitempty"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, opts)
		},
	}
}

func runStats(cmd *cobra.Command, opts *RootOptions) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	stats, err := st.Stats(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compute stats", err)
	}
	result := StatsResult{Stats: stats}

	var dao ledger.DaoState
	_, err = st.Get(ctx, ir.DaoKey, ledger.KindDao, &dao)
	switch {
	case err == nil:
		result.Dao = &dao
	case !errors.Is(err, ledger.ErrNotFound):
		return WrapExitError(ExitCommandError, "failed to read DAO", err)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}
	writeStatsText(cmd.OutOrStdout(), result)
	return nil
}

func writeStatsText(w io.Writer, r StatsResult) {
	if r.Dao == nil {
		fmt.Fprintln(w, "Ledger not initialized.")
	} else {
		fmt.Fprintf(w, "Authority:        %s\n", r.Dao.Authority)
		fmt.Fprintf(w, "Active users:     %d\n", r.Dao.ActiveUsers)
		fmt.Fprintf(w, "Activities:       %d\n", r.Dao.TotalActivities)
		fmt.Fprintf(w, "Median balance:   %d\n", r.Dao.MedianBalance)
		fmt.Fprintf(w, "Total supply:     %d\n", r.Dao.TotalSupply)
	}
	fmt.Fprintf(w, "Transitions:      %d (%d failed, last seq %d)\n", r.Transitions, r.Failed, r.LastSeq)
	fmt.Fprintf(w, "Records:          %d\n", r.Records)
	for _, kind := range sortedKeys(r.ByKind) {
		fmt.Fprintf(w, "  %-10s %d\n", kind, r.ByKind[kind])
	}
	for _, ks := range sortedKeys(r.ByStatus) {
		fmt.Fprintf(w, "  %-20s %d\n", ks, r.ByStatus[ks])
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
