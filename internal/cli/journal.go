package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	After   int64
	Limit   int
	Request string
	Kind    string
	Failed  bool
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show journaled transitions",
		Long: `Show the transition journal in sequence order. Failed transitions are
journaled with their error code, so the journal is a complete history of
every admitted request.

Examples:
  solidarity journal --after 100 --limit 20
  solidarity journal --request 0191f1c2-...
  solidarity journal --kind verifyActivity --failed --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.After, "after", 0, "show transitions after this seq")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of transitions (0 = all)")
	cmd.Flags().StringVar(&opts.Request, "request", "", "show the transition of one request id")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one transition kind")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "only failed transitions")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	var entries []ir.Transition
	if opts.Request != "" {
		tr, err := st.TransitionByRequest(ctx, opts.Request)
		if errors.Is(err, ledger.ErrNotFound) {
			return WrapExitError(ExitFailure, "no transition for request", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		entries = []ir.Transition{tr}
	} else {
		// Filters apply after the read, so only an unfiltered read can be
		// limited in SQL.
		limit := opts.Limit
		if opts.Kind != "" || opts.Failed {
			limit = 0
		}
		all, err := st.ReadTransitions(ctx, opts.After, limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		entries = filterJournal(all, opts)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(entries)
	}
	writeJournalText(cmd.OutOrStdout(), entries, opts.Verbose)
	return nil
}

func filterJournal(all []ir.Transition, opts *JournalOptions) []ir.Transition {
	out := make([]ir.Transition, 0, len(all))
	for _, tr := range all {
		if opts.Kind != "" && tr.Kind != opts.Kind {
			continue
		}
		if opts.Failed && tr.OK() {
			continue
		}
		out = append(out, tr)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}

func writeJournalText(w io.Writer, entries []ir.Transition, verbose bool) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No transitions found.")
		return
	}
	for _, tr := range entries {
		status := "✓"
		if !tr.OK() {
			status = "✗ " + tr.Code
		}
		at := time.Unix(tr.Now, 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, "[%d] %s %s by %s %s\n", tr.Seq, at, tr.Kind, tr.Caller, status)
		if verbose {
			fmt.Fprintf(w, "    id:      %s\n", tr.ID)
			fmt.Fprintf(w, "    request: %s\n", tr.RequestID)
			fmt.Fprintf(w, "    args:    %s\n", formatValue(tr.Args))
			fmt.Fprintf(w, "    result:  %s\n", formatValue(tr.Result))
		}
	}
}
