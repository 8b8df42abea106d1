package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/solidarity/internal/engine"
	"github.com/roach88/solidarity/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Into string // optional - keep the replayed ledger at this path
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the journal and verify determinism",
		Long: `Re-execute every journaled transition, in seq order, on a fresh ledger
using the recorded time and caller. Each transition must reproduce its
journaled id, outcome, code, result and written keys, and the final state
digest must match the source ledger.

The ledger's recorded parameters are used unless --params is given.

Exit codes:
  0 - The journal reproduces the ledger
  1 - Replay diverged
  2 - Command error (database not found, etc.)

Examples:
  solidarity replay --db ./ledger.db
  solidarity replay --db ./ledger.db --into ./replayed.db
  solidarity replay --db ./ledger.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Into, "into", "", "write the replayed ledger to this path (must be new)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	src, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer src.Close()

	p, err := resolveParams(ctx, opts.RootOptions, src)
	if err != nil {
		return err
	}

	into := opts.Into
	if into == "" {
		into = ":memory:"
	}
	dst, err := store.Open(into)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open replay target", err)
	}
	defer dst.Close()

	report, err := engine.Replay(ctx, src, dst, p)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	if opts.Format == "json" {
		return outputReplayJSON(opts.formatter(cmd), report)
	}
	return outputReplayText(cmd, report, opts.Verbose)
}

// outputReplayJSON outputs the replay report as JSON.
func outputReplayJSON(f *OutputFormatter, report engine.ReplayReport) error {
	response := CLIResponse{Status: "ok", Data: report}
	if !report.OK() {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    string(engine.ErrCodeReplayMismatch),
			Message: report.Err().Error(),
		}
	}
	if err := f.encode(response); err != nil {
		return err
	}

	if !report.OK() {
		// Divergence = exit code 1
		return WrapExitError(ExitFailure, "determinism verification failed", report.Err())
	}
	return nil
}

// outputReplayText outputs the replay report as text.
func outputReplayText(cmd *cobra.Command, report engine.ReplayReport, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d transition(s), %d failed\n", report.Transitions, report.Failed)
	if verbose {
		fmt.Fprintf(w, "  Source digest: %s\n", report.SourceDigest)
		fmt.Fprintf(w, "  Replay digest: %s\n", report.ReplayDigest)
	}

	for _, m := range report.Mismatches {
		fmt.Fprintf(w, "✗ seq %d: %s differs\n", m.Seq, m.Field)
		if verbose {
			fmt.Fprintf(w, "    want: %s\n", m.Want)
			fmt.Fprintf(w, "    got:  %s\n", m.Got)
		}
	}

	if report.OK() {
		fmt.Fprintln(w, "✓ Journal reproduces the ledger")
		return nil
	}

	if report.SourceDigest != report.ReplayDigest {
		fmt.Fprintln(w, "✗ State digest differs")
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
	// Divergence = exit code 1
	return WrapExitError(ExitFailure, "determinism verification failed", report.Err())
}
