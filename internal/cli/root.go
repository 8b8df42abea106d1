package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/solidarity/internal/platform/config"
	"github.com/roach88/solidarity/internal/platform/otel"
)

// serviceName identifies the CLI in traces.
const serviceName = "solidarity"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Params   string
	Caller   string

	shutdown func(context.Context) error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the solidarity CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solidarity",
		Short: "Solidarity ledger",
		Long: `A community mutual-aid ledger: peer-verified activities, strike and
cooperative funds, quadratic governance, UBI and token decay.

Every transition is journaled and can be replayed to prove the ledger
state is a deterministic function of its history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (env SOLIDARITY_DB)")
	cmd.PersistentFlags().StringVar(&opts.Params, "params", "", "CUE parameter file (env SOLIDARITY_PARAMS)")
	cmd.PersistentFlags().StringVar(&opts.Caller, "as", "", "identity running the transition (env SOLIDARITY_CALLER)")

	// Transitions
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewActivityCommand(opts))
	cmd.AddCommand(NewStrikeCommand(opts))
	cmd.AddCommand(NewCoopCommand(opts))
	cmd.AddCommand(NewProposalCommand(opts))
	cmd.AddCommand(NewUbiCommand(opts))
	cmd.AddCommand(NewDecayCommand(opts))
	cmd.AddCommand(NewMedianCommand(opts))
	cmd.AddCommand(NewInvokeCommand(opts))

	// Queries and verification
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup fills unset flags from the environment, installs the logger and
// starts tracing.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("db") {
		o.Database = cfg.DB
	}
	if !flags.Changed("params") {
		o.Params = cfg.Params
	}
	if !flags.Changed("as") {
		o.Caller = cfg.Caller
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	shutdown, err := otel.Setup(cmd.Context(), serviceName, otel.Options{
		Endpoint: cfg.OTelEndpoint,
		Enabled:  cfg.OTelEnabled,
	})
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}
	o.shutdown = shutdown
	return nil
}

// Close flushes telemetry started by setup.
func (o *RootOptions) Close(ctx context.Context) error {
	if o.shutdown == nil {
		return nil
	}
	err := o.shutdown(ctx)
	o.shutdown = nil
	return err
}

// formatter returns an OutputFormatter bound to cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if cerr := opts.Close(ctx); cerr != nil {
		slog.Warn("tracing shutdown failed", "error", cerr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
