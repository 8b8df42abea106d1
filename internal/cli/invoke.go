package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/solidarity/internal/engine"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Args string
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <kind>",
		Short: "Submit any transition with raw JSON arguments",
		Long: `Submit a transition by kind with its arguments as a JSON object.
Useful for scripting and for kinds without a dedicated command.

Example:
  solidarity invoke voteOnProposal --as bob \
    --args '{"proposal":"proposal:3f2a...","vote":true,"token_amount":100}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeTransition(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "transition arguments as JSON")

	return cmd
}

func invokeTransition(opts *InvokeOptions, kind string, cmd *cobra.Command) error {
	if !slices.Contains(engine.Kinds, kind) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown kind %q: must be one of %v", kind, engine.Kinds))
	}
	if !json.Valid([]byte(opts.Args)) {
		return NewExitError(ExitCommandError, "invalid --args JSON")
	}
	return runTransition(cmd, opts.RootOptions, kind, json.RawMessage(opts.Args))
}
