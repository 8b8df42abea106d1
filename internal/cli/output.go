package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/solidarity/internal/engine"
	"github.com/roach88/solidarity/internal/ir"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Ledger rejected the transition, scenarios failed, replay diverged
	ExitCommandError = 2 // Command error (bad flags, unreadable database, storage failure)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Errors that are not ExitErrors are command errors: flag parsing and
// argument validation fail before any ledger work happens.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`             // "ok" or "error"
	Data    any       `json:"data,omitempty"`     // success payload
	Error   *CLIError `json:"error,omitempty"`    // error details
	TraceID string    `json:"trace_id,omitempty"` // transition id, when one was journaled
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // ledger code such as "ALREADY_VOTED", or an E_* command code
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Receipt outputs a transition receipt. A failed transition is reported
// as an error envelope and returns an ExitFailure error.
func (f *OutputFormatter) Receipt(r engine.Receipt) error {
	if f.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: r, TraceID: r.TransitionID}
		if !r.OK() {
			resp.Status = "error"
			resp.Error = &CLIError{Code: r.Code, Message: r.Message, Details: r.Result}
		}
		if err := f.encode(resp); err != nil {
			return err
		}
	} else {
		f.receiptText(r)
	}

	if !r.OK() {
		return WrapExitError(ExitFailure, fmt.Sprintf("%s rejected", r.Kind), r.Err())
	}
	return nil
}

func (f *OutputFormatter) receiptText(r engine.Receipt) {
	w := f.Writer
	if r.OK() {
		fmt.Fprintf(w, "✓ %s committed at seq %d\n", r.Kind, r.Seq)
	} else {
		fmt.Fprintf(w, "✗ %s failed at seq %d: [%s] %s\n", r.Kind, r.Seq, r.Code, r.Message)
	}
	writeFields(w, "  ", r.Result)
	if f.Verbose {
		fmt.Fprintf(w, "  transition: %s\n", r.TransitionID)
		fmt.Fprintf(w, "  request:    %s\n", r.RequestID)
		if len(r.Keys) > 0 {
			fmt.Fprintf(w, "  keys:       %s\n", strings.Join(r.Keys, ", "))
		}
	}
}

// writeFields prints an object one field per line in key order.
func writeFields(w io.Writer, indent string, obj ir.IRObject) {
	for _, k := range obj.SortedKeys() {
		fmt.Fprintf(w, "%s%s: %s\n", indent, k, formatValue(obj[k]))
	}
}

func formatValue(v ir.IRValue) string {
	if s, ok := v.(ir.IRString); ok {
		return string(s)
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
