package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code identifies a failure category. Codes are stable and appear verbatim
// in the transition journal and CLI output.
type Code string

const (
	// Validation failures.
	CodeDescriptionTooLong  Code = "DESCRIPTION_TOO_LONG"
	CodeTitleTooLong        Code = "TITLE_TOO_LONG"
	CodeCompanyTooLong      Code = "COMPANY_TOO_LONG"
	CodeBusinessPlanTooLong Code = "BUSINESS_PLAN_TOO_LONG"
	CodeAddressTooLong      Code = "ADDRESS_TOO_LONG"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeAlreadyVerified     Code = "ALREADY_VERIFIED"
	CodeActivityNotPending  Code = "ACTIVITY_NOT_PENDING"
	CodeProposalNotActive   Code = "PROPOSAL_NOT_ACTIVE"
	CodeDeadlinePassed      Code = "VOTING_DEADLINE_PASSED"
	CodeAlreadyVoted        Code = "ALREADY_VOTED"
	CodeUserNotActive       Code = "USER_NOT_ACTIVE"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeCapacityExceeded    Code = "CAPACITY_EXCEEDED"

	// Arithmetic failures.
	CodeOverflow  Code = "ARITHMETIC_OVERFLOW"
	CodeUnderflow Code = "ARITHMETIC_UNDERFLOW"

	// Storage failures raised by the host but reported with the same type.
	CodeNotFound        Code = "NOT_FOUND"
	CodeRecordExists    Code = "RECORD_EXISTS"
	CodeVersionConflict Code = "VERSION_CONFLICT"

	// CodeInternal marks errors that did not originate as an *Error.
	CodeInternal Code = "INTERNAL"
)

var messages = map[Code]string{
	CodeDescriptionTooLong:  "Description is too long.",
	CodeTitleTooLong:        "Title is too long.",
	CodeCompanyTooLong:      "Company name is too long.",
	CodeBusinessPlanTooLong: "Business plan is too long.",
	CodeAddressTooLong:      "Address is too long.",
	CodeInvalidArgument:     "Invalid argument.",
	CodeAlreadyVerified:     "User has already verified this activity.",
	CodeActivityNotPending:  "Activity is not in pending status.",
	CodeProposalNotActive:   "Proposal is not active.",
	CodeDeadlinePassed:      "Voting deadline has passed.",
	CodeAlreadyVoted:        "User has already voted on this proposal.",
	CodeUserNotActive:       "User is not active enough to receive UBI.",
	CodeUnauthorized:        "Unauthorized operation.",
	CodeCapacityExceeded:    "Collection capacity exhausted.",
	CodeOverflow:            "Arithmetic overflow.",
	CodeUnderflow:           "Arithmetic underflow.",
	CodeNotFound:            "Record not found.",
	CodeRecordExists:        "Record already exists.",
	CodeVersionConflict:     "Record version conflict.",
	CodeInternal:            "Internal error.",
}

// Error is a named transition failure. Any Error aborts the whole
// transition; nothing in the core recovers from one locally.
type Error struct {
	// Code identifies the failure category.
	Code Code

	// Message is the human-readable text shown to callers.
	Message string

	// Details carries structured context (limits, identities, keys).
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + e.Details[k]
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(parts, ", "))
}

// Is matches any *Error with the same code, so the sentinels below work
// with errors.Is regardless of details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is checks.
var (
	ErrDescriptionTooLong = &Error{Code: CodeDescriptionTooLong, Message: messages[CodeDescriptionTooLong]}
	ErrTitleTooLong       = &Error{Code: CodeTitleTooLong, Message: messages[CodeTitleTooLong]}
	ErrAlreadyVerified    = &Error{Code: CodeAlreadyVerified, Message: messages[CodeAlreadyVerified]}
	ErrActivityNotPending = &Error{Code: CodeActivityNotPending, Message: messages[CodeActivityNotPending]}
	ErrProposalNotActive  = &Error{Code: CodeProposalNotActive, Message: messages[CodeProposalNotActive]}
	ErrDeadlinePassed     = &Error{Code: CodeDeadlinePassed, Message: messages[CodeDeadlinePassed]}
	ErrAlreadyVoted       = &Error{Code: CodeAlreadyVoted, Message: messages[CodeAlreadyVoted]}
	ErrUserNotActive      = &Error{Code: CodeUserNotActive, Message: messages[CodeUserNotActive]}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Message: messages[CodeUnauthorized]}
	ErrCapacityExceeded   = &Error{Code: CodeCapacityExceeded, Message: messages[CodeCapacityExceeded]}
	ErrOverflow           = &Error{Code: CodeOverflow, Message: messages[CodeOverflow]}
	ErrUnderflow          = &Error{Code: CodeUnderflow, Message: messages[CodeUnderflow]}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: messages[CodeNotFound]}
	ErrRecordExists       = &Error{Code: CodeRecordExists, Message: messages[CodeRecordExists]}
	ErrVersionConflict    = &Error{Code: CodeVersionConflict, Message: messages[CodeVersionConflict]}
)

// NewError builds an Error with the standard message for code.
// details is read as alternating key/value pairs.
func NewError(code Code, details ...string) *Error {
	msg, ok := messages[code]
	if !ok {
		msg = string(code)
	}
	e := &Error{Code: code, Message: msg}
	if len(details) > 1 {
		e.Details = make(map[string]string, len(details)/2)
		for i := 0; i+1 < len(details); i += 2 {
			e.Details[details[i]] = details[i+1]
		}
	}
	return e
}

// CodeOf returns the code carried by err, CodeInternal for foreign errors,
// and "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return CodeInternal
}

// MessageOf returns the human-readable message for err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var le *Error
	if errors.As(err, &le) {
		return le.Message
	}
	return err.Error()
}
