package ledger

import (
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// boundedText normalizes s to NFC and checks it holds at most limit
// characters. The normalized form is what gets stored, so the length a
// caller sees is the length that was checked.
func boundedText(s string, limit int, code Code) (string, error) {
	if !utf8.ValidString(s) {
		return "", NewError(CodeInvalidArgument, "reason", "text is not valid UTF-8")
	}
	n := norm.NFC.String(s)
	if l := utf8.RuneCountInString(n); l > limit {
		return "", NewError(code, "limit", strconv.Itoa(limit), "length", strconv.Itoa(l))
	}
	return n, nil
}
