package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRecord     = "solidarity/record/v1"
	DomainTransition = "solidarity/transition/v1"
	DomainState      = "solidarity/state/v1"
)

// DaoKey is the fixed key of the singleton DAO record.
const DaoKey = "dao:singleton"

// keyHashLen is the number of hex characters kept in record keys.
const keyHashLen = 32

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordKey derives the key of a record created by owner at sequence seq.
// Two records of the same kind can never share a key because seq is unique
// per transition.
func RecordKey(kind, owner string, seq int64) (string, error) {
	canonical, err := MarshalCanonical(IRObject{
		"kind":  IRString(kind),
		"owner": IRString(owner),
		"seq":   IRInt(seq),
	})
	if err != nil {
		return "", fmt.Errorf("RecordKey: failed to marshal: %w", err)
	}
	return kind + ":" + hashWithDomain(DomainRecord, canonical)[:keyHashLen], nil
}

// ProfileKey derives the key of owner's profile. It omits seq so each
// identity maps to exactly one profile.
func ProfileKey(owner string) string {
	canonical, err := MarshalCanonical(IRObject{
		"kind":  IRString("profile"),
		"owner": IRString(owner),
	})
	if err != nil {
		// Only strings are marshaled; this cannot fail.
		panic(err)
	}
	return "profile:" + hashWithDomain(DomainRecord, canonical)[:keyHashLen]
}

// TransitionID computes the content-addressed ID of a journaled transition.
// The ID is stable across replays given the same inputs. The request ID is
// deliberately excluded so a replay under fresh request IDs matches.
func TransitionID(kind, caller string, args IRValue, seq, now int64) (string, error) {
	if args == nil {
		args = IRObject{}
	}
	canonical, err := MarshalCanonical(IRObject{
		"kind":   IRString(kind),
		"caller": IRString(caller),
		"args":   args,
		"seq":    IRInt(seq),
		"now":    IRInt(now),
	})
	if err != nil {
		return "", fmt.Errorf("TransitionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTransition, canonical), nil
}

// StateEntry is one record as seen by StateDigest.
type StateEntry struct {
	Key  string
	Body IRValue
}

// StateDigest hashes a full snapshot of the ledger. entries must already be
// ordered by key; the caller (the store) reads them in key order.
func StateDigest(entries []StateEntry) (string, error) {
	arr := make(IRArray, len(entries))
	for i, e := range entries {
		arr[i] = IRObject{"key": IRString(e.Key), "body": e.Body}
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("StateDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// MustTransitionID is like TransitionID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTransitionID(kind, caller string, args IRValue, seq, now int64) string {
	id, err := TransitionID(kind, caller, args, seq, now)
	if err != nil {
		panic(err)
	}
	return id
}
