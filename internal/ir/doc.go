// Package ir provides the canonical value model and content-addressed
// identities shared by the store and the engine.
//
// ir imports nothing internal. Every hash in the ledger (record keys,
// transition ids, state digests) goes through MarshalCanonical so that a
// replay on another machine produces byte-identical identities.
//
// Key design constraints:
//   - NO float types anywhere; balances are uint64, times are int64 seconds
//   - All JSON tags use snake_case
//   - Object keys sort by UTF-16 code units (RFC 8785), strings are NFC
package ir
