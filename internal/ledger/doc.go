// Package ledger holds the deterministic state-transition rules of the
// solidarity ledger.
//
// Every function here is pure: it receives record values, returns new record
// values, and never performs I/O. A rule either returns a complete new state
// or an *Error and leaves its inputs untouched, so the caller can discard a
// failed transition without cleanup.
//
// The rules are grouped by concern:
//
//   - reward.go: activity reward computation and completion bonuses
//   - verification.go: the three-verifier activity quorum
//   - governance.go: proposals and quadratic vote tallying
//   - solidarity.go: strikes, worker cooperatives, solidarity scores
//   - distribution.go: universal income and wealth decay
//
// Rules never call each other; composition (for example crediting a reward
// once a quorum is reached) is the job of internal/engine.
//
// All arithmetic on balances and counters is overflow-checked, and no
// floating point value ever enters a record.
package ledger
