// Package engine admits ledger transitions and commits them one at a time.
//
// Single-Writer Loop:
// Every transition passes through one writer. Callers either Submit a
// request to the queue drained by Run, or call Apply directly; both paths
// take the same writer lock, so at most one transition is in flight.
//
// Transition Flow:
//  1. Stamp the request with the next seq (Clock) and a trusted now (TimeSource)
//  2. Decode the JSON args into the typed input for the kind
//  3. Run the ledger rule inside one store transaction
//  4. Journal the outcome; failures are journaled without touching records
//
// Logical Clock:
// seq is the only ordering. It resumes from the journal on startup, and now
// never moves backwards even if the wall clock does.
//
// Replay:
// The journal carries seq, now, caller and canonical args for every
// transition, failed ones included. Replay feeds them back through the
// same dispatch on an empty store and compares outcomes and state digests.
package engine
