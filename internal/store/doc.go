// Package store provides SQLite-backed durable storage for the ledger.
//
// The store holds two things:
//   - Records: keyed, versioned ledger records (DAO, profiles, activities,
//     strikes, coops, proposals) stored as canonical JSON
//   - Transitions: the append-only journal of every admitted transition,
//     successful or not
//
// # Atomicity
//
// A transition's record writes and its journal entry share one SQLite
// transaction (see Store.Update). Either all of them land or none do.
// Updates carry the version the caller read; a mismatch fails with
// VERSION_CONFLICT and rolls the transaction back.
//
// # Deterministic Reads
//
// Every list query orders by created_seq then key, and the journal orders
// by seq, so two stores built from the same journal read back identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
