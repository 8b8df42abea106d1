package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
)

// Tx is one atomic unit of record writes plus its journal entry.
type Tx struct {
	tx  *sql.Tx
	seq int64
}

// Update runs fn inside a single SQLite transaction stamped with seq. The
// transaction commits only if fn returns nil; any error rolls back every
// write fn made.
func (s *Store) Update(ctx context.Context, seq int64, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback() // No-op if committed

	if err := fn(&Tx{tx: sqlTx, seq: seq}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Get loads the record of the given kind at key into out and returns its
// version. A missing record, or one of another kind, fails with NOT_FOUND.
func (t *Tx) Get(ctx context.Context, key, kind string, out any) (int64, error) {
	return getRecord(ctx, t.tx, key, kind, out)
}

// Insert creates a new record at version 1. An existing key fails with
// RECORD_EXISTS: keys are never reused.
func (t *Tx) Insert(ctx context.Context, key, kind string, v any) error {
	body, err := marshalBody(v)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO records (key, kind, version, body, created_seq, updated_seq)
		VALUES (?, ?, 1, ?, ?, ?)
	`, key, kind, body, t.seq, t.seq)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.NewError(ledger.CodeRecordExists, "key", key)
		}
		return fmt.Errorf("insert record %s: %w", key, err)
	}
	return nil
}

// Update overwrites the record at key if it is still at version. The stored
// version becomes version+1.
func (t *Tx) Update(ctx context.Context, key string, version int64, v any) error {
	body, err := marshalBody(v)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE records
		SET body = ?, version = version + 1, updated_seq = ?
		WHERE key = ? AND version = ?
	`, body, t.seq, key, version)
	if err != nil {
		return fmt.Errorf("update record %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record %s: %w", key, err)
	}
	if n == 0 {
		return ledger.NewError(ledger.CodeVersionConflict, "key", key, "expected", strconv.FormatInt(version, 10))
	}
	return nil
}

// SetMeta stores a write-once ledger setting inside the transaction.
func (t *Tx) SetMeta(ctx context.Context, name, value string) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO meta (name, value) VALUES (?, ?)`, name, value)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.NewError(ledger.CodeRecordExists, "meta", name)
		}
		return fmt.Errorf("set meta %s: %w", name, err)
	}
	return nil
}

// WriteTransition appends the journal entry inside the same transaction as
// the record writes it describes.
func (t *Tx) WriteTransition(ctx context.Context, tr ir.Transition) error {
	return writeTransition(ctx, t.tx, tr)
}

// WriteTransition appends a journal entry on its own. The engine uses it
// for failed transitions, which never touch records.
func (s *Store) WriteTransition(ctx context.Context, tr ir.Transition) error {
	return writeTransition(ctx, s.db, tr)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writeTransition(ctx context.Context, db execer, tr ir.Transition) error {
	argsJSON, err := marshalObject(tr.Args)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	resultJSON, err := marshalObject(tr.Result)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	keysJSON, err := marshalKeys(tr.Keys)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO transitions
		(seq, id, request_id, kind, caller, now, args, outcome, code, message, result, keys, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tr.Seq,
		tr.ID,
		tr.RequestID,
		tr.Kind,
		tr.Caller,
		tr.Now,
		argsJSON,
		tr.Outcome,
		tr.Code,
		tr.Message,
		resultJSON,
		keysJSON,
		tr.EngineVersion,
		tr.IRVersion,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.NewError(ledger.CodeRecordExists, "seq", strconv.FormatInt(tr.Seq, 10))
		}
		return fmt.Errorf("write transition: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
