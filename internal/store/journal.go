package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
)

const transitionColumns = `seq, id, request_id, kind, caller, now, args, outcome, code, message, result, keys, engine_version, ir_version`

// ReadTransitions returns journal entries with seq > afterSeq in seq order.
// limit <= 0 means no limit.
//
// Returns an empty slice (not nil) if the journal has no such entries.
func (s *Store) ReadTransitions(ctx context.Context, afterSeq int64, limit int) ([]ir.Transition, error) {
	query := `SELECT ` + transitionColumns + ` FROM transitions WHERE seq > ? ORDER BY seq ASC`
	args := []any{afterSeq}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	out := []ir.Transition{}
	for rows.Next() {
		tr, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}

// TransitionByRequest returns the journal entry for a request id.
func (s *Store) TransitionByRequest(ctx context.Context, requestID string) (ir.Transition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transitionColumns+` FROM transitions WHERE request_id = ? ORDER BY seq ASC LIMIT 1`, requestID)
	tr, err := scanTransition(row)
	if err == sql.ErrNoRows {
		return ir.Transition{}, ledger.NewError(ledger.CodeNotFound, "request_id", requestID)
	}
	return tr, err
}

// LastSeq returns the highest journaled seq, or 0 for an empty journal.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM transitions`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// LastNow returns the timestamp of the latest journaled transition, or 0.
// The engine uses it to keep time monotonic across restarts.
func (s *Store) LastNow(ctx context.Context) (int64, error) {
	var now int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(now), 0) FROM transitions`).Scan(&now)
	if err != nil {
		return 0, fmt.Errorf("last now: %w", err)
	}
	return now, nil
}

func scanTransition(row scanner) (ir.Transition, error) {
	var (
		tr                         ir.Transition
		argsJSON, resultJSON, keys string
	)
	err := row.Scan(
		&tr.Seq, &tr.ID, &tr.RequestID, &tr.Kind, &tr.Caller, &tr.Now,
		&argsJSON, &tr.Outcome, &tr.Code, &tr.Message, &resultJSON, &keys,
		&tr.EngineVersion, &tr.IRVersion,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return tr, err
		}
		return tr, fmt.Errorf("scan transition: %w", err)
	}
	if tr.Args, err = unmarshalObject(argsJSON); err != nil {
		return tr, fmt.Errorf("transition %d: %w", tr.Seq, err)
	}
	if tr.Result, err = unmarshalObject(resultJSON); err != nil {
		return tr, fmt.Errorf("transition %d: %w", tr.Seq, err)
	}
	if tr.Keys, err = unmarshalKeys(keys); err != nil {
		return tr, fmt.Errorf("transition %d: %w", tr.Seq, err)
	}
	return tr, nil
}
