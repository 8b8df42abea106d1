package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
)

// Record is a stored record with its bookkeeping columns.
type Record struct {
	Key        string `json:"key"`
	Kind       string `json:"kind"`
	Version    int64  `json:"version"`
	Body       string `json:"body"`
	CreatedSeq int64  `json:"created_seq"`
	UpdatedSeq int64  `json:"updated_seq"`
}

// Decode unmarshals the record body into out.
func (r Record) Decode(out any) error {
	return unmarshalBody(r.Body, out)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getRecord loads the record at key into out. A record of another kind is
// reported as NOT_FOUND, so a caller-supplied key can never decode into, or
// later overwrite, a record of the wrong kind.
func getRecord(ctx context.Context, db queryRower, key, kind string, out any) (int64, error) {
	var (
		version int64
		body    string
	)
	err := db.QueryRowContext(ctx, `
		SELECT version, body FROM records WHERE key = ? AND kind = ?
	`, key, kind).Scan(&version, &body)
	if err == sql.ErrNoRows {
		return 0, ledger.NewError(ledger.CodeNotFound, "key", key, "kind", kind)
	}
	if err != nil {
		return 0, fmt.Errorf("get record %s: %w", key, err)
	}
	if err := unmarshalBody(body, out); err != nil {
		return 0, fmt.Errorf("get record %s: %w", key, err)
	}
	return version, nil
}

// Get loads the record of the given kind at key into out outside any
// transition.
func (s *Store) Get(ctx context.Context, key, kind string, out any) (int64, error) {
	return getRecord(ctx, s.db, key, kind, out)
}

// GetRecord returns the raw record at key.
func (s *Store) GetRecord(ctx context.Context, key string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, kind, version, body, created_seq, updated_seq
		FROM records WHERE key = ?
	`, key)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, ledger.NewError(ledger.CodeNotFound, "key", key)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get record %s: %w", key, err)
	}
	return r, nil
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Kind   string
	Status string
	Owner  string // matches creator (or owner, for profiles)
	Limit  int
}

// List returns records ordered by creation sequence then key.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Record, error) {
	query := `
		SELECT key, kind, version, body, created_seq, updated_seq
		FROM records
		WHERE (? = '' OR kind = ?)
		  AND (? = '' OR json_extract(body, '$.status') = ?)
		  AND (? = '' OR json_extract(body, '$.creator') = ? OR json_extract(body, '$.owner') = ?)
		ORDER BY created_seq ASC, key COLLATE BINARY ASC
	`
	args := []any{f.Kind, f.Kind, f.Status, f.Status, f.Owner, f.Owner, f.Owner}
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	err := row.Scan(&r.Key, &r.Kind, &r.Version, &r.Body, &r.CreatedSeq, &r.UpdatedSeq)
	return r, err
}

// Stats summarizes the records held by the store.
type Stats struct {
	Records     int64            `json:"records"`
	ByKind      map[string]int64 `json:"by_kind"`
	ByStatus    map[string]int64 `json:"by_status"` // "kind/status"
	Transitions int64            `json:"transitions"`
	Failed      int64            `json:"failed"`
	LastSeq     int64            `json:"last_seq"`
}

// Stats counts records by kind and by kind/status, plus journal totals.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByKind: map[string]int64{}, ByStatus: map[string]int64{}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COALESCE(json_extract(body, '$.status'), ''), COUNT(*)
		FROM records
		GROUP BY 1, 2
		ORDER BY 1, 2
	`)
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			kind, status string
			n            int64
		)
		if err := rows.Scan(&kind, &status, &n); err != nil {
			return st, fmt.Errorf("stats: %w", err)
		}
		st.Records += n
		st.ByKind[kind] += n
		if status != "" {
			st.ByStatus[kind+"/"+status] = n
		}
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(outcome = 'failed'), 0), COALESCE(MAX(seq), 0)
		FROM transitions
	`).Scan(&st.Transitions, &st.Failed, &st.LastSeq)
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// StateDigest hashes every record body in key order. Two stores with equal
// digests hold identical ledger state; versions and seqs are excluded so a
// replay that commits the same content matches.
func (s *Store) StateDigest(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, body FROM records ORDER BY key COLLATE BINARY ASC`)
	if err != nil {
		return "", fmt.Errorf("state digest: %w", err)
	}
	defer rows.Close()

	var entries []ir.StateEntry
	for rows.Next() {
		var key, body string
		if err := rows.Scan(&key, &body); err != nil {
			return "", fmt.Errorf("state digest: %w", err)
		}
		v, err := ir.FromJSON([]byte(body))
		if err != nil {
			return "", fmt.Errorf("state digest %s: %w", key, err)
		}
		entries = append(entries, ir.StateEntry{Key: key, Body: v})
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("state digest: %w", err)
	}
	return ir.StateDigest(entries)
}
