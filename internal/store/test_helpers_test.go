package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/solidarity/internal/ir"
)

// createTestStore creates a new temporary store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTransition creates a journal entry with minimal required fields.
func createTestTransition(seq int64, kind, outcome string) ir.Transition {
	return ir.Transition{
		Seq:           seq,
		ID:            ir.MustTransitionID(kind, "alice", ir.IRObject{}, seq, 1000+seq),
		RequestID:     "req-" + kind,
		Kind:          kind,
		Caller:        "alice",
		Now:           1000 + seq,
		Args:          ir.IRObject{},
		Outcome:       outcome,
		Result:        ir.IRObject{},
		Keys:          []string{},
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

type testRecord struct {
	Owner   string `json:"owner"`
	Status  string `json:"status,omitempty"`
	Creator string `json:"creator,omitempty"`
	Amount  uint64 `json:"amount"`
}
