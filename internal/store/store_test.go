package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"records", "transitions", "meta"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer s.Close()

	seq, err := s.LastSeq(context.Background())
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("LastSeq() = %d, want 0", seq)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	cases := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1", // NORMAL
		"busy_timeout": "5000",
		"foreign_keys": "1",
		"user_version": "1",
	}
	for name, want := range cases {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestMigration_RequestIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_transitions_request'",
	).Scan(&name)
	if err != nil {
		t.Errorf("request index missing: %v", err)
	}
}

func TestMeta_WriteOnce(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.SetMeta(ctx, "params", `{"quorum":3}`); err != nil {
		t.Fatalf("SetMeta() failed: %v", err)
	}
	if err := s.SetMeta(ctx, "params", `{"quorum":3}`); err != nil {
		t.Errorf("SetMeta() with the same value should succeed: %v", err)
	}
	if err := s.SetMeta(ctx, "params", `{"quorum":4}`); err == nil {
		t.Error("SetMeta() with a different value should fail")
	}

	v, ok, err := s.GetMeta(ctx, "params")
	if err != nil || !ok || v != `{"quorum":3}` {
		t.Errorf("GetMeta() = %q, %v, %v", v, ok, err)
	}

	_, ok, err = s.GetMeta(ctx, "missing")
	if err != nil || ok {
		t.Errorf("GetMeta(missing) = %v, %v", ok, err)
	}
}
