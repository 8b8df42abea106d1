package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
)

func TestUpdate_InsertAndGet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, 1, func(tx *Tx) error {
		return tx.Insert(ctx, "profile:a", "profile", testRecord{Owner: "alice", Amount: math.MaxUint64})
	})
	require.NoError(t, err)

	var got testRecord
	version, err := s.Get(ctx, "profile:a", "profile", &got)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, uint64(math.MaxUint64), got.Amount, "uint64 survives storage")

	r, err := s.GetRecord(ctx, "profile:a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.CreatedSeq)
	assert.Equal(t, `{"amount":18446744073709551615,"owner":"alice"}`, r.Body, "body is canonical JSON")
}

func TestInsert_DuplicateKey(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, 1, func(tx *Tx) error {
		return tx.Insert(ctx, "k", "profile", testRecord{Owner: "a"})
	}))

	err := s.Update(ctx, 2, func(tx *Tx) error {
		return tx.Insert(ctx, "k", "profile", testRecord{Owner: "b"})
	})
	assert.True(t, errors.Is(err, ledger.ErrRecordExists))
}

func TestUpdate_VersionCheck(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, 1, func(tx *Tx) error {
		return tx.Insert(ctx, "k", "profile", testRecord{Owner: "a"})
	}))

	require.NoError(t, s.Update(ctx, 2, func(tx *Tx) error {
		var r testRecord
		v, err := tx.Get(ctx, "k", "profile", &r)
		if err != nil {
			return err
		}
		r.Amount = 5
		return tx.Update(ctx, "k", v, r)
	}))

	err := s.Update(ctx, 3, func(tx *Tx) error {
		return tx.Update(ctx, "k", 1, testRecord{Owner: "stale"})
	})
	assert.True(t, errors.Is(err, ledger.ErrVersionConflict))

	rec, err := s.GetRecord(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Version)
	assert.Equal(t, int64(2), rec.UpdatedSeq)
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Update(ctx, 1, func(tx *Tx) error {
		if err := tx.Insert(ctx, "a", "profile", testRecord{Owner: "a"}); err != nil {
			return err
		}
		if err := tx.WriteTransition(ctx, createTestTransition(1, "registerUser", ir.OutcomeOK)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetRecord(ctx, "a")
	assert.True(t, errors.Is(err, ledger.ErrNotFound), "insert rolled back")

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Zero(t, seq, "journal entry rolled back")
}

func TestGet_NotFound(t *testing.T) {
	s := createTestStore(t)
	var r testRecord
	_, err := s.Get(context.Background(), "missing", "profile", &r)
	assert.Equal(t, ledger.CodeNotFound, ledger.CodeOf(err))
}

func TestGet_WrongKindIsNotFound(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, 1, func(tx *Tx) error {
		return tx.Insert(ctx, "dao:singleton", "dao", testRecord{Owner: "authority"})
	}))

	var r testRecord
	_, err := s.Get(ctx, "dao:singleton", "coop", &r)
	assert.True(t, errors.Is(err, ledger.ErrNotFound))

	err = s.Update(ctx, 2, func(tx *Tx) error {
		_, err := tx.Get(ctx, "dao:singleton", "proposal", &r)
		return err
	})
	assert.True(t, errors.Is(err, ledger.ErrNotFound))

	v, err := s.Get(ctx, "dao:singleton", "dao", &r)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, "authority", r.Owner)
}

func TestWriteTransition_DuplicateSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteTransition(ctx, createTestTransition(1, "initialize", ir.OutcomeOK)))
	err := s.WriteTransition(ctx, createTestTransition(1, "registerUser", ir.OutcomeOK))
	assert.True(t, errors.Is(err, ledger.ErrRecordExists))
}
