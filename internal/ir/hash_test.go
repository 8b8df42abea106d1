package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordKey_Deterministic(t *testing.T) {
	k1, err := RecordKey("activity", "alice", 7)
	require.NoError(t, err)
	k2, err := RecordKey("activity", "alice", 7)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "activity:"))
	assert.Len(t, k1, len("activity:")+32)
}

func TestRecordKey_ChangesWithInput(t *testing.T) {
	base, _ := RecordKey("activity", "alice", 7)
	other, _ := RecordKey("activity", "bob", 7)
	later, _ := RecordKey("activity", "alice", 8)
	kind, _ := RecordKey("strike", "alice", 7)

	assert.NotEqual(t, base, other)
	assert.NotEqual(t, base, later)
	assert.NotEqual(t, strings.TrimPrefix(base, "activity:"), strings.TrimPrefix(kind, "strike:"))
}

func TestProfileKey_OnePerIdentity(t *testing.T) {
	assert.Equal(t, ProfileKey("alice"), ProfileKey("alice"))
	assert.NotEqual(t, ProfileKey("alice"), ProfileKey("bob"))
	assert.True(t, strings.HasPrefix(ProfileKey("alice"), "profile:"))
}

func TestProfileKey_CanonicalEquivalentIdentitiesCollide(t *testing.T) {
	// Canonical encoding normalizes to NFC and replaces invalid UTF-8, so
	// these pairs share a key. ledger.Identity.Validate admits only the
	// first spelling of each, which keeps one profile per stored identity.
	assert.Equal(t, ProfileKey("caf\u00e9"), ProfileKey("cafe\u0301"))
	assert.Equal(t, ProfileKey("\xff"), ProfileKey("\xfe"))
}

func TestProfileKey_DistinctNormalizedIdentities(t *testing.T) {
	ids := []string{"caf\u00e9", "cafe", "caf\u00c9", "\u00e9", "e\u00e9"}
	seen := make(map[string]string, len(ids))
	for _, id := range ids {
		key := ProfileKey(id)
		prev, dup := seen[key]
		assert.False(t, dup, "%q and %q share key %s", prev, id, key)
		seen[key] = id
	}
}

func TestTransitionID_Stable(t *testing.T) {
	args := IRObject{"amount": IRUint(500)}
	id1 := MustTransitionID("supportStrike", "alice", args, 3, 1000)
	id2 := MustTransitionID("supportStrike", "alice", args, 3, 1000)
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")

	assert.NotEqual(t, id1, MustTransitionID("supportStrike", "alice", args, 4, 1000))
	assert.NotEqual(t, id1, MustTransitionID("supportStrike", "alice", args, 3, 1001))
	assert.NotEqual(t, id1, MustTransitionID("supportStrike", "bob", args, 3, 1000))
	assert.NotEqual(t, id1, MustTransitionID("supportStrike", "alice", IRObject{"amount": IRUint(501)}, 3, 1000))
}

func TestTransitionID_NilArgsMatchesEmpty(t *testing.T) {
	assert.Equal(t,
		MustTransitionID("applyTokenDecay", "alice", nil, 1, 1),
		MustTransitionID("applyTokenDecay", "alice", IRObject{}, 1, 1))
}

func TestStateDigest(t *testing.T) {
	entries := []StateEntry{
		{Key: "dao:singleton", Body: IRObject{"active_users": IRUint(1)}},
		{Key: "profile:abc", Body: IRObject{"tokens_earned": IRUint(0)}},
	}
	d1, err := StateDigest(entries)
	require.NoError(t, err)
	d2, err := StateDigest(entries)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	entries[1].Body = IRObject{"tokens_earned": IRUint(1)}
	d3, err := StateDigest(entries)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)

	empty, err := StateDigest(nil)
	require.NoError(t, err)
	assert.Len(t, empty, 64)
}

func TestHashWithDomain_Separation(t *testing.T) {
	data := []byte(`{}`)
	assert.NotEqual(t, hashWithDomain(DomainRecord, data), hashWithDomain(DomainTransition, data))
}
