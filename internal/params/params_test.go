package params

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solidarity/internal/ledger"
)

func TestDefaults_MatchLedgerDefaults(t *testing.T) {
	p, err := Defaults()
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultParams(), p)
}

func TestLoad_EmptyPathIsDefaults(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultParams(), p)
}

func TestLoad_Overrides(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "override.cue"))
	require.NoError(t, err)

	assert.Equal(t, uint32(5), p.Quorum)
	assert.Equal(t, 5, p.Budgets.Verifiers)
	assert.Equal(t, uint64(100), p.Rates.Disaster)
	assert.Equal(t, uint64(40), p.Rates.Environmental, "untouched fields keep defaults")
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "unknown_field.cue"))
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Error(), "quorom")
}

func TestLoad_OutOfRangeRejected(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "out_of_range.cue"))
	require.Error(t, err)
	var ce *CompileError
	assert.True(t, errors.As(err, &ce))
}

func TestLoadBytes_VerifierBudgetBelowQuorum(t *testing.T) {
	_, err := LoadBytes("inline.cue", []byte(`params: quorum: 4`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budgets.verifiers")
}

func TestLoadBytes_ZeroRateAccepted(t *testing.T) {
	p, err := LoadBytes("inline.cue", []byte(`params: rates: elderly: 0`))
	require.NoError(t, err)
	assert.Zero(t, p.Rates.Elderly)

	reward, err := ledger.ComputeBaseReward(p, ledger.CategoryElderly, 4)
	require.NoError(t, err)
	assert.Zero(t, reward)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}

func TestCompileError_Format(t *testing.T) {
	e := &CompileError{Field: "quorum", Message: "must be positive"}
	assert.Equal(t, "quorum: must be positive", e.Error())
}
