package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitions_CommitAndReject(t *testing.T) {
	cliEnv(t)
	db := filepath.Join(t.TempDir(), "ledger.db")

	out := mustRun(t, ExitSuccess, "init", "--db", db, "--as", "treasurer")
	assert.Contains(t, out, "✓ initialize committed at seq 1")

	out = mustRun(t, ExitSuccess, "register", "--db", db, "--as", "alice", "--union")
	assert.Contains(t, out, "✓ registerUser committed at seq 2")

	out = mustRun(t, ExitSuccess, "ubi", "--db", db, "--as", "alice")
	assert.Contains(t, out, "✓ distributeUbi committed at seq 3")
	assert.Contains(t, out, "amount: 10000000000")

	code, out, stderr := runCLI(t, "median", "5", "--db", db, "--as", "mallory")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "✗ publishMedian failed at seq 4: [UNAUTHORIZED]")
	assert.Contains(t, stderr, "publishMedian rejected")
}

func TestTransitions_DuplicateRegistration(t *testing.T) {
	db := seededLedger(t)

	code, out, _ := runCLI(t, "register", "--db", db, "--as", "alice")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "[RECORD_EXISTS]")
}

func TestTransitions_RequireCaller(t *testing.T) {
	cliEnv(t)
	db := filepath.Join(t.TempDir(), "ledger.db")

	code, _, stderr := runCLI(t, "init", "--db", db)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "--as (or SOLIDARITY_CALLER) is required")
}

func TestTransitions_ActivityCreateJSON(t *testing.T) {
	db := seededLedger(t)

	out := mustRun(t, ExitSuccess, "activity", "create", "--db", db, "--as", "alice",
		"--category", "elderly", "--description", "groceries",
		"--lat", "-33.8688", "--lon", "151.2093", "--address", "12 Union St",
		"--hours", "4", "--format", "json")

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["trace_id"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, "createActivity", data["kind"])
	assert.Equal(t, "ok", data["outcome"])
	keys := data["keys"].([]any)
	require.NotEmpty(t, keys)
}

func TestTransitions_InvalidCoordinate(t *testing.T) {
	db := seededLedger(t)

	code, _, stderr := runCLI(t, "activity", "create", "--db", db, "--as", "alice",
		"--category", "elderly", "--lat", "north")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "lat")
}

func TestTransitions_RejectionJSONEnvelope(t *testing.T) {
	db := seededLedger(t)

	code, out, _ := runCLI(t, "median", "7", "--db", db, "--as", "mallory", "--format", "json")
	assert.Equal(t, ExitFailure, code)

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp["status"])
	errObj := resp["error"].(map[string]any)
	assert.Equal(t, "UNAUTHORIZED", errObj["code"])
}

func TestTransitions_InvalidMedian(t *testing.T) {
	db := seededLedger(t)

	code, _, stderr := runCLI(t, "median", "lots", "--db", db, "--as", "treasurer")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid median")
}

func TestInvoke(t *testing.T) {
	db := seededLedger(t)

	out := mustRun(t, ExitSuccess, "invoke", "registerUser", "--db", db, "--as", "bob",
		"--args", `{"union_membership":false}`)
	assert.Contains(t, out, "✓ registerUser committed at seq 5")
}

func TestInvoke_Errors(t *testing.T) {
	db := seededLedger(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown kind", []string{"invoke", "mint"}, `unknown kind "mint"`},
		{"invalid json", []string{"invoke", "registerUser", "--args", "{nope"}, "invalid --args JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--db", db, "--as", "bob")
			code, _, stderr := runCLI(t, args...)
			assert.Equal(t, ExitCommandError, code)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}
