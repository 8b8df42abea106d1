package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// cliEnv pins the environment so a developer's SOLIDARITY_* settings do not
// leak into command tests.
func cliEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SOLIDARITY_PARAMS", "")
	t.Setenv("SOLIDARITY_CALLER", "")
	t.Setenv("SOLIDARITY_LOG_LEVEL", "warn")
	t.Setenv("SOLIDARITY_OTEL_ENABLED", "false")
}

// runCLI executes the CLI and returns its exit code and output streams.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// mustRun executes the CLI and requires exit code want.
func mustRun(t *testing.T, want int, args ...string) string {
	t.Helper()
	code, stdout, stderr := runCLI(t, args...)
	require.Equal(t, want, code, "args=%v\nstdout:\n%s\nstderr:\n%s", args, stdout, stderr)
	return stdout
}

// seededLedger returns a database with an initialized ledger, one union
// member who has received UBI, and one rejected median publication.
func seededLedger(t *testing.T) string {
	t.Helper()
	cliEnv(t)
	db := filepath.Join(t.TempDir(), "ledger.db")
	mustRun(t, ExitSuccess, "init", "--db", db, "--as", "treasurer")
	mustRun(t, ExitSuccess, "register", "--db", db, "--as", "alice", "--union")
	mustRun(t, ExitSuccess, "ubi", "--db", db, "--as", "alice")
	mustRun(t, ExitFailure, "median", "5", "--db", db, "--as", "mallory")
	return db
}

// decodeResponse parses a JSON envelope, keeping numbers exact.
func decodeResponse(t *testing.T, out string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewBufferString(out))
	dec.UseNumber()
	var resp map[string]any
	require.NoError(t, dec.Decode(&resp), "output: %s", out)
	return resp
}
