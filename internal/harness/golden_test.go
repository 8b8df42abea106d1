package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden_UbiLifecycle(t *testing.T) {
	scenario := loadTestdata(t, "ubi_lifecycle.yaml")
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestSnapshotJSON_OmitsIdentifiers(t *testing.T) {
	result, err := Run(loadTestdata(t, "ubi_lifecycle.yaml"))
	require.NoError(t, err)

	data, err := SnapshotJSON("ubi_lifecycle", result)
	require.NoError(t, err)

	s := string(data)
	assert.NotContains(t, s, "request_id")
	assert.NotContains(t, s, "transition_id")
	assert.NotContains(t, s, `"keys"`)
	assert.Contains(t, s, `"code":"USER_NOT_ACTIVE"`)
}

func TestSnapshotJSON_StableAcrossRuns(t *testing.T) {
	scenario := loadTestdata(t, "governance.yaml")

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := SnapshotJSON(scenario.Name, first)
	require.NoError(t, err)
	b, err := SnapshotJSON(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
