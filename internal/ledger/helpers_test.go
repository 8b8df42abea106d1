package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testNow int64 = 1_700_000_000

func newTestDao(t *testing.T) DaoState {
	t.Helper()
	dao, err := NewDaoState(DefaultParams(), "authority")
	require.NoError(t, err)
	return dao
}

func newTestProfile(t *testing.T, owner Identity) UserProfile {
	t.Helper()
	_, prof, err := RegisterUser(DefaultParams(), newTestDao(t), owner, false, testNow)
	require.NoError(t, err)
	return prof
}

func newTestActivity(t *testing.T, c Category, hours uint32) Activity {
	t.Helper()
	_, a, err := CreateActivity(DefaultParams(), newTestDao(t), "creator", ActivityInput{
		Category:       c,
		Description:    "community garden cleanup",
		Location:       Location{LatitudeE6: 40_712_800, LongitudeE6: -74_006_000, Address: "Liz Christy Garden"},
		EstimatedHours: hours,
	}, testNow)
	require.NoError(t, err)
	return a
}
