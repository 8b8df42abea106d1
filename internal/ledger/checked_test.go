package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISqrt_KnownValues(t *testing.T) {
	cases := map[uint64]uint64{
		0:              0,
		1:              1,
		2:              1,
		3:              1,
		4:              2,
		99:             9,
		100:            10,
		101:            10,
		1_000_000:      1000,
		math.MaxUint64: 4294967295,
	}
	for n, want := range cases {
		assert.Equal(t, want, ISqrt(n), "ISqrt(%d)", n)
	}
}

func TestISqrt_FloorProperty(t *testing.T) {
	for n := uint64(0); n < 5000; n++ {
		r := ISqrt(n)
		assert.LessOrEqual(t, r*r, n, "r^2 <= n for n=%d", n)
		assert.Greater(t, (r+1)*(r+1), n, "(r+1)^2 > n for n=%d", n)
	}
}

func TestAdd_Overflow(t *testing.T) {
	_, err := add("tokens_earned", math.MaxUint64, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverflow))

	var le *Error
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "tokens_earned", le.Details["field"])
}

func TestSub_Underflow(t *testing.T) {
	_, err := sub("tokens_earned", 1, 2)
	assert.True(t, errors.Is(err, ErrUnderflow))

	v, err := sub("tokens_earned", 5, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
}

func TestMul_Overflow(t *testing.T) {
	_, err := mul("reward_amount", math.MaxUint64/2, 3)
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestInc32_Overflow(t *testing.T) {
	_, err := inc32("verification_count", math.MaxUint32)
	assert.True(t, errors.Is(err, ErrOverflow))
}
