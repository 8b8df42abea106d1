package ledger

import (
	"math/bits"
	"strconv"
)

// add returns a+b or ARITHMETIC_OVERFLOW naming the field being updated.
func add(field string, a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, NewError(CodeOverflow, "field", field,
			"value", strconv.FormatUint(a, 10), "delta", strconv.FormatUint(b, 10))
	}
	return sum, nil
}

// sub returns a-b or ARITHMETIC_UNDERFLOW.
func sub(field string, a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, NewError(CodeUnderflow, "field", field,
			"value", strconv.FormatUint(a, 10), "delta", strconv.FormatUint(b, 10))
	}
	return diff, nil
}

// mul returns a*b or ARITHMETIC_OVERFLOW.
func mul(field string, a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, NewError(CodeOverflow, "field", field,
			"lhs", strconv.FormatUint(a, 10), "rhs", strconv.FormatUint(b, 10))
	}
	return lo, nil
}

// inc32 increments a uint32 counter.
func inc32(field string, v uint32) (uint32, error) {
	if v == ^uint32(0) {
		return 0, NewError(CodeOverflow, "field", field)
	}
	return v + 1, nil
}

// ISqrt returns floor(sqrt(n)) using integer Newton iteration.
//
// The result is identical on every platform; floating point is never
// involved. The starting guess 2^ceil(len/2) is always >= sqrt(n), so the
// sequence decreases monotonically until it settles.
func ISqrt(n uint64) uint64 {
	if n < 2 {
		return n
	}
	x := uint64(1) << ((bits.Len64(n) + 1) / 2)
	for {
		y := (x + n/x) / 2
		if y >= x {
			return x
		}
		x = y
	}
}
