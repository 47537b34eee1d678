package bitmath

import (
	"errors"

	"lukechampine.com/uint128"
)

// ErrInputIsZero rejects a zero word; it has no set bit.
var ErrInputIsZero = errors.New("input must be greater than zero")

// MostSignificantBit is the position of the highest set bit of x, counting
// from 0 at the low end: 2**msb <= x < 2**(msb+1).
func MostSignificantBit(x uint128.Uint128) (uint8, error) {
	if x.IsZero() {
		return 0, ErrInputIsZero
	}
	return uint8(x.Len() - 1), nil
}

// LeastSignificantBit is the position of the lowest set bit of x.
func LeastSignificantBit(x uint128.Uint128) (uint8, error) {
	if x.IsZero() {
		return 0, ErrInputIsZero
	}
	return uint8(x.TrailingZeros()), nil
}
