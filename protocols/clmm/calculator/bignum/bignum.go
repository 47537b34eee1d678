package bignum

import (
	"errors"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

var (
	// ErrArithmeticPrecondition is returned when an operand violates a precondition
	// of an arithmetic routine, such as a zero divisor or a result that does not
	// fit the requested width.
	ErrArithmeticPrecondition = errors.New("arithmetic precondition violated")

	// Q64 is 2^64, the scale of a Q64.64 fixed-point value.
	Q64 = uint128.New(0, 1)
)

// ToU256 widens a 128-bit value.
func ToU256(u uint128.Uint128) *uint256.Int {
	return &uint256.Int{u.Lo, u.Hi, 0, 0}
}

// FromU256 narrows x to 128 bits. ok is false if x does not fit.
func FromU256(x *uint256.Int) (u uint128.Uint128, ok bool) {
	if x[2] != 0 || x[3] != 0 {
		return uint128.Zero, false
	}
	return uint128.New(x[0], x[1]), true
}

func mustNonZero(zero bool) {
	if zero {
		panic("bignum: division by zero")
	}
}

// MulDivFloor128 returns floor(a*num/denom) computed at 256-bit precision.
// ok is false when the quotient does not fit in 128 bits. A zero denom panics.
func MulDivFloor128(a, num, denom uint128.Uint128) (uint128.Uint128, bool) {
	mustNonZero(denom.IsZero())
	p := new(uint256.Int).Mul(ToU256(a), ToU256(num))
	return FromU256(p.Div(p, ToU256(denom)))
}

// MulDivCeil128 returns ceil(a*num/denom) computed at 256-bit precision.
func MulDivCeil128(a, num, denom uint128.Uint128) (uint128.Uint128, bool) {
	mustNonZero(denom.IsZero())
	d := ToU256(denom)
	p := new(uint256.Int).Mul(ToU256(a), ToU256(num))
	q, r := new(uint256.Int).DivMod(p, d, new(uint256.Int))
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return FromU256(q)
}

// MulDivFloor256 returns floor(a*num/denom) computed at 512-bit precision.
// ok is false when the quotient does not fit in 256 bits. A zero denom panics.
func MulDivFloor256(a, num, denom *uint256.Int) (*uint256.Int, bool) {
	mustNonZero(denom.IsZero())
	q, _ := MulU256(a, num).QuoRem(U512FromU256(denom))
	return q.Narrow()
}

// MulDivCeil256 returns ceil(a*num/denom) computed at 512-bit precision.
func MulDivCeil256(a, num, denom *uint256.Int) (*uint256.Int, bool) {
	mustNonZero(denom.IsZero())
	q, r := MulU256(a, num).QuoRem(U512FromU256(denom))
	if !r.IsZero() {
		var carry bool
		if q, carry = q.Add(U512{1}); carry {
			return nil, false
		}
	}
	return q.Narrow()
}

// DivRoundingUp64 returns x/y rounded towards positive infinity.
func DivRoundingUp64(x, y uint64) uint64 {
	mustNonZero(y == 0)
	q := x / y
	if x%y > 0 {
		q++
	}
	return q
}

// DivRoundingUp128 returns x/y rounded towards positive infinity.
func DivRoundingUp128(x, y uint128.Uint128) uint128.Uint128 {
	mustNonZero(y.IsZero())
	q, r := x.QuoRem(y)
	if !r.IsZero() {
		q = q.Add64(1)
	}
	return q
}

// DivRoundingUp256 returns x/y rounded towards positive infinity.
func DivRoundingUp256(x, y *uint256.Int) *uint256.Int {
	mustNonZero(y.IsZero())
	q, r := new(uint256.Int).DivMod(x, y, new(uint256.Int))
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q
}
