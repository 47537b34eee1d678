package liquiditymath

import (
	"errors"

	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"lukechampine.com/uint128"
)

var (
	ErrLiquidityOverflow  = errors.New("liquidity overflow")
	ErrLiquidityUnderflow = errors.New("liquidity underflow")
)

// AddDelta adds a signed liquidity delta to an unsigned liquidity value,
// returning an error if the operation results in an overflow or underflow.
//
// The result must move strictly in the direction of the delta, so a zero
// delta is reported as ErrLiquidityOverflow.
func AddDelta(x uint128.Uint128, y bignum.I128) (uint128.Uint128, error) {
	if y.IsNeg() {
		abs := y.Abs()
		if abs.Cmp(x) > 0 {
			return uint128.Zero, ErrLiquidityUnderflow
		}
		return x.Sub(abs), nil
	}

	z := x.AddWrap(y.Bits())
	if z.Cmp(x) <= 0 {
		return uint128.Zero, ErrLiquidityOverflow
	}
	return z, nil
}
