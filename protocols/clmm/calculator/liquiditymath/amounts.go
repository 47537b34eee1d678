package liquiditymath

import (
	"errors"
	"fmt"

	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/tickmath"
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

var (
	// ErrMaxTokenOverflow is returned when a token amount does not fit in 64 bits.
	ErrMaxTokenOverflow = errors.New("max token overflow")
)

// GetDeltaAmount0Unsigned gets the token0 amount for liquidity over [sqrtA, sqrtB].
//
//	Δx = L * 2^64 * (√P_upper - √P_lower) / (√P_upper * √P_lower)
//
// The bounds may be given in either order.
func GetDeltaAmount0Unsigned(sqrtA, sqrtB, liquidity uint128.Uint128, roundUp bool) (uint64, error) {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	if sqrtA.IsZero() {
		return 0, fmt.Errorf("%w: sqrt price must be greater than zero", bignum.ErrArithmeticPrecondition)
	}

	numerator1 := bignum.ToU256(liquidity)
	numerator1.Lsh(numerator1, 64)
	numerator2 := bignum.ToU256(sqrtB.Sub(sqrtA))
	upper, lower := bignum.ToU256(sqrtB), bignum.ToU256(sqrtA)

	var result *uint256.Int
	if roundUp {
		q, ok := bignum.MulDivCeil256(numerator1, numerator2, upper)
		if !ok {
			return 0, ErrMaxTokenOverflow
		}
		result = bignum.DivRoundingUp256(q, lower)
	} else {
		q, ok := bignum.MulDivFloor256(numerator1, numerator2, upper)
		if !ok {
			return 0, ErrMaxTokenOverflow
		}
		result = q.Div(q, lower)
	}

	if !result.IsUint64() {
		return 0, ErrMaxTokenOverflow
	}
	return result.Uint64(), nil
}

// GetDeltaAmount1Unsigned gets the token1 amount for liquidity over [sqrtA, sqrtB].
//
//	Δy = L * (√P_upper - √P_lower) / 2^64
func GetDeltaAmount1Unsigned(sqrtA, sqrtB, liquidity uint128.Uint128, roundUp bool) (uint64, error) {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}

	mulDiv := bignum.MulDivFloor128
	if roundUp {
		mulDiv = bignum.MulDivCeil128
	}
	result, ok := mulDiv(liquidity, sqrtB.Sub(sqrtA), bignum.Q64)
	if !ok || result.Hi != 0 {
		return 0, ErrMaxTokenOverflow
	}
	return result.Lo, nil
}

// GetDeltaAmount0Signed rounds down when liquidity is removed and up when it is added,
// so rounding always favours the pool.
func GetDeltaAmount0Signed(sqrtA, sqrtB uint128.Uint128, liquidity bignum.I128) (uint64, error) {
	return GetDeltaAmount0Unsigned(sqrtA, sqrtB, liquidity.Abs(), !liquidity.IsNeg())
}

// GetDeltaAmount1Signed is the token1 counterpart of GetDeltaAmount0Signed.
func GetDeltaAmount1Signed(sqrtA, sqrtB uint128.Uint128, liquidity bignum.I128) (uint64, error) {
	return GetDeltaAmount1Unsigned(sqrtA, sqrtB, liquidity.Abs(), !liquidity.IsNeg())
}

// GetDeltaAmountsSigned returns the token amounts owed for a liquidity change
// over [tickLower, tickUpper] given the current pool tick and price.
func GetDeltaAmountsSigned(
	tickCurrent int32,
	sqrtPriceCurrent uint128.Uint128,
	tickLower int32,
	tickUpper int32,
	liquidityDelta bignum.I128,
) (amount0 uint64, amount1 uint64, err error) {
	sqrtLower, err := tickmath.GetSqrtPriceAtTick(tickLower)
	if err != nil {
		return 0, 0, err
	}
	sqrtUpper, err := tickmath.GetSqrtPriceAtTick(tickUpper)
	if err != nil {
		return 0, 0, err
	}

	switch {
	case tickCurrent < tickLower:
		// range sits above the price, only token0 is needed
		amount0, err = GetDeltaAmount0Signed(sqrtLower, sqrtUpper, liquidityDelta)
	case tickCurrent < tickUpper:
		amount0, err = GetDeltaAmount0Signed(sqrtPriceCurrent, sqrtUpper, liquidityDelta)
		if err != nil {
			return 0, 0, err
		}
		amount1, err = GetDeltaAmount1Signed(sqrtLower, sqrtPriceCurrent, liquidityDelta)
	default:
		amount1, err = GetDeltaAmount1Signed(sqrtLower, sqrtUpper, liquidityDelta)
	}
	if err != nil {
		return 0, 0, err
	}
	return amount0, amount1, nil
}
