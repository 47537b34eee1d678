package tickmath

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bitmath"
	"lukechampine.com/uint128"
)

var (
	// MIN_TICK is the minimum tick that may be passed to GetSqrtPriceAtTick.
	MIN_TICK = int32(-443636)
	// MAX_TICK is the maximum tick that may be passed to GetSqrtPriceAtTick.
	MAX_TICK = -MIN_TICK

	// MIN_SQRT_PRICE_X64 is GetSqrtPriceAtTick(MIN_TICK).
	MIN_SQRT_PRICE_X64 = uint128.From64(4295048016)
	// MAX_SQRT_PRICE_X64 is GetSqrtPriceAtTick(MAX_TICK), 79226673521066979257578248091.
	MAX_SQRT_PRICE_X64 = uint128.New(9537527425331189659, 4294886577)

	// ErrInvalidTickRange is the root of every tick range violation.
	ErrInvalidTickRange     = errors.New("invalid tick range")
	ErrTickOutOfBounds      = fmt.Errorf("%w: tick out of bounds", ErrInvalidTickRange)
	ErrSqrtPriceOutOfBounds = fmt.Errorf("%w: sqrt price out of bounds", ErrInvalidTickRange)

	// ratioConstants[i] is sqrt(1.0001)^(-2^i) in Q64.64, for bit i of |tick|.
	ratioConstants = [19]uint64{
		0xfffcb933bd6fb800,
		0xfff97272373d4000,
		0xfff2e50f5f657000,
		0xffe5caca7e10f000,
		0xffcb9843d60f7000,
		0xff973b41fa98e800,
		0xff2ea16466c9b000,
		0xfe5dee046a9a3800,
		0xfcbe86c7900bb000,
		0xf987a7253ac65800,
		0xf3392b0822bb6000,
		0xe7159475a2caf000,
		0xd097f3bdfd2f2000,
		0xa9f746462d9f8000,
		0x70d869a156f31c00,
		0x31be135f97ed3200,
		0x9aa508b5b85a500,
		0x5d6af8dedc582c,
		0x2216e584f5fa,
	}
)

const (
	// fractional bits resolved by the log2 refinement
	bitPrecision = 16

	// 2^32 / log2(sqrt(1.0001)) in Q32
	log2ToLogSqrt10001 = 59543866431248
	// 0.01 in Q64
	tickLowMargin = 184467440737095516
	// 2^-14 / log2(sqrt(1.0001)) + 0.01 in Q64
	tickHighMargin = uint64(15793534762490258745)
)

// CheckTickBoundary returns ErrTickOutOfBounds if tick is outside [MIN_TICK, MAX_TICK].
func CheckTickBoundary(tick int32) error {
	if tick < MIN_TICK || tick > MAX_TICK {
		return fmt.Errorf("%w: %d", ErrTickOutOfBounds, tick)
	}
	return nil
}

// GetSqrtPriceAtTick calculates sqrt(1.0001^tick) * 2^64.
func GetSqrtPriceAtTick(tick int32) (uint128.Uint128, error) {
	if err := CheckTickBoundary(tick); err != nil {
		return uint128.Zero, err
	}

	absTick := uint32(tick)
	if tick < 0 {
		absTick = uint32(-tick)
	}

	ratio := bignum.Q64
	if absTick&0x1 != 0 {
		ratio = uint128.From64(ratioConstants[0])
	}
	for i := 1; i < len(ratioConstants); i++ {
		if absTick&(1<<i) != 0 {
			ratio = ratio.Mul64(ratioConstants[i]).Rsh(64)
		}
	}

	// The ladder yields the price of -|tick|; positive ticks take the reciprocal.
	if tick > 0 {
		ratio = uint128.Max.Div(ratio)
	}
	return ratio, nil
}

// GetTickAtSqrtPrice calculates the greatest tick such that
// GetSqrtPriceAtTick(tick) <= sqrtPriceX64.
//
// Formula: tick = log base(sqrt(1.0001)) of sqrtPriceX64 / 2^64
func GetTickAtSqrtPrice(sqrtPriceX64 uint128.Uint128) (int32, error) {
	if sqrtPriceX64.Cmp(MIN_SQRT_PRICE_X64) < 0 || sqrtPriceX64.Cmp(MAX_SQRT_PRICE_X64) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrSqrtPriceOutOfBounds, sqrtPriceX64)
	}

	msb, err := bitmath.MostSignificantBit(sqrtPriceX64)
	if err != nil {
		return 0, err
	}
	log2pIntegerX32 := (int64(msb) - 64) << 32

	// normalize into [2^63, 2^64), i.e. 1.x in Q1.63
	var r uint64
	if msb >= 64 {
		r = sqrtPriceX64.Rsh(uint(msb) - 63).Lo
	} else {
		r = sqrtPriceX64.Lsh(63 - uint(msb)).Lo
	}

	var log2pFractionX64 uint64
	bit := uint64(1) << 63
	for precision := 0; bit > 0 && precision < bitPrecision; precision++ {
		hi, lo := bits.Mul64(r, r)
		sq := uint128.New(lo, hi)
		isMoreThanTwo := hi >> 63
		r = sq.Rsh(uint(63 + isMoreThanTwo)).Lo
		log2pFractionX64 += bit * isMoreThanTwo
		bit >>= 1
	}
	log2pX32 := log2pIntegerX32 + int64(log2pFractionX64>>32)

	logSqrt10001X64 := bignum.MulInt64(log2pX32, log2ToLogSqrt10001)

	low, _ := logSqrt10001X64.Sub(bignum.I128From64(tickLowMargin))
	margin, _ := bignum.I128FromUint128(uint128.From64(tickHighMargin))
	high, _ := logSqrt10001X64.Add(margin)

	tickLow := narrowTick(low.Rsh(64))
	tickHigh := narrowTick(high.Rsh(64))
	if tickLow == tickHigh || tickHigh > MAX_TICK {
		return tickLow, nil
	}

	priceHigh, err := GetSqrtPriceAtTick(tickHigh)
	if err != nil {
		return 0, err
	}
	if priceHigh.Cmp(sqrtPriceX64) <= 0 {
		return tickHigh, nil
	}
	return tickLow, nil
}

func narrowTick(v bignum.I128) int32 {
	t, _ := v.Int64()
	return int32(t)
}
