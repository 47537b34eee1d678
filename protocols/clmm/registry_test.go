package clmm

import (
	"encoding/json"
	"testing"

	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/liquiditymath"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/tickmath"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestNewPoolView(t *testing.T) {
	id := solana.NewWallet().PublicKey()

	t.Run("price of one is tick zero", func(t *testing.T) {
		pool, err := NewPoolView(id, 1, bignum.Q64)
		require.NoError(t, err)
		assert.Equal(t, int32(0), pool.TickCurrent)
		assert.True(t, pool.Liquidity.IsZero())
		assert.Equal(t, id, pool.ID)
	})

	t.Run("tick derived from price", func(t *testing.T) {
		price, err := tickmath.GetSqrtPriceAtTick(-1000)
		require.NoError(t, err)
		pool, err := NewPoolView(id, 10, price.Add64(1))
		require.NoError(t, err)
		assert.Equal(t, int32(-1000), pool.TickCurrent)
	})

	t.Run("zero spacing", func(t *testing.T) {
		_, err := NewPoolView(id, 0, bignum.Q64)
		assert.ErrorIs(t, err, ErrZeroTickSpacing)
	})

	t.Run("max price", func(t *testing.T) {
		pool, err := NewPoolView(id, 1, tickmath.MAX_SQRT_PRICE_X64)
		require.NoError(t, err)
		assert.Equal(t, tickmath.MAX_TICK, pool.TickCurrent)
	})

	t.Run("price out of range", func(t *testing.T) {
		_, err := NewPoolView(id, 1, tickmath.MAX_SQRT_PRICE_X64.Add64(1))
		assert.ErrorIs(t, err, tickmath.ErrSqrtPriceOutOfBounds)
	})
}

func TestTickState_Update(t *testing.T) {
	t.Run("lower boundary adds net", func(t *testing.T) {
		var ts TickState
		flipped, err := ts.Update(-60, bignum.I128From64(100), false)
		require.NoError(t, err)
		assert.True(t, flipped)
		assert.Equal(t, int32(-60), ts.Tick)
		assert.Equal(t, "100", ts.LiquidityNet.String())
		assert.True(t, ts.LiquidityGross.Equals64(100))
		assert.True(t, ts.IsInitialized())
	})

	t.Run("upper boundary subtracts net", func(t *testing.T) {
		var ts TickState
		_, err := ts.Update(60, bignum.I128From64(100), true)
		require.NoError(t, err)
		assert.Equal(t, "-100", ts.LiquidityNet.String())
	})

	t.Run("second reference does not flip", func(t *testing.T) {
		var ts TickState
		_, err := ts.Update(0, bignum.I128From64(100), false)
		require.NoError(t, err)
		flipped, err := ts.Update(0, bignum.I128From64(50), true)
		require.NoError(t, err)
		assert.False(t, flipped)
		assert.Equal(t, "50", ts.LiquidityNet.String())
		assert.True(t, ts.LiquidityGross.Equals64(150))
	})

	t.Run("removing all liquidity flips back", func(t *testing.T) {
		var ts TickState
		_, err := ts.Update(0, bignum.I128From64(100), false)
		require.NoError(t, err)
		flipped, err := ts.Update(0, bignum.I128From64(-100), false)
		require.NoError(t, err)
		assert.True(t, flipped)
		assert.False(t, ts.IsInitialized())
		assert.True(t, ts.LiquidityNet.IsZero())
	})

	t.Run("underflow leaves state untouched", func(t *testing.T) {
		ts := TickState{Tick: 5, LiquidityNet: bignum.I128From64(10), LiquidityGross: uint128.From64(10)}
		before := ts
		_, err := ts.Update(5, bignum.I128From64(-11), false)
		require.Error(t, err)
		assert.ErrorIs(t, err, liquiditymath.ErrLiquidityUnderflow)
		assert.Equal(t, before, ts)
	})

	t.Run("net overflow leaves state untouched", func(t *testing.T) {
		ts := TickState{Tick: 5, LiquidityNet: bignum.MaxI128, LiquidityGross: uint128.From64(10)}
		before := ts
		_, err := ts.Update(5, bignum.I128From64(1), false)
		require.Error(t, err)
		assert.ErrorIs(t, err, liquiditymath.ErrLiquidityOverflow)
		assert.Equal(t, before, ts)
	})

	t.Run("clear", func(t *testing.T) {
		ts := TickState{Tick: 5, LiquidityNet: bignum.I128From64(-3), LiquidityGross: uint128.From64(3)}
		ts.Clear()
		assert.Equal(t, TickState{Tick: 5}, ts)
	})
}

func TestChecks(t *testing.T) {
	assert.NoError(t, CheckTicksOrder(-60, 60))
	assert.ErrorIs(t, CheckTicksOrder(60, 60), tickmath.ErrInvalidTickRange)
	assert.ErrorIs(t, CheckTicksOrder(61, 60), tickmath.ErrInvalidTickRange)

	assert.NoError(t, CheckTickSpacing(-120, 60))
	assert.ErrorIs(t, CheckTickSpacing(-121, 60), tickmath.ErrInvalidTickRange)
	assert.ErrorIs(t, CheckTickSpacing(tickmath.MAX_TICK+1, 1), tickmath.ErrTickOutOfBounds)
	assert.ErrorIs(t, CheckTickSpacing(0, 0), ErrZeroTickSpacing)
}

func TestJSON(t *testing.T) {
	state := TickState{Tick: -60, LiquidityNet: bignum.I128From64(-5), LiquidityGross: uint128.Max}
	out, err := json.Marshal(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tick":-60,"liquidityNet":"-5","liquidityGross":"340282366920938463463374607431768211455"}`, string(out))

	pool := PoolView{TickSpacing: 10, SqrtPriceX64: uint128.New(0, 1), Liquidity: uint128.From64(7)}
	out, err = json.Marshal(pool)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"11111111111111111111111111111111","tickSpacing":10,"sqrtPriceX64":"18446744073709551616","tickCurrent":0,"liquidity":"7"}`, string(out))
}
