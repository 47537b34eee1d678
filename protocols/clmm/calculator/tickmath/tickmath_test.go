package tickmath

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

// Helper to create a uint128 from a decimal string for tests.
func fromString(s string) uint128.Uint128 {
	u, err := uint128.FromString(s)
	if err != nil {
		panic(err)
	}
	return u
}

func TestGetSqrtPriceAtTick(t *testing.T) {
	t.Run("throws for too low", func(t *testing.T) {
		_, err := GetSqrtPriceAtTick(MIN_TICK - 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTickOutOfBounds)
		assert.ErrorIs(t, err, ErrInvalidTickRange)
	})

	t.Run("throws for too high", func(t *testing.T) {
		_, err := GetSqrtPriceAtTick(MAX_TICK + 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTickOutOfBounds)
	})

	t.Run("min tick", func(t *testing.T) {
		sqrtP, err := GetSqrtPriceAtTick(MIN_TICK)
		require.NoError(t, err)
		assert.Equal(t, MIN_SQRT_PRICE_X64, sqrtP)
		assert.Equal(t, "4295048016", sqrtP.String())
	})

	t.Run("max tick", func(t *testing.T) {
		sqrtP, err := GetSqrtPriceAtTick(MAX_TICK)
		require.NoError(t, err)
		assert.Equal(t, MAX_SQRT_PRICE_X64, sqrtP)
		assert.Equal(t, "79226673521066979257578248091", sqrtP.String())
	})

	t.Run("zero tick is one", func(t *testing.T) {
		sqrtP, err := GetSqrtPriceAtTick(0)
		require.NoError(t, err)
		assert.Equal(t, uint128.New(0, 1), sqrtP)
	})

	testCases := []struct {
		tick     int32
		expected string
	}{
		{1, "18447666387855957090"},
		{-1, "18445821805675395072"},
		{60, "18502164624211742928"},
		{-60, "18391489527427966291"},
		{100, "18539204128674375874"},
		{-100, "18354745142194513203"},
		{1000, "19392480388906522465"},
		{-1000, "17547129613991882732"},
		{10000, "30412779051186690180"},
		{-10000, "11188795550325113405"},
		{65536, "488590176327110977113"},
		{-65536, "696457651848324352"},
		{200000, "406113483392345977776134"},
		{-200000, "837899702512935"},
	}
	for _, tc := range testCases {
		t.Run(big.NewInt(int64(tc.tick)).String(), func(t *testing.T) {
			sqrtP, err := GetSqrtPriceAtTick(tc.tick)
			require.NoError(t, err)
			assert.Equal(t, fromString(tc.expected), sqrtP)
		})
	}
}

func TestGetTickAtSqrtPrice(t *testing.T) {
	t.Run("throws for too low", func(t *testing.T) {
		_, err := GetTickAtSqrtPrice(MIN_SQRT_PRICE_X64.Sub64(1))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSqrtPriceOutOfBounds)
	})

	t.Run("throws for too high", func(t *testing.T) {
		_, err := GetTickAtSqrtPrice(MAX_SQRT_PRICE_X64.Add64(1))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSqrtPriceOutOfBounds)
	})

	t.Run("price of min tick", func(t *testing.T) {
		tick, err := GetTickAtSqrtPrice(MIN_SQRT_PRICE_X64)
		require.NoError(t, err)
		assert.Equal(t, MIN_TICK, tick)
	})

	t.Run("price of max tick", func(t *testing.T) {
		tick, err := GetTickAtSqrtPrice(MAX_SQRT_PRICE_X64)
		require.NoError(t, err)
		assert.Equal(t, MAX_TICK, tick)
	})

	t.Run("price closest to max tick", func(t *testing.T) {
		tick, err := GetTickAtSqrtPrice(MAX_SQRT_PRICE_X64.Sub64(1))
		require.NoError(t, err)
		assert.Equal(t, MAX_TICK-1, tick)
	})

	t.Run("price of one", func(t *testing.T) {
		tick, err := GetTickAtSqrtPrice(uint128.New(0, 1))
		require.NoError(t, err)
		assert.Equal(t, int32(0), tick)
	})

	t.Run("just below tick one", func(t *testing.T) {
		tick, err := GetTickAtSqrtPrice(fromString("18447666387855957089"))
		require.NoError(t, err)
		assert.Equal(t, int32(0), tick)
	})

	t.Run("around tick minus one", func(t *testing.T) {
		p := fromString("18445821805675395072")
		tick, err := GetTickAtSqrtPrice(p)
		require.NoError(t, err)
		assert.Equal(t, int32(-1), tick)

		tick, err = GetTickAtSqrtPrice(p.Add64(1))
		require.NoError(t, err)
		assert.Equal(t, int32(-1), tick)

		tick, err = GetTickAtSqrtPrice(p.Sub64(1))
		require.NoError(t, err)
		assert.Equal(t, int32(-2), tick)
	})

	prices := []struct {
		name  string
		price uint128.Uint128
	}{
		{"MIN_SQRT_PRICE_X64", MIN_SQRT_PRICE_X64},
		{"2^40", uint128.From64(1 << 40)},
		{"2^63+1", uint128.From64(1<<63 + 1)},
		{"2^64-1", uint128.From64(^uint64(0))},
		{"2^64+1", uint128.New(1, 1)},
		{"2^80", uint128.New(0, 1<<16)},
		{"2^95+12345", uint128.New(12345, 1<<31)},
		{"MAX_SQRT_PRICE_X64-1", MAX_SQRT_PRICE_X64.Sub64(1)},
	}
	for _, tc := range prices {
		t.Run(tc.name, func(t *testing.T) {
			tick, err := GetTickAtSqrtPrice(tc.price)
			require.NoError(t, err)
			priceOfTick, err := GetSqrtPriceAtTick(tick)
			require.NoError(t, err)
			priceOfTickPlusOne, err := GetSqrtPriceAtTick(tick + 1)
			require.NoError(t, err)

			assert.True(t, tc.price.Cmp(priceOfTick) >= 0)
			assert.True(t, tc.price.Cmp(priceOfTickPlusOne) < 0)
		})
	}
}

func randomTick(t *testing.T) int32 {
	span := big.NewInt(int64(MAX_TICK) - int64(MIN_TICK) + 1)
	offset, err := rand.Int(rand.Reader, span)
	require.NoError(t, err)
	return MIN_TICK + int32(offset.Int64())
}

// TestInvariants_InverseFunctions checks that GetTickAtSqrtPrice is the inverse of GetSqrtPriceAtTick.
func TestInvariants_InverseFunctions(t *testing.T) {
	for i := 0; i < 2000; i++ {
		tick := randomTick(t)
		sqrtP, err := GetSqrtPriceAtTick(tick)
		require.NoError(t, err)

		tickCalculated, err := GetTickAtSqrtPrice(sqrtP)
		require.NoError(t, err)
		assert.Equal(t, tick, tickCalculated, "tick %d -> sqrtP %s -> tick %d", tick, sqrtP, tickCalculated)
	}
}

func TestInvariants_Monotonic(t *testing.T) {
	for i := 0; i < 2000; i++ {
		tick := randomTick(t)
		if tick == MAX_TICK {
			continue
		}
		a, err := GetSqrtPriceAtTick(tick)
		require.NoError(t, err)
		b, err := GetSqrtPriceAtTick(tick + 1)
		require.NoError(t, err)
		assert.True(t, a.Cmp(b) < 0, "price(%d)=%s >= price(%d)=%s", tick, a, tick+1, b)

		// the price just below the next tick still maps to this tick
		below, err := GetTickAtSqrtPrice(b.Sub64(1))
		require.NoError(t, err)
		assert.Equal(t, tick, below)
	}
}

func TestRoundTrip_FullRange(t *testing.T) {
	if testing.Short() {
		t.Skip("full tick range sweep")
	}
	prev := uint128.Zero
	for tick := MIN_TICK; tick <= MAX_TICK; tick++ {
		sqrtP, err := GetSqrtPriceAtTick(tick)
		require.NoError(t, err)
		require.True(t, sqrtP.Cmp(prev) > 0, "not monotonic at %d", tick)
		prev = sqrtP
		got, err := GetTickAtSqrtPrice(sqrtP)
		require.NoError(t, err)
		require.Equal(t, tick, got)
	}
}
