package liquiditymath

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestAddDelta(t *testing.T) {
	testCases := []struct {
		name     string
		x        uint128.Uint128
		y        bignum.I128
		expected uint128.Uint128
		err      error
	}{
		{"1 + 1", uint128.From64(1), bignum.I128From64(1), uint128.From64(2), nil},
		{"1 - 1", uint128.From64(1), bignum.I128From64(-1), uint128.Zero, nil},
		{"max - 15 + 15", uint128.Max.Sub64(15), bignum.I128From64(15), uint128.Max, nil},
		{"max + 1 overflows", uint128.Max, bignum.I128From64(1), uint128.Zero, ErrLiquidityOverflow},
		{"max - 15 + 16 overflows", uint128.Max.Sub64(15), bignum.I128From64(16), uint128.Zero, ErrLiquidityOverflow},
		{"0 - 1 underflows", uint128.Zero, bignum.I128From64(-1), uint128.Zero, ErrLiquidityUnderflow},
		{"3 - 4 underflows", uint128.From64(3), bignum.I128From64(-4), uint128.Zero, ErrLiquidityUnderflow},
		{"zero delta is rejected", uint128.From64(3), bignum.I128From64(0), uint128.Zero, ErrLiquidityOverflow},
		{"min delta on max", uint128.Max, bignum.MinI128, uint128.New(^uint64(0), 1<<63-1), nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := AddDelta(tc.x, tc.y)
			if tc.err != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestAddDelta_Conservation(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 127)
	for i := 0; i < 1000; i++ {
		lb, err := rand.Int(rand.Reader, limit)
		require.NoError(t, err)
		db, err := rand.Int(rand.Reader, limit)
		require.NoError(t, err)
		db.Add(db, big.NewInt(1))
		if db.Cmp(limit) >= 0 {
			db.Sub(db, big.NewInt(1))
		}

		l := uint128.FromBig(lb)
		d, ok := bignum.I128FromBig(db)
		require.True(t, ok)

		added, err := AddDelta(l, d)
		require.NoError(t, err)
		back, err := AddDelta(added, d.Neg())
		require.NoError(t, err)
		assert.Equal(t, l, back)
	}
}
