package clmm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/liquiditymath"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/tickmath"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

var (
	ErrZeroTickSpacing = errors.New("tick spacing must be greater than zero")
)

// PoolView provides the pool fields the core reads. The pool record itself is
// owned elsewhere and referenced by ID.
type PoolView struct {
	ID           solana.PublicKey
	TickSpacing  uint16
	SqrtPriceX64 uint128.Uint128
	TickCurrent  int32
	Liquidity    uint128.Uint128
}

// NewPoolView builds a fresh pool at sqrtPriceX64 with no active liquidity,
// deriving the current tick from the price.
func NewPoolView(id solana.PublicKey, tickSpacing uint16, sqrtPriceX64 uint128.Uint128) (*PoolView, error) {
	if tickSpacing == 0 {
		return nil, ErrZeroTickSpacing
	}
	tick, err := tickmath.GetTickAtSqrtPrice(sqrtPriceX64)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", id, err)
	}
	return &PoolView{
		ID:           id,
		TickSpacing:  tickSpacing,
		SqrtPriceX64: sqrtPriceX64,
		TickCurrent:  tick,
		Liquidity:    uint128.Zero,
	}, nil
}

// MarshalJSON renders the 128-bit fields as decimal strings.
func (p PoolView) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID           solana.PublicKey `json:"id"`
		TickSpacing  uint16           `json:"tickSpacing"`
		SqrtPriceX64 string           `json:"sqrtPriceX64"`
		TickCurrent  int32            `json:"tickCurrent"`
		Liquidity    string           `json:"liquidity"`
	}{p.ID, p.TickSpacing, p.SqrtPriceX64.String(), p.TickCurrent, p.Liquidity.String()})
}

// TickState is the liquidity bookkeeping for one tick.
type TickState struct {
	Tick int32
	// LiquidityNet is the liquidity added when the price crosses this tick upward.
	LiquidityNet bignum.I128
	// LiquidityGross is the total liquidity referencing this tick.
	LiquidityGross uint128.Uint128
}

func (t TickState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Tick           int32  `json:"tick"`
		LiquidityNet   string `json:"liquidityNet"`
		LiquidityGross string `json:"liquidityGross"`
	}{t.Tick, t.LiquidityNet.String(), t.LiquidityGross.String()})
}

// IsInitialized reports whether any position references the tick.
func (t TickState) IsInitialized() bool {
	return !t.LiquidityGross.IsZero()
}

// Update applies a position's liquidity delta to the tick. upper is true when
// the tick is the position's upper boundary. flipped reports whether the tick
// went from uninitialized to initialized or vice versa. On error t is unchanged.
func (t *TickState) Update(tick int32, liquidityDelta bignum.I128, upper bool) (flipped bool, err error) {
	grossBefore := t.LiquidityGross
	grossAfter, err := liquiditymath.AddDelta(grossBefore, liquidityDelta)
	if err != nil {
		return false, fmt.Errorf("tick %d gross: %w", tick, err)
	}

	var net bignum.I128
	var ok bool
	if upper {
		net, ok = t.LiquidityNet.Sub(liquidityDelta)
	} else {
		net, ok = t.LiquidityNet.Add(liquidityDelta)
	}
	if !ok {
		return false, fmt.Errorf("tick %d net: %w", tick, liquiditymath.ErrLiquidityOverflow)
	}

	t.Tick = tick
	t.LiquidityGross = grossAfter
	t.LiquidityNet = net
	return grossAfter.IsZero() != grossBefore.IsZero(), nil
}

// Clear resets the liquidity of the tick. The index is kept so the slot still
// identifies its tick.
func (t *TickState) Clear() {
	t.LiquidityNet = bignum.I128{}
	t.LiquidityGross = uint128.Zero
}

// CheckTicksOrder returns an error unless lower < upper.
func CheckTicksOrder(tickLower, tickUpper int32) error {
	if tickLower >= tickUpper {
		return fmt.Errorf("%w: lower %d must be below upper %d", tickmath.ErrInvalidTickRange, tickLower, tickUpper)
	}
	return nil
}

// CheckTickSpacing returns an error unless tick is in bounds and a multiple of spacing.
func CheckTickSpacing(tick int32, tickSpacing uint16) error {
	if tickSpacing == 0 {
		return ErrZeroTickSpacing
	}
	if err := tickmath.CheckTickBoundary(tick); err != nil {
		return err
	}
	if tick%int32(tickSpacing) != 0 {
		return fmt.Errorf("%w: tick %d is not a multiple of spacing %d", tickmath.ErrInvalidTickRange, tick, tickSpacing)
	}
	return nil
}
