package position

import (
	"context"
	"errors"
	"fmt"

	"github.com/defistate/clmm-core-go/protocols/clmm"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/liquiditymath"
	"github.com/defistate/clmm-core-go/protocols/clmm/tickarray"
	"lukechampine.com/uint128"
)

var (
	ErrZeroLiquidityDelta = errors.New("liquidity delta cannot be zero")
	ErrNilPool            = errors.New("pool cannot be nil")
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Result describes an applied liquidity change.
type Result struct {
	// Amount0 and Amount1 are owed by the caller when liquidity was added and
	// paid out when it was removed.
	Amount0 uint64 `json:"amount0"`
	Amount1 uint64 `json:"amount1"`

	LowerFlipped bool `json:"lowerFlipped"`
	UpperFlipped bool `json:"upperFlipped"`

	// Lower and Upper hold the arrays as persisted. They are the same array
	// when both ticks share a start index.
	Lower tickarray.Lookup `json:"-"`
	Upper tickarray.Lookup `json:"-"`

	Diffs []tickarray.ArrayDiff `json:"diffs"`

	// Liquidity is the pool's active liquidity after the change.
	Liquidity uint128.Uint128 `json:"-"`
}

// ManagerConfig holds the dependencies of a Manager.
type ManagerConfig struct {
	Arrays *tickarray.Manager
	Logger Logger
}

// validate checks if the configuration is valid, ensuring required dependencies are present.
func (c *ManagerConfig) validate() error {
	if c.Arrays == nil {
		return errors.New("config: Arrays cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// Manager opens, grows, shrinks and closes liquidity positions.
type Manager struct {
	arrays *tickarray.Manager
	logger Logger
}

func NewManager(cfg *ManagerConfig) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Manager{arrays: cfg.Arrays, logger: cfg.Logger}, nil
}

// ModifyPosition applies liquidityDelta to the range [tickLower, tickUpper] of
// pool. Positive deltas create missing tick arrays, negative deltas require
// them to exist. Every touched array is written in one batch and pool is only
// updated once that batch succeeds. On error nothing is changed apart from
// arrays that were created along the way.
func (m *Manager) ModifyPosition(
	ctx context.Context,
	pool *clmm.PoolView,
	tickLower int32,
	tickUpper int32,
	liquidityDelta bignum.I128,
) (*Result, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	if err := checkRange(tickLower, tickUpper, pool.TickSpacing); err != nil {
		return nil, err
	}
	if liquidityDelta.IsZero() {
		return nil, ErrZeroLiquidityDelta
	}

	amount0, amount1, err := liquiditymath.GetDeltaAmountsSigned(pool.TickCurrent, pool.SqrtPriceX64, tickLower, tickUpper, liquidityDelta)
	if err != nil {
		return nil, fmt.Errorf("position amounts: %w", err)
	}

	liquidity := pool.Liquidity
	if tickLower <= pool.TickCurrent && pool.TickCurrent < tickUpper {
		if liquidity, err = liquiditymath.AddDelta(liquidity, liquidityDelta); err != nil {
			return nil, fmt.Errorf("pool %s liquidity: %w", pool.ID, err)
		}
	}

	lower, upper, err := m.arraysFor(ctx, pool, tickLower, tickUpper, liquidityDelta.IsNeg())
	if err != nil {
		return nil, err
	}
	shared := lower.Address == upper.Address

	// work on copies so a failure leaves the loaded arrays untouched
	lowerNext := lower
	lowerNext.Array = lower.Array.Clone()
	upperNext := lowerNext
	if !shared {
		upperNext = upper
		upperNext.Array = upper.Array.Clone()
	}

	epoch := m.arrays.Epoch()
	lowerFlipped, err := updateTick(lowerNext.Array, tickLower, pool.TickSpacing, liquidityDelta, false, epoch)
	if err != nil {
		return nil, err
	}
	upperFlipped, err := updateTick(upperNext.Array, tickUpper, pool.TickSpacing, liquidityDelta, true, epoch)
	if err != nil {
		return nil, err
	}

	lookups := []tickarray.Lookup{lowerNext}
	if !shared {
		lookups = append(lookups, upperNext)
	}
	// persist exactly what the diffs describe
	diffs := make([]tickarray.ArrayDiff, 0, len(lookups))
	for i, before := range []tickarray.Lookup{lower, upper}[:len(lookups)] {
		d, err := tickarray.Diff(before.Array, lookups[i].Array)
		if err != nil {
			return nil, err
		}
		if lookups[i].Array, err = tickarray.Patch(before.Array, d); err != nil {
			return nil, err
		}
		diffs = append(diffs, d)
	}

	if err := m.arrays.SaveBatch(ctx, lookups...); err != nil {
		return nil, fmt.Errorf("persist tick arrays: %w", err)
	}
	pool.Liquidity = liquidity

	m.logger.Debug("position modified",
		"pool", pool.ID.String(),
		"lower", tickLower,
		"upper", tickUpper,
		"delta", liquidityDelta.String(),
		"amount0", amount0,
		"amount1", amount1,
	)
	return &Result{
		Amount0:      amount0,
		Amount1:      amount1,
		LowerFlipped: lowerFlipped,
		UpperFlipped: upperFlipped,
		Lower:        lookups[0],
		Upper:        lookups[len(lookups)-1],
		Diffs:        diffs,
		Liquidity:    liquidity,
	}, nil
}

func checkRange(tickLower, tickUpper int32, tickSpacing uint16) error {
	if err := clmm.CheckTicksOrder(tickLower, tickUpper); err != nil {
		return err
	}
	if err := clmm.CheckTickSpacing(tickLower, tickSpacing); err != nil {
		return err
	}
	return clmm.CheckTickSpacing(tickUpper, tickSpacing)
}

// arraysFor returns the arrays holding both boundary ticks. Removals only
// load, additions get or create.
func (m *Manager) arraysFor(ctx context.Context, pool *clmm.PoolView, tickLower, tickUpper int32, removal bool) (lower, upper tickarray.Lookup, err error) {
	fetch := func(start int32) (tickarray.Lookup, error) {
		if removal {
			return m.arrays.Load(ctx, pool.ID, start)
		}
		return m.arrays.GetOrCreate(ctx, pool.ID, start, pool.TickSpacing)
	}

	lowerStart := tickarray.GetArrayStartIndex(tickLower, pool.TickSpacing)
	upperStart := tickarray.GetArrayStartIndex(tickUpper, pool.TickSpacing)
	if lower, err = fetch(lowerStart); err != nil {
		return lower, upper, fmt.Errorf("tick array %d: %w", lowerStart, err)
	}
	if upperStart == lowerStart {
		return lower, lower, nil
	}
	if upper, err = fetch(upperStart); err != nil {
		return lower, upper, fmt.Errorf("tick array %d: %w", upperStart, err)
	}
	return lower, upper, nil
}

// updateTick applies delta to one boundary tick, keeping the array's
// initialized count in step and resetting ticks that lost all liquidity.
func updateTick(ta *tickarray.TickArray, tick int32, tickSpacing uint16, delta bignum.I128, upper bool, epoch uint64) (bool, error) {
	state, err := ta.GetTickStateMut(tick, tickSpacing)
	if err != nil {
		return false, err
	}
	flipped, err := state.Update(tick, delta, upper)
	if err != nil {
		return false, err
	}
	if flipped {
		if err := ta.UpdateInitializedTickCount(state.IsInitialized()); err != nil {
			return false, err
		}
		if !state.IsInitialized() {
			state.Clear()
		}
	}
	ta.Touch(epoch)
	return flipped, nil
}
