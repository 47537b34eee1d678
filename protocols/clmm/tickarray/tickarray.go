package tickarray

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/defistate/clmm-core-go/bitset"
	"github.com/defistate/clmm-core-go/protocols/clmm"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/tickbitmap"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/tickmath"
	"github.com/gagliardetto/solana-go"
)

// TICK_ARRAY_SIZE is the number of tick slots held by one array.
const TICK_ARRAY_SIZE = 60

var (
	ErrAccountMismatch      = errors.New("tick array account does not match its address")
	ErrInitializedTickCount = errors.New("initialized tick count out of range")
	ErrNoInitializedTick    = errors.New("tick array has no initialized tick")
	ErrInvalidAccountData   = errors.New("invalid tick array account data")
)

// Seed is the address namespace of tick arrays.
var Seed = []byte("tick_array")

// Discriminator tags tick array records.
var Discriminator = func() [8]byte {
	sum := sha256.Sum256([]byte("account:TickArrayState"))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}()

// TickArray holds TICK_ARRAY_SIZE consecutive ticks of one pool. Slot i is the
// tick StartTickIndex + i*spacing.
type TickArray struct {
	PoolID               solana.PublicKey
	StartTickIndex       int32
	Ticks                [TICK_ARRAY_SIZE]clmm.TickState
	InitializedTickCount uint8
	// RecentEpoch increases on every mutation.
	RecentEpoch uint64
}

// New returns an empty array stamped with its identity.
func New(poolID solana.PublicKey, startTickIndex int32, epoch uint64) *TickArray {
	return &TickArray{
		PoolID:         poolID,
		StartTickIndex: startTickIndex,
		RecentEpoch:    epoch,
	}
}

// TickCount returns the tick range covered by one array.
func TickCount(tickSpacing uint16) int32 {
	return TICK_ARRAY_SIZE * int32(tickSpacing)
}

// GetArrayStartIndex returns the start index of the array containing tick.
// Negative ticks round toward negative infinity.
func GetArrayStartIndex(tick int32, tickSpacing uint16) int32 {
	count := TickCount(tickSpacing)
	start := tick / count
	if tick < 0 && tick%count != 0 {
		start--
	}
	return start * count
}

// CheckIsValidStartIndex reports whether startIndex can start an array.
func CheckIsValidStartIndex(startIndex int32, tickSpacing uint16) bool {
	if tickSpacing == 0 {
		return false
	}
	if tickmath.CheckTickBoundary(startIndex) != nil {
		if startIndex > tickmath.MAX_TICK {
			return false
		}
		// the array holding MIN_TICK may start below it
		return startIndex == GetArrayStartIndex(tickmath.MIN_TICK, tickSpacing)
	}
	return startIndex%TickCount(tickSpacing) == 0
}

// Clone returns an independent copy of ta.
func (ta *TickArray) Clone() *TickArray {
	c := *ta
	return &c
}

// GetTickOffsetInArray returns the slot of tick. The tick must lie in the
// array's bucket and be a multiple of tickSpacing.
func (ta *TickArray) GetTickOffsetInArray(tick int32, tickSpacing uint16) (int, error) {
	if tickSpacing == 0 {
		return 0, clmm.ErrZeroTickSpacing
	}
	if GetArrayStartIndex(tick, tickSpacing) != ta.StartTickIndex {
		return 0, fmt.Errorf("%w: tick %d is outside the array starting at %d", tickmath.ErrInvalidTickRange, tick, ta.StartTickIndex)
	}
	diff := tick - ta.StartTickIndex
	if diff%int32(tickSpacing) != 0 {
		return 0, fmt.Errorf("%w: tick %d is not a multiple of spacing %d", tickmath.ErrInvalidTickRange, tick, tickSpacing)
	}
	return int(diff / int32(tickSpacing)), nil
}

// GetTickStateMut returns the slot of tick for in-place changes.
func (ta *TickArray) GetTickStateMut(tick int32, tickSpacing uint16) (*clmm.TickState, error) {
	offset, err := ta.GetTickOffsetInArray(tick, tickSpacing)
	if err != nil {
		return nil, err
	}
	return &ta.Ticks[offset], nil
}

// UpdateTickState overwrites the slot of tick and bumps RecentEpoch to at
// least epoch.
func (ta *TickArray) UpdateTickState(tick int32, tickSpacing uint16, state clmm.TickState, epoch uint64) error {
	offset, err := ta.GetTickOffsetInArray(tick, tickSpacing)
	if err != nil {
		return err
	}
	ta.Ticks[offset] = state
	ta.Touch(epoch)
	return nil
}

// Touch advances RecentEpoch to max(RecentEpoch+1, epoch).
func (ta *TickArray) Touch(epoch uint64) {
	ta.RecentEpoch = max(ta.RecentEpoch+1, epoch)
}

// UpdateInitializedTickCount adds or removes one initialized tick.
func (ta *TickArray) UpdateInitializedTickCount(add bool) error {
	if add {
		if ta.InitializedTickCount >= TICK_ARRAY_SIZE {
			return fmt.Errorf("%w: array %d is full", ErrInitializedTickCount, ta.StartTickIndex)
		}
		ta.InitializedTickCount++
		return nil
	}
	if ta.InitializedTickCount == 0 {
		return fmt.Errorf("%w: array %d is empty", ErrInitializedTickCount, ta.StartTickIndex)
	}
	ta.InitializedTickCount--
	return nil
}

func (ta *TickArray) initializedSlots() bitset.BitSet {
	set := bitset.NewBitSet(TICK_ARRAY_SIZE)
	for i := range ta.Ticks {
		if ta.Ticks[i].IsInitialized() {
			set.Set(uint64(i))
		}
	}
	return set
}

// NextInitializedTick searches the array from currentTick. With zeroForOne
// the search goes down and includes currentTick, otherwise it goes up and
// excludes it. A tick outside the array finds nothing.
func (ta *TickArray) NextInitializedTick(currentTick int32, tickSpacing uint16, zeroForOne bool) (*clmm.TickState, bool) {
	if tickSpacing == 0 || GetArrayStartIndex(currentTick, tickSpacing) != ta.StartTickIndex {
		return nil, false
	}
	next, found := tickbitmap.NextInitializedTickWithinArray(
		ta.initializedSlots(),
		TICK_ARRAY_SIZE,
		ta.StartTickIndex,
		tickSpacing,
		currentTick,
		zeroForOne,
	)
	if !found {
		return nil, false
	}
	return &ta.Ticks[(next-ta.StartTickIndex)/int32(tickSpacing)], true
}

// FirstInitializedTick returns the highest initialized slot when zeroForOne is
// set and the lowest one otherwise.
func (ta *TickArray) FirstInitializedTick(zeroForOne bool) (*clmm.TickState, error) {
	slots := ta.initializedSlots()
	var (
		slot  uint64
		found bool
	)
	if zeroForOne {
		slot, found = slots.PrevSet(TICK_ARRAY_SIZE - 1)
	} else {
		slot, found = slots.NextSet(0)
	}
	if !found {
		return nil, fmt.Errorf("%w: start %d", ErrNoInitializedTick, ta.StartTickIndex)
	}
	return &ta.Ticks[slot], nil
}
