package tickarray

import (
	"errors"
	"fmt"

	"github.com/defistate/clmm-core-go/protocols/clmm"
)

// TickChange is one slot that differs between two snapshots.
type TickChange struct {
	Offset int            `json:"offset"`
	Old    clmm.TickState `json:"old"`
	New    clmm.TickState `json:"new"`
}

// ArrayDiff lists what changed between two snapshots of the same array.
type ArrayDiff struct {
	StartTickIndex          int32        `json:"startTickIndex"`
	Changes                 []TickChange `json:"changes,omitempty"`
	OldInitializedTickCount uint8        `json:"oldInitializedTickCount"`
	NewInitializedTickCount uint8        `json:"newInitializedTickCount"`
	OldRecentEpoch          uint64       `json:"oldRecentEpoch"`
	NewRecentEpoch          uint64       `json:"newRecentEpoch"`
}

// IsEmpty returns true if the diff contains no changes.
func (d ArrayDiff) IsEmpty() bool {
	return len(d.Changes) == 0 &&
		d.OldInitializedTickCount == d.NewInitializedTickCount &&
		d.OldRecentEpoch == d.NewRecentEpoch
}

func tickChanged(old, new *clmm.TickState) bool {
	if old.Tick != new.Tick {
		return true
	}
	if old.LiquidityNet.Cmp(new.LiquidityNet) != 0 {
		return true
	}
	return old.LiquidityGross.Cmp(new.LiquidityGross) != 0
}

// Diff compares two snapshots of one array. old may be nil for an array that
// did not exist before, in which case every non-empty slot is a change.
func Diff(old, new *TickArray) (ArrayDiff, error) {
	if new == nil {
		return ArrayDiff{}, errors.New("diff: new array cannot be nil")
	}
	if old == nil {
		old = New(new.PoolID, new.StartTickIndex, 0)
	}
	if old.PoolID != new.PoolID || old.StartTickIndex != new.StartTickIndex {
		return ArrayDiff{}, fmt.Errorf("%w: cannot diff array %d of %s against array %d of %s",
			ErrAccountMismatch, old.StartTickIndex, old.PoolID, new.StartTickIndex, new.PoolID)
	}

	var changes []TickChange
	for i := range new.Ticks {
		if tickChanged(&old.Ticks[i], &new.Ticks[i]) {
			changes = append(changes, TickChange{Offset: i, Old: old.Ticks[i], New: new.Ticks[i]})
		}
	}
	return ArrayDiff{
		StartTickIndex:          new.StartTickIndex,
		Changes:                 changes,
		OldInitializedTickCount: old.InitializedTickCount,
		NewInitializedTickCount: new.InitializedTickCount,
		OldRecentEpoch:          old.RecentEpoch,
		NewRecentEpoch:          new.RecentEpoch,
	}, nil
}
