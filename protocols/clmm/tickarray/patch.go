package tickarray

import (
	"errors"
	"fmt"
)

var ErrPatchConflict = errors.New("tick array diff does not apply")

// Patch applies diff to prev and returns the result as a new array. Every
// changed slot must still hold its old value, so a diff applies only to the
// snapshot it was taken from.
func Patch(prev *TickArray, diff ArrayDiff) (*TickArray, error) {
	if prev.StartTickIndex != diff.StartTickIndex {
		return nil, fmt.Errorf("%w: diff is for array %d, got %d", ErrPatchConflict, diff.StartTickIndex, prev.StartTickIndex)
	}
	if prev.InitializedTickCount != diff.OldInitializedTickCount || prev.RecentEpoch != diff.OldRecentEpoch {
		return nil, fmt.Errorf("%w: array %d has moved on since the diff", ErrPatchConflict, prev.StartTickIndex)
	}

	next := prev.Clone()
	for _, c := range diff.Changes {
		if c.Offset < 0 || c.Offset >= TICK_ARRAY_SIZE {
			return nil, fmt.Errorf("%w: slot %d out of range", ErrPatchConflict, c.Offset)
		}
		if tickChanged(&next.Ticks[c.Offset], &c.Old) {
			return nil, fmt.Errorf("%w: slot %d of array %d differs", ErrPatchConflict, c.Offset, prev.StartTickIndex)
		}
		next.Ticks[c.Offset] = c.New
	}
	next.InitializedTickCount = diff.NewInitializedTickCount
	next.RecentEpoch = diff.NewRecentEpoch
	return next, nil
}
