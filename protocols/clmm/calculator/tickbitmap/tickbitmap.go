package tickbitmap

import (
	"github.com/defistate/clmm-core-go/bitset"
)

// NextInitializedTickWithinArray scans one tick array, where bit i of
// initialized marks the tick startIndex + i*spacing. With lte it returns the
// largest marked tick <= tick, otherwise the smallest marked tick > tick.
// found is false when the scan leaves the array without a hit.
func NextInitializedTickWithinArray(
	initialized bitset.BitSet,
	slots int,
	startIndex int32,
	spacing uint16,
	tick int32,
	lte bool,
) (next int32, found bool) {
	if slots <= 0 || spacing == 0 {
		return 0, false
	}
	offset := floorDiv(int64(tick)-int64(startIndex), int64(spacing))
	last := int64(slots - 1)

	var slot uint64
	if lte {
		if offset < 0 {
			return 0, false
		}
		slot, found = initialized.PrevSet(uint64(min(offset, last)))
	} else {
		from := max(offset+1, 0)
		if from > last {
			return 0, false
		}
		slot, found = initialized.NextSet(uint64(from))
		found = found && int64(slot) <= last
	}
	if !found {
		return 0, false
	}
	return startIndex + int32(slot)*int32(spacing), true
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
