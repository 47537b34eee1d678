package bitset

import "math/bits"

// BitSet is a fixed-size set of small non-negative integers, one bit each.
type BitSet []uint64

// NewBitSet returns an empty set able to hold indices below size.
func NewBitSet(size uint64) BitSet {
	return make(BitSet, (size+63)/64)
}

func locate(index uint64) (word uint64, mask uint64) {
	return index / 64, uint64(1) << (index % 64)
}

func (b BitSet) IsSet(index uint64) bool {
	word, mask := locate(index)
	return b[word]&mask != 0
}

func (b BitSet) Set(index uint64) {
	word, mask := locate(index)
	b[word] |= mask
}

func (b BitSet) Unset(index uint64) {
	word, mask := locate(index)
	b[word] &^= mask
}

// Count returns the number of set bits.
func (b BitSet) Count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// NextSet returns the lowest set index >= from.
func (b BitSet) NextSet(from uint64) (uint64, bool) {
	word := from / 64
	if word >= uint64(len(b)) {
		return 0, false
	}
	if w := b[word] >> (from % 64); w != 0 {
		return from + uint64(bits.TrailingZeros64(w)), true
	}
	for word++; word < uint64(len(b)); word++ {
		if b[word] != 0 {
			return word*64 + uint64(bits.TrailingZeros64(b[word])), true
		}
	}
	return 0, false
}

// PrevSet returns the highest set index <= from.
func (b BitSet) PrevSet(from uint64) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	word := from / 64
	if word >= uint64(len(b)) {
		word = uint64(len(b)) - 1
		from = word*64 + 63
	}
	if w := b[word] << (63 - from%64); w != 0 {
		return from - uint64(bits.LeadingZeros64(w)), true
	}
	for word > 0 {
		word--
		if b[word] != 0 {
			return word*64 + 63 - uint64(bits.LeadingZeros64(b[word])), true
		}
	}
	return 0, false
}
