package bignum

import (
	"math/big"
	"math/bits"

	"github.com/holiman/uint256"
)

// U512 is a 512-bit unsigned integer stored as little-endian 64-bit limbs.
// It only exists to hold the full product of two 256-bit values.
type U512 [8]uint64

// U512FromU256 widens x.
func U512FromU256(x *uint256.Int) U512 {
	return U512{x[0], x[1], x[2], x[3]}
}

// MulU256 returns the exact product a*b.
func MulU256(a, b *uint256.Int) U512 {
	var z U512
	for i := 0; i < 4; i++ {
		var carry uint64
		for j := 0; j < 4; j++ {
			hi, lo := bits.Mul64(a[i], b[j])
			var c uint64
			lo, c = bits.Add64(lo, z[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			z[i+j] = lo
			carry = hi
		}
		z[i+4] = carry
	}
	return z
}

// Add returns x+y and whether the sum wrapped.
func (x U512) Add(y U512) (U512, bool) {
	var z U512
	var carry uint64
	for i := range z {
		z[i], carry = bits.Add64(x[i], y[i], carry)
	}
	return z, carry != 0
}

// Sub returns x-y and whether the difference wrapped.
func (x U512) Sub(y U512) (U512, bool) {
	var z U512
	var borrow uint64
	for i := range z {
		z[i], borrow = bits.Sub64(x[i], y[i], borrow)
	}
	return z, borrow != 0
}

// Lsh returns x<<n. Bits shifted past bit 511 are dropped.
func (x U512) Lsh(n uint) U512 {
	var z U512
	if n >= 512 {
		return z
	}
	words, shift := int(n/64), n%64
	for i := 7; i >= words; i-- {
		z[i] = x[i-words] << shift
		if shift > 0 && i-words-1 >= 0 {
			z[i] |= x[i-words-1] >> (64 - shift)
		}
	}
	return z
}

// Rsh returns x>>n.
func (x U512) Rsh(n uint) U512 {
	var z U512
	if n >= 512 {
		return z
	}
	words, shift := int(n/64), n%64
	for i := 0; i < 8-words; i++ {
		z[i] = x[i+words] >> shift
		if shift > 0 && i+words+1 < 8 {
			z[i] |= x[i+words+1] << (64 - shift)
		}
	}
	return z
}

// Cmp returns -1, 0 or +1 depending on whether x is less than, equal to or greater than y.
func (x U512) Cmp(y U512) int {
	for i := 7; i >= 0; i-- {
		switch {
		case x[i] < y[i]:
			return -1
		case x[i] > y[i]:
			return 1
		}
	}
	return 0
}

func (x U512) IsZero() bool {
	return x == U512{}
}

// BitLen returns the number of bits required to represent x.
func (x U512) BitLen() int {
	for i := 7; i >= 0; i-- {
		if x[i] != 0 {
			return i*64 + bits.Len64(x[i])
		}
	}
	return 0
}

// QuoRem returns x/y and x%y. A zero divisor panics.
func (x U512) QuoRem(y U512) (q, r U512) {
	mustNonZero(y.IsZero())
	if x.Cmp(y) < 0 {
		return U512{}, x
	}
	shift := x.BitLen() - y.BitLen()
	d := y.Lsh(uint(shift))
	r = x
	for i := shift; i >= 0; i-- {
		if r.Cmp(d) >= 0 {
			r, _ = r.Sub(d)
			q[i/64] |= 1 << (uint(i) % 64)
		}
		d = d.Rsh(1)
	}
	return q, r
}

// Narrow converts x to a 256-bit value. ok is false if x does not fit.
func (x U512) Narrow() (*uint256.Int, bool) {
	if x[4]|x[5]|x[6]|x[7] != 0 {
		return nil, false
	}
	return &uint256.Int{x[0], x[1], x[2], x[3]}, true
}

func (x U512) Big() *big.Int {
	b := make([]byte, 64)
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			b[63-(i*8+j)] = byte(x[i] >> (8 * j))
		}
	}
	return new(big.Int).SetBytes(b)
}
