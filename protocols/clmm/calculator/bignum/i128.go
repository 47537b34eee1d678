package bignum

import (
	"math"
	"math/big"

	"lukechampine.com/uint128"
)

// I128 is a signed 128-bit integer in two's complement form.
type I128 struct {
	u uint128.Uint128
}

var (
	MaxI128 = I128{uint128.New(math.MaxUint64, math.MaxInt64)}
	MinI128 = I128{uint128.New(0, 1<<63)}

	minI128Big = MinI128.Big()
	maxI128Big = MaxI128.Big()
)

// I128From64 sign-extends v.
func I128From64(v int64) I128 {
	var hi uint64
	if v < 0 {
		hi = math.MaxUint64
	}
	return I128{uint128.New(uint64(v), hi)}
}

// I128FromUint128 converts u to a signed value. ok is false if u > MaxI128.
func I128FromUint128(u uint128.Uint128) (I128, bool) {
	if u.Hi>>63 != 0 {
		return I128{}, false
	}
	return I128{u}, true
}

// I128FromBig converts b. ok is false if b is outside [MinI128, MaxI128].
func I128FromBig(b *big.Int) (I128, bool) {
	if b.Cmp(minI128Big) < 0 || b.Cmp(maxI128Big) > 0 {
		return I128{}, false
	}
	if b.Sign() >= 0 {
		return I128{uint128.FromBig(new(big.Int).Set(b))}, true
	}
	return I128{uint128.FromBig(new(big.Int).Neg(b))}.Neg(), true
}

// I128FromBytes decodes a little-endian two's complement value from b[:16].
func I128FromBytes(b []byte) I128 {
	return I128{uint128.FromBytes(b)}
}

// PutBytes stores x into b[:16] in little-endian two's complement form.
func (x I128) PutBytes(b []byte) {
	x.u.PutBytes(b)
}

// MulInt64 returns the exact product a*b.
func MulInt64(a, b int64) I128 {
	neg := (a < 0) != (b < 0)
	p := uint128.From64(absInt64(a)).Mul64(absInt64(b))
	r := I128{p}
	if neg {
		return r.Neg()
	}
	return r
}

func absInt64(v int64) uint64 {
	if v < 0 {
		return ^uint64(v) + 1
	}
	return uint64(v)
}

func (x I128) IsNeg() bool {
	return x.u.Hi>>63 != 0
}

func (x I128) IsZero() bool {
	return x.u.IsZero()
}

// Sign returns -1, 0 or +1.
func (x I128) Sign() int {
	switch {
	case x.IsNeg():
		return -1
	case x.IsZero():
		return 0
	}
	return 1
}

// Neg returns -x. MinI128 negates to itself.
func (x I128) Neg() I128 {
	return I128{uint128.Zero.SubWrap(x.u)}
}

// Abs returns |x| as an unsigned value, which is exact for MinI128.
func (x I128) Abs() uint128.Uint128 {
	if x.IsNeg() {
		return x.Neg().u
	}
	return x.u
}

// Bits returns the raw two's complement representation.
func (x I128) Bits() uint128.Uint128 {
	return x.u
}

// Add returns x+y. ok is false on signed overflow.
func (x I128) Add(y I128) (I128, bool) {
	s := I128{x.u.AddWrap(y.u)}
	if x.IsNeg() == y.IsNeg() && s.IsNeg() != x.IsNeg() {
		return I128{}, false
	}
	return s, true
}

// Sub returns x-y. ok is false on signed overflow.
func (x I128) Sub(y I128) (I128, bool) {
	d := I128{x.u.SubWrap(y.u)}
	if x.IsNeg() != y.IsNeg() && d.IsNeg() != x.IsNeg() {
		return I128{}, false
	}
	return d, true
}

// Rsh returns x>>n with sign extension, i.e. floor(x / 2^n).
func (x I128) Rsh(n uint) I128 {
	if !x.IsNeg() {
		return I128{x.u.Rsh(n)}
	}
	inv := uint128.Max.Xor(x.u).Rsh(n)
	return I128{uint128.Max.Xor(inv)}
}

// Cmp returns -1, 0 or +1 depending on whether x is less than, equal to or greater than y.
func (x I128) Cmp(y I128) int {
	if x.IsNeg() != y.IsNeg() {
		if x.IsNeg() {
			return -1
		}
		return 1
	}
	return x.u.Cmp(y.u)
}

// Int64 narrows x. ok is false if x does not fit.
func (x I128) Int64() (int64, bool) {
	v := int64(x.u.Lo)
	if I128From64(v) != x {
		return 0, false
	}
	return v, true
}

func (x I128) Big() *big.Int {
	if x.IsNeg() {
		return new(big.Int).Neg(x.Abs().Big())
	}
	return x.u.Big()
}

func (x I128) String() string {
	return x.Big().String()
}

func (x I128) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}
