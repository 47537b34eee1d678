package tickarray

import (
	"bytes"
	"fmt"

	"github.com/defistate/clmm-core-go/protocols/clmm"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// Record layout, little endian.
const (
	TickStateSize = 4 + 16 + 16 + tickStatePadding
	AccountSize   = 8 + 32 + 4 + TICK_ARRAY_SIZE*TickStateSize + 1 + 3 + 8 + accountPadding

	tickStatePadding = 52
	countPadding     = 3
	accountPadding   = 112
)

var zeros [accountPadding]byte

func encodeTickState(enc *bin.Encoder, t *clmm.TickState) error {
	if err := enc.WriteInt32(t.Tick, bin.LE); err != nil {
		return err
	}
	var buf [16]byte
	t.LiquidityNet.PutBytes(buf[:])
	if err := enc.WriteBytes(buf[:], false); err != nil {
		return err
	}
	t.LiquidityGross.PutBytes(buf[:])
	if err := enc.WriteBytes(buf[:], false); err != nil {
		return err
	}
	return enc.WriteBytes(zeros[:tickStatePadding], false)
}

// Encode serializes ta into its AccountSize byte record.
func (ta *TickArray) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(AccountSize)
	enc := bin.NewBinEncoder(buf)

	if err := enc.WriteBytes(Discriminator[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(ta.PoolID[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteInt32(ta.StartTickIndex, bin.LE); err != nil {
		return nil, err
	}
	for i := range ta.Ticks {
		if err := encodeTickState(enc, &ta.Ticks[i]); err != nil {
			return nil, fmt.Errorf("encode tick %d: %w", i, err)
		}
	}
	if err := enc.WriteUint8(ta.InitializedTickCount); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(zeros[:countPadding], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(ta.RecentEpoch, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(zeros[:], false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeTickState(dec *bin.Decoder, t *clmm.TickState) error {
	tick, err := dec.ReadInt32(bin.LE)
	if err != nil {
		return err
	}
	net, err := dec.ReadNBytes(16)
	if err != nil {
		return err
	}
	gross, err := dec.ReadNBytes(16)
	if err != nil {
		return err
	}
	if err := dec.SkipBytes(tickStatePadding); err != nil {
		return err
	}
	t.Tick = tick
	t.LiquidityNet = bignum.I128FromBytes(net)
	t.LiquidityGross = uint128.FromBytes(gross)
	return nil
}

// Decode parses a record produced by Encode.
func Decode(data []byte) (*TickArray, error) {
	if len(data) != AccountSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAccountData, len(data), AccountSize)
	}
	if !bytes.Equal(data[:8], Discriminator[:]) {
		return nil, fmt.Errorf("%w: bad discriminator %x", ErrInvalidAccountData, data[:8])
	}

	dec := bin.NewBinDecoder(data[8:])
	ta := &TickArray{}
	pool, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	ta.PoolID = solana.PublicKeyFromBytes(pool)
	if ta.StartTickIndex, err = dec.ReadInt32(bin.LE); err != nil {
		return nil, err
	}
	for i := range ta.Ticks {
		if err := decodeTickState(dec, &ta.Ticks[i]); err != nil {
			return nil, fmt.Errorf("decode tick %d: %w", i, err)
		}
	}
	if ta.InitializedTickCount, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	if err := dec.SkipBytes(countPadding); err != nil {
		return nil, err
	}
	if ta.RecentEpoch, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	return ta, nil
}
