package accountstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/defistate/clmm-core-go/storage/compression"
	"github.com/defistate/clmm-core-go/storage/kv"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var keyPrefix = []byte("acct/")

const (
	codecRaw uint8 = 0
	codecLZ4 uint8 = 1

	// codec | owner | raw length
	recordHeaderSize = 1 + 32 + 4
)

var codecs = map[uint8]compression.Compressor{
	codecRaw: compression.NoCompressor{},
	codecLZ4: compression.LZ4Compressor{},
}

var codecIDs = map[string]uint8{
	"none": codecRaw,
	"lz4":  codecLZ4,
}

// KVStore implements Store on top of any kv.DB. Records are written as
//
//	codec u8 | owner [32]byte | rawLen u32 LE | payload
//
// where codec names the payload encoding.
type KVStore struct {
	db         kv.DB
	compressor compression.Compressor
}

// NewKVStore wraps db. A nil compressor stores payloads as is.
func NewKVStore(db kv.DB, compressor compression.Compressor) *KVStore {
	if compressor == nil {
		compressor = compression.NoCompressor{}
	}
	return &KVStore{db: db, compressor: compressor}
}

func accountKey(address solana.PublicKey) []byte {
	return append(append([]byte(nil), keyPrefix...), address[:]...)
}

func (s *KVStore) encode(account Account) ([]byte, error) {
	payload := account.Data
	codec := codecRaw
	if compressed, err := s.compressor.Compress(account.Data); err == nil {
		payload = compressed
		codec = codecIDs[s.compressor.Name()]
	} else if !errors.Is(err, compression.ErrIncompressible) {
		return nil, err
	}

	buf := new(bytes.Buffer)
	buf.Grow(recordHeaderSize + len(payload))
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(codec); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(account.Owner[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(uint32(len(account.Data)), bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(payload, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *KVStore) decode(record []byte) (Account, error) {
	if len(record) < recordHeaderSize {
		return Account{}, fmt.Errorf("account record too short: %d bytes", len(record))
	}
	dec := bin.NewBinDecoder(record)
	codec, err := dec.ReadUint8()
	if err != nil {
		return Account{}, err
	}
	owner, err := dec.ReadNBytes(32)
	if err != nil {
		return Account{}, err
	}
	rawLen, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return Account{}, err
	}
	payload := record[recordHeaderSize:]

	c, ok := codecs[codec]
	if !ok {
		return Account{}, fmt.Errorf("unknown record codec %d", codec)
	}
	data, err := c.Decompress(payload, int(rawLen))
	if err != nil {
		return Account{}, err
	}
	return Account{Owner: solana.PublicKeyFromBytes(owner), Data: data}, nil
}

func (s *KVStore) Exists(ctx context.Context, address solana.PublicKey) (bool, error) {
	_, err := s.db.Read(ctx, accountKey(address))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, kv.ErrKeyNotFound):
		return false, nil
	}
	return false, err
}

func (s *KVStore) Allocate(ctx context.Context, address solana.PublicKey, size int, owner solana.PublicKey) (Account, error) {
	if owner.IsZero() {
		return Account{}, ErrZeroOwner
	}
	exists, err := s.Exists(ctx, address)
	if err != nil {
		return Account{}, err
	}
	if exists {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountExists, address)
	}

	account := Account{Owner: owner, Data: make([]byte, size)}
	record, err := s.encode(account)
	if err != nil {
		return Account{}, err
	}
	if err := s.db.Write(ctx, accountKey(address), record); err != nil {
		return Account{}, err
	}
	return account, nil
}

func (s *KVStore) Load(ctx context.Context, address solana.PublicKey) (Account, error) {
	record, err := s.db.Read(ctx, accountKey(address))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
		}
		return Account{}, err
	}
	account, err := s.decode(record)
	if err != nil {
		return Account{}, fmt.Errorf("decode account %s: %w", address, err)
	}
	return account, nil
}

// checkWrite ensures the account exists and keeps its size.
func (s *KVStore) checkWrite(ctx context.Context, address solana.PublicKey, account Account) ([]byte, error) {
	current, err := s.Load(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(current.Data) != len(account.Data) {
		return nil, fmt.Errorf("%w: %s has %d bytes, got %d", ErrSizeMismatch, address, len(current.Data), len(account.Data))
	}
	return s.encode(account)
}

func (s *KVStore) Store(ctx context.Context, address solana.PublicKey, account Account) error {
	record, err := s.checkWrite(ctx, address, account)
	if err != nil {
		return err
	}
	return s.db.Write(ctx, accountKey(address), record)
}

func (s *KVStore) StoreBatch(ctx context.Context, writes []Write) error {
	ops := make([]kv.BatchOperation, 0, len(writes))
	for _, w := range writes {
		record, err := s.checkWrite(ctx, w.Address, w.Account)
		if err != nil {
			return err
		}
		ops = append(ops, kv.BatchOperation{Type: kv.BatchPut, Key: accountKey(w.Address), Value: record})
	}
	return s.db.Batch(ctx, ops)
}
