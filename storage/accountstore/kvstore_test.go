package accountstore

import (
	"context"
	"testing"

	"github.com/defistate/clmm-core-go/storage/compression"
	"github.com/defistate/clmm-core-go/storage/kv"
	"github.com/defistate/clmm-core-go/storage/kv/memory"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	return solana.NewWallet().PublicKey()
}

func TestKVStore(t *testing.T) {
	ctx := context.Background()

	for _, name := range []string{"none", "lz4"} {
		t.Run(name, func(t *testing.T) {
			c, err := compression.ByName(name)
			require.NoError(t, err)
			db := memory.NewDB()
			store := NewKVStore(db, c)
			owner, addr := newKey(t), newKey(t)

			exists, err := store.Exists(ctx, addr)
			require.NoError(t, err)
			assert.False(t, exists)

			_, err = store.Load(ctx, addr)
			assert.ErrorIs(t, err, ErrAccountNotFound)

			account, err := store.Allocate(ctx, addr, 5448, owner)
			require.NoError(t, err)
			assert.Equal(t, owner, account.Owner)
			assert.Equal(t, make([]byte, 5448), account.Data)

			exists, err = store.Exists(ctx, addr)
			require.NoError(t, err)
			assert.True(t, exists)

			_, err = store.Allocate(ctx, addr, 5448, owner)
			assert.ErrorIs(t, err, ErrAccountExists)

			account.Data[10] = 0xAB
			require.NoError(t, store.Store(ctx, addr, account))

			loaded, err := store.Load(ctx, addr)
			require.NoError(t, err)
			assert.Equal(t, account, loaded)

			raw, err := db.Read(ctx, accountKey(addr))
			require.NoError(t, err)
			if name == "lz4" {
				assert.Equal(t, codecLZ4, raw[0])
				assert.Less(t, len(raw), 5448)
			} else {
				assert.Equal(t, codecRaw, raw[0])
				assert.Len(t, raw, recordHeaderSize+5448)
			}
		})
	}

	t.Run("records are readable across compressor settings", func(t *testing.T) {
		db := memory.NewDB()
		owner, addr := newKey(t), newKey(t)
		_, err := NewKVStore(db, compression.LZ4Compressor{}).Allocate(ctx, addr, 1024, owner)
		require.NoError(t, err)

		loaded, err := NewKVStore(db, nil).Load(ctx, addr)
		require.NoError(t, err)
		assert.Len(t, loaded.Data, 1024)
	})

	t.Run("store requires allocation", func(t *testing.T) {
		store := NewKVStore(memory.NewDB(), nil)
		err := store.Store(ctx, newKey(t), Account{Owner: newKey(t), Data: []byte{1}})
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("size never changes", func(t *testing.T) {
		store := NewKVStore(memory.NewDB(), nil)
		owner, addr := newKey(t), newKey(t)
		_, err := store.Allocate(ctx, addr, 8, owner)
		require.NoError(t, err)
		err = store.Store(ctx, addr, Account{Owner: owner, Data: make([]byte, 9)})
		assert.ErrorIs(t, err, ErrSizeMismatch)
	})

	t.Run("zero owner", func(t *testing.T) {
		store := NewKVStore(memory.NewDB(), nil)
		_, err := store.Allocate(ctx, newKey(t), 8, solana.PublicKey{})
		assert.ErrorIs(t, err, ErrZeroOwner)
	})

	t.Run("batch is all or nothing", func(t *testing.T) {
		store := NewKVStore(memory.NewDB(), nil)
		owner, a, b := newKey(t), newKey(t), newKey(t)
		_, err := store.Allocate(ctx, a, 4, owner)
		require.NoError(t, err)

		err = store.StoreBatch(ctx, []Write{
			{Address: a, Account: Account{Owner: owner, Data: []byte{1, 2, 3, 4}}},
			{Address: b, Account: Account{Owner: owner, Data: []byte{1, 2, 3, 4}}},
		})
		assert.ErrorIs(t, err, ErrAccountNotFound)

		loaded, err := store.Load(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 0}, loaded.Data)

		_, err = store.Allocate(ctx, b, 4, owner)
		require.NoError(t, err)
		require.NoError(t, store.StoreBatch(ctx, []Write{
			{Address: a, Account: Account{Owner: owner, Data: []byte{1, 2, 3, 4}}},
			{Address: b, Account: Account{Owner: owner, Data: []byte{5, 6, 7, 8}}},
		}))
		loaded, err = store.Load(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []byte{5, 6, 7, 8}, loaded.Data)
	})

	t.Run("corrupt record", func(t *testing.T) {
		db := memory.NewDB()
		addr := newKey(t)
		require.NoError(t, db.Write(ctx, accountKey(addr), []byte{9, 9}))
		_, err := NewKVStore(db, nil).Load(ctx, addr)
		assert.Error(t, err)

		record := make([]byte, recordHeaderSize)
		record[0] = 77
		require.NoError(t, db.Write(ctx, accountKey(addr), record))
		_, err = NewKVStore(db, nil).Load(ctx, addr)
		assert.ErrorContains(t, err, "unknown record codec")
	})

	t.Run("backend errors surface", func(t *testing.T) {
		db := memory.NewDB()
		require.NoError(t, db.Close())
		_, err := NewKVStore(db, nil).Exists(ctx, newKey(t))
		assert.ErrorIs(t, err, kv.ErrDBClosed)
	})
}

func TestDeriver(t *testing.T) {
	programID := newKey(t)
	pool := newKey(t)
	d := NewDeriver(programID)
	assert.Equal(t, programID, d.ProgramID())

	a, bump, err := d.Derive([]byte("tick_array"), pool[:], Int32Seed(-60))
	require.NoError(t, err)
	again, _, err := d.Derive([]byte("tick_array"), pool[:], Int32Seed(-60))
	require.NoError(t, err)
	assert.Equal(t, a, again)

	check, err := solana.CreateProgramAddress([][]byte{[]byte("tick_array"), pool[:], Int32Seed(-60), {bump}}, programID)
	require.NoError(t, err)
	assert.Equal(t, a, check)

	other, _, err := d.Derive([]byte("tick_array"), pool[:], Int32Seed(0))
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	otherProgram, _, err := NewDeriver(newKey(t)).Derive([]byte("tick_array"), pool[:], Int32Seed(-60))
	require.NoError(t, err)
	assert.NotEqual(t, a, otherProgram)
}

func TestInt32Seed(t *testing.T) {
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xc4}, Int32Seed(-60))
	assert.Equal(t, []byte{0, 0, 0x01, 0x2c}, Int32Seed(300))
}
