// Package kvtest holds the behaviour every kv.DB backend must share.
package kvtest

import (
	"context"
	"testing"

	"github.com/defistate/clmm-core-go/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a backend produced by open. open is called once per subtest.
func Run(t *testing.T, open func(t *testing.T) kv.DB) {
	ctx := context.Background()

	t.Run("read missing key", func(t *testing.T) {
		db := open(t)
		_, err := db.Read(ctx, []byte("missing"))
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})

	t.Run("write then read", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Write(ctx, []byte("a"), []byte{1, 2, 3}))
		got, err := db.Read(ctx, []byte("a"))
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, got)

		require.NoError(t, db.Write(ctx, []byte("a"), []byte{4}))
		got, err = db.Read(ctx, []byte("a"))
		require.NoError(t, err)
		assert.Equal(t, []byte{4}, got)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Write(ctx, []byte("a"), []byte{1, 2, 3}))
		got, err := db.Read(ctx, []byte("a"))
		require.NoError(t, err)
		got[0] = 9
		again, err := db.Read(ctx, []byte("a"))
		require.NoError(t, err)
		assert.Equal(t, byte(1), again[0])
	})

	t.Run("delete", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Write(ctx, []byte("a"), []byte{1}))
		require.NoError(t, db.Delete(ctx, []byte("a")))
		_, err := db.Read(ctx, []byte("a"))
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})

	t.Run("batch", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Write(ctx, []byte("gone"), []byte{1}))
		err := db.Batch(ctx, []kv.BatchOperation{
			{Type: kv.BatchPut, Key: []byte("x"), Value: []byte("1")},
			{Type: kv.BatchPut, Key: []byte("y"), Value: []byte("2")},
			{Type: kv.BatchDelete, Key: []byte("gone")},
		})
		require.NoError(t, err)

		x, err := db.Read(ctx, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), x)
		y, err := db.Read(ctx, []byte("y"))
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), y)
		_, err = db.Read(ctx, []byte("gone"))
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})

	t.Run("batch rejects unknown operations", func(t *testing.T) {
		db := open(t)
		err := db.Batch(ctx, []kv.BatchOperation{
			{Type: kv.BatchPut, Key: []byte("x"), Value: []byte("1")},
			{Type: kv.BatchOpType(42), Key: []byte("y")},
		})
		require.Error(t, err)
		_, err = db.Read(ctx, []byte("x"))
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})

	t.Run("closed", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Close())
		_, err := db.Read(ctx, []byte("a"))
		assert.ErrorIs(t, err, kv.ErrDBClosed)
		assert.ErrorIs(t, db.Write(ctx, []byte("a"), []byte{1}), kv.ErrDBClosed)
	})
}
