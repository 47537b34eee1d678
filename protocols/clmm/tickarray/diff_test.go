package tickarray

import (
	"testing"

	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	pool := solana.NewWallet().PublicKey()

	t.Run("identical arrays", func(t *testing.T) {
		ta := New(pool, 0, 3)
		d, err := Diff(ta, ta.Clone())
		require.NoError(t, err)
		assert.True(t, d.IsEmpty())
	})

	t.Run("changed slots", func(t *testing.T) {
		old := New(pool, 0, 3)
		updated := old.Clone()
		initialize(t, updated, 1, 4, 40)
		updated.InitializedTickCount = 2
		updated.Touch(0)

		d, err := Diff(old, updated)
		require.NoError(t, err)
		assert.False(t, d.IsEmpty())
		require.Len(t, d.Changes, 2)
		assert.Equal(t, 4, d.Changes[0].Offset)
		assert.Equal(t, 40, d.Changes[1].Offset)
		assert.Equal(t, bignum.I128From64(1), d.Changes[1].New.LiquidityNet)
		assert.Equal(t, uint8(0), d.OldInitializedTickCount)
		assert.Equal(t, uint8(2), d.NewInitializedTickCount)
		assert.Equal(t, uint64(4), d.NewRecentEpoch)
	})

	t.Run("new array", func(t *testing.T) {
		created := New(pool, 60, 1)
		initialize(t, created, 1, 61)
		d, err := Diff(nil, created)
		require.NoError(t, err)
		require.Len(t, d.Changes, 1)
		assert.Equal(t, 1, d.Changes[0].Offset)
	})

	t.Run("different arrays", func(t *testing.T) {
		_, err := Diff(New(pool, 0, 0), New(pool, 60, 0))
		assert.ErrorIs(t, err, ErrAccountMismatch)
		_, err = Diff(New(pool, 0, 0), nil)
		assert.Error(t, err)
	})
}

func TestPatch(t *testing.T) {
	pool := solana.NewWallet().PublicKey()
	old := New(pool, 0, 3)
	initialize(t, old, 1, 10)
	old.InitializedTickCount = 1

	updated := old.Clone()
	initialize(t, updated, 1, 10, 50)
	updated.InitializedTickCount = 2
	updated.Touch(0)

	d, err := Diff(old, updated)
	require.NoError(t, err)

	t.Run("reproduces the new snapshot", func(t *testing.T) {
		got, err := Patch(old, d)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
		assert.Equal(t, uint8(1), old.InitializedTickCount)
	})

	t.Run("stale base", func(t *testing.T) {
		_, err := Patch(updated, d)
		assert.ErrorIs(t, err, ErrPatchConflict)
	})

	t.Run("conflicting slot", func(t *testing.T) {
		other := old.Clone()
		initialize(t, other, 1, 50)
		_, err := Patch(other, d)
		assert.ErrorIs(t, err, ErrPatchConflict)
	})

	t.Run("other array", func(t *testing.T) {
		_, err := Patch(New(pool, 60, 3), d)
		assert.ErrorIs(t, err, ErrPatchConflict)
	})
}
