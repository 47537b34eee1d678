package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/defistate/clmm-core-go/storage/kv"
	"github.com/defistate/clmm-core-go/storage/kv/kvtest"
	"github.com/stretchr/testify/require"
)

func TestDB(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.DB {
		db, err := Open(context.Background(), filepath.Join(t.TempDir(), "accounts.sqlite"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return db
	})
}
