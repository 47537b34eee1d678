package memory

import (
	"testing"

	"github.com/defistate/clmm-core-go/storage/kv"
	"github.com/defistate/clmm-core-go/storage/kv/kvtest"
)

func TestDB(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.DB {
		return NewDB()
	})
}
