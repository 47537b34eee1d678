package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/defistate/clmm-core-go/cmd/clmm/config"
	"github.com/defistate/clmm-core-go/protocols/clmm/position"
	"github.com/defistate/clmm-core-go/protocols/clmm/tickarray"
	"github.com/defistate/clmm-core-go/storage/accountstore"
	"github.com/defistate/clmm-core-go/storage/compression"
	"github.com/defistate/clmm-core-go/storage/kv"
	"github.com/defistate/clmm-core-go/storage/kv/leveldb"
	"github.com/defistate/clmm-core-go/storage/kv/memory"
	"github.com/defistate/clmm-core-go/storage/kv/pebble"
	"github.com/defistate/clmm-core-go/storage/kv/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

func openDB(ctx context.Context, cfg config.StoreConfig) (kv.DB, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewDB(), nil
	case config.BackendPebble:
		return pebble.Open(cfg.Path, nil)
	case config.BackendLevelDB:
		return leveldb.Open(cfg.Path)
	case config.BackendSQLite:
		return sqlite.Open(ctx, cfg.Path)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// openStore layers the configured backend, cache and instrumentation.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger, reg prometheus.Registerer) (accountstore.Store, func() error, error) {
	compressor, err := compression.ByName(cfg.Compression)
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var store accountstore.Store = accountstore.NewKVStore(db, compressor)
	if cfg.CacheSize > 0 {
		cached, err := accountstore.NewCached(store, cfg.CacheSize)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		store = cached
	}
	instrumented, err := accountstore.NewInstrumented(store, &accountstore.InstrumentedConfig{
		Registry: reg,
		Logger:   logger.With("component", "accountstore"),
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Debug("account store opened", "backend", cfg.Backend, "path", cfg.Path, "compression", compressor.Name())
	return instrumented, db.Close, nil
}

// managers wires the tick array and position managers over the configured store.
type managers struct {
	arrays    *tickarray.Manager
	positions *position.Manager
	close     func() error
}

func openManagers(ctx context.Context, e *env) (*managers, error) {
	programID, err := e.cfg.RequireProgramID()
	if err != nil {
		return nil, err
	}
	store, closeStore, err := openStore(ctx, e.cfg.Store, e.logger, e.registry)
	if err != nil {
		return nil, err
	}
	arrays, err := tickarray.NewManager(&tickarray.ManagerConfig{
		Store:     store,
		ProgramID: programID,
		Logger:    e.logger.With("component", "tickarray"),
	})
	if err != nil {
		closeStore()
		return nil, err
	}
	positions, err := position.NewManager(&position.ManagerConfig{
		Arrays: arrays,
		Logger: e.logger.With("component", "position"),
	})
	if err != nil {
		closeStore()
		return nil, err
	}
	return &managers{arrays: arrays, positions: positions, close: closeStore}, nil
}
