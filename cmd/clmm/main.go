package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/defistate/clmm-core-go/cmd/clmm/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	// Create a context that cancels when the OS sends an interrupt (Ctrl+C) or termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "clmm",
		Short:        "Concentrated liquidity tick math and tick array tooling",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("program-id", "", "program id owning tick arrays (base58)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("store-backend", config.BackendPebble, "account store backend (memory, pebble, leveldb, sqlite)")
	root.PersistentFlags().String("store-path", "./data/accounts", "account store location")
	root.PersistentFlags().Int("store-cache-size", 1024, "accounts kept in memory, 0 disables the cache")
	root.PersistentFlags().String("store-compression", "lz4", "record compression (none, lz4)")

	root.AddCommand(newTickCmd(), newAmountsCmd(), newArrayCmd(), newPositionCmd())
	return root
}

// metricsRegistry returns the registerer store metrics go to.
var metricsRegistry = func() prometheus.Registerer { return prometheus.DefaultRegisterer }

// env is what a command needs beyond its own flags.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	registry prometheus.Registerer
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return &env{
		cfg:      cfg,
		logger:   logger,
		registry: metricsRegistry(),
	}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
