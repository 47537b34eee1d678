package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BackendMemory  = "memory"
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendSQLite  = "sqlite"
)

var ErrProgramIDRequired = errors.New("program-id is required")

// flagKeys maps flag names to their nested config keys.
var flagKeys = map[string]string{
	"store-backend":     "store.backend",
	"store-path":        "store.path",
	"store-cache-size":  "store.cache-size",
	"store-compression": "store.compression",
}

// StoreConfig selects and tunes the account store.
type StoreConfig struct {
	Backend     string
	Path        string
	CacheSize   int
	Compression string
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	// ProgramID owns every derived account. It is zero when unset.
	ProgramID solana.PublicKey
	Store     StoreConfig
	LogLevel  slog.Level
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("program-id", "")
	v.SetDefault("store.backend", BackendPebble)
	v.SetDefault("store.path", "./data/accounts")
	v.SetDefault("store.cache-size", 1024)
	v.SetDefault("store.compression", "lz4")
	v.SetDefault("log-level", "info")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
		for _, name := range []string{"program-id", "log-level"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(name, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("clmm")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Store: StoreConfig{
			Backend:     strings.ToLower(v.GetString("store.backend")),
			Path:        v.GetString("store.path"),
			CacheSize:   v.GetInt("store.cache-size"),
			Compression: strings.ToLower(v.GetString("store.compression")),
		},
	}
	if id := strings.TrimSpace(v.GetString("program-id")); id != "" {
		pk, err := solana.PublicKeyFromBase58(id)
		if err != nil {
			return Config{}, fmt.Errorf("program-id: %w", err)
		}
		cfg.ProgramID = pk
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return Config{}, fmt.Errorf("log-level: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate rejects unknown backends and compressors.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPebble, BackendLevelDB, BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("config: store.path is required for the %s backend", c.Store.Backend)
		}
	default:
		return fmt.Errorf("config: unknown store.backend %q", c.Store.Backend)
	}
	switch c.Store.Compression {
	case "", "none", "lz4":
	default:
		return fmt.Errorf("config: unknown store.compression %q", c.Store.Compression)
	}
	if c.Store.CacheSize < 0 {
		return errors.New("config: store.cache-size cannot be negative")
	}
	return nil
}

// RequireProgramID returns the program id or ErrProgramIDRequired.
func (c Config) RequireProgramID() (solana.PublicKey, error) {
	if c.ProgramID.IsZero() {
		return solana.PublicKey{}, ErrProgramIDRequired
	}
	return c.ProgramID, nil
}
