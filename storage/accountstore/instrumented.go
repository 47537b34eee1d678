package accountstore

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentedConfig holds the dependencies of an instrumented store.
type InstrumentedConfig struct {
	Registry prometheus.Registerer
	Logger   Logger
}

// validate checks if the configuration is valid, ensuring required dependencies are present.
func (c *InstrumentedConfig) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// Instrumented records latency and failures of another Store.
type Instrumented struct {
	next    Store
	metrics *Metrics
	logger  Logger
}

func NewInstrumented(next Store, cfg *InstrumentedConfig) (*Instrumented, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Instrumented{
		next:    next,
		metrics: NewMetrics(cfg.Registry),
		logger:  cfg.Logger,
	}, nil
}

func (s *Instrumented) observe(op string, address solana.PublicKey, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrAccountNotFound) {
		s.logger.Debug("account not found", "op", op, "address", address.String())
		return
	}
	s.metrics.opErrors.WithLabelValues(op).Inc()
	s.logger.Error("account store operation failed", "op", op, "address", address.String(), "error", err)
}

func (s *Instrumented) Exists(ctx context.Context, address solana.PublicKey) (bool, error) {
	timer := prometheus.NewTimer(s.metrics.opDuration.WithLabelValues(opExists))
	defer timer.ObserveDuration()

	ok, err := s.next.Exists(ctx, address)
	s.observe(opExists, address, err)
	return ok, err
}

func (s *Instrumented) Allocate(ctx context.Context, address solana.PublicKey, size int, owner solana.PublicKey) (Account, error) {
	timer := prometheus.NewTimer(s.metrics.opDuration.WithLabelValues(opAllocate))
	defer timer.ObserveDuration()

	account, err := s.next.Allocate(ctx, address, size, owner)
	s.observe(opAllocate, address, err)
	return account, err
}

func (s *Instrumented) Load(ctx context.Context, address solana.PublicKey) (Account, error) {
	timer := prometheus.NewTimer(s.metrics.opDuration.WithLabelValues(opLoad))
	defer timer.ObserveDuration()

	account, err := s.next.Load(ctx, address)
	s.observe(opLoad, address, err)
	return account, err
}

func (s *Instrumented) Store(ctx context.Context, address solana.PublicKey, account Account) error {
	timer := prometheus.NewTimer(s.metrics.opDuration.WithLabelValues(opStore))
	defer timer.ObserveDuration()

	err := s.next.Store(ctx, address, account)
	s.observe(opStore, address, err)
	return err
}

func (s *Instrumented) StoreBatch(ctx context.Context, writes []Write) error {
	timer := prometheus.NewTimer(s.metrics.opDuration.WithLabelValues(opStoreBatch))
	defer timer.ObserveDuration()

	err := s.next.StoreBatch(ctx, writes)
	if err != nil {
		var address solana.PublicKey
		if len(writes) > 0 {
			address = writes[0].Address
		}
		s.observe(opStoreBatch, address, err)
	}
	return err
}
