package tickarray

import (
	"context"
	"errors"
	"fmt"

	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/tickmath"
	"github.com/defistate/clmm-core-go/storage/accountstore"
	"github.com/gagliardetto/solana-go"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Status tells whether GetOrCreate found or created an array.
type Status int

const (
	StatusExisting Status = iota
	StatusCreated
)

func (s Status) String() string {
	switch s {
	case StatusExisting:
		return "existing"
	case StatusCreated:
		return "created"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Lookup is the result of GetOrCreate.
type Lookup struct {
	Status  Status
	Address solana.PublicKey
	Array   *TickArray
}

// ManagerConfig holds the dependencies of a Manager.
type ManagerConfig struct {
	Store     accountstore.Store
	ProgramID solana.PublicKey
	Logger    Logger
	// Epoch is the external freshness source. When nil RecentEpoch only
	// counts mutations.
	Epoch func() uint64
}

// validate checks if the configuration is valid, ensuring required dependencies are present.
func (c *ManagerConfig) validate() error {
	if c.Store == nil {
		return errors.New("config: Store cannot be nil")
	}
	if c.ProgramID.IsZero() {
		return errors.New("config: ProgramID cannot be zero")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// Manager locates, creates and persists tick arrays in an account store.
// Callers serialize mutations of a single array.
type Manager struct {
	store   accountstore.Store
	deriver accountstore.Deriver
	logger  Logger
	epoch   func() uint64
}

func NewManager(cfg *ManagerConfig) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	epoch := cfg.Epoch
	if epoch == nil {
		epoch = func() uint64 { return 0 }
	}
	return &Manager{
		store:   cfg.Store,
		deriver: accountstore.NewDeriver(cfg.ProgramID),
		logger:  cfg.Logger,
		epoch:   epoch,
	}, nil
}

// Epoch returns the current value of the freshness source.
func (m *Manager) Epoch() uint64 {
	return m.epoch()
}

// Address derives the account address of the array of pool starting at startIndex.
func (m *Manager) Address(pool solana.PublicKey, startIndex int32) (solana.PublicKey, error) {
	addr, _, err := m.deriver.Derive(Seed, pool[:], accountstore.Int32Seed(startIndex))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("tick array %d of pool %s: %w", startIndex, pool, err)
	}
	return addr, nil
}

// GetOrCreate returns the array of pool starting at startIndex, allocating and
// initializing it when it does not exist yet. Calling it again for the same
// array returns StatusExisting. An account that was allocated but never
// initialized is initialized here, so an interrupted creation can be retried.
func (m *Manager) GetOrCreate(ctx context.Context, pool solana.PublicKey, startIndex int32, tickSpacing uint16) (Lookup, error) {
	if !CheckIsValidStartIndex(startIndex, tickSpacing) {
		return Lookup{}, fmt.Errorf("%w: %d is not an array start for spacing %d", tickmath.ErrInvalidTickRange, startIndex, tickSpacing)
	}
	addr, err := m.Address(pool, startIndex)
	if err != nil {
		return Lookup{}, err
	}

	exists, err := m.store.Exists(ctx, addr)
	if err != nil {
		return Lookup{}, err
	}
	if !exists {
		_, err := m.store.Allocate(ctx, addr, AccountSize, m.deriver.ProgramID())
		switch {
		case err == nil:
			return m.initialize(ctx, addr, pool, startIndex)
		case !errors.Is(err, accountstore.ErrAccountExists):
			return Lookup{}, err
		}
	}

	account, err := m.store.Load(ctx, addr)
	if err != nil {
		return Lookup{}, err
	}
	if account.Owner == m.deriver.ProgramID() && uninitialized(account.Data) {
		m.logger.Debug("tick array allocated but not initialized", "address", addr.String())
		return m.initialize(ctx, addr, pool, startIndex)
	}
	ta, err := m.check(addr, account, pool, startIndex)
	if err != nil {
		return Lookup{}, err
	}
	return Lookup{Status: StatusExisting, Address: addr, Array: ta}, nil
}

// uninitialized reports whether data is a zeroed allocation without a
// discriminator.
func uninitialized(data []byte) bool {
	return len(data) == AccountSize && [8]byte(data[:8]) == [8]byte{}
}

func (m *Manager) initialize(ctx context.Context, addr, pool solana.PublicKey, startIndex int32) (Lookup, error) {
	ta := New(pool, startIndex, m.epoch())
	data, err := ta.Encode()
	if err != nil {
		return Lookup{}, err
	}
	if err := m.store.Store(ctx, addr, accountstore.Account{Owner: m.deriver.ProgramID(), Data: data}); err != nil {
		return Lookup{}, err
	}
	m.logger.Info("tick array created", "pool", pool.String(), "start", startIndex, "address", addr.String())
	return Lookup{Status: StatusCreated, Address: addr, Array: ta}, nil
}

// Load reads an existing array. It never creates one.
func (m *Manager) Load(ctx context.Context, pool solana.PublicKey, startIndex int32) (Lookup, error) {
	addr, err := m.Address(pool, startIndex)
	if err != nil {
		return Lookup{}, err
	}
	account, err := m.store.Load(ctx, addr)
	if err != nil {
		return Lookup{}, err
	}
	ta, err := m.check(addr, account, pool, startIndex)
	if err != nil {
		return Lookup{}, err
	}
	return Lookup{Status: StatusExisting, Address: addr, Array: ta}, nil
}

// check decodes account and verifies it holds the array of pool at startIndex.
func (m *Manager) check(addr solana.PublicKey, account accountstore.Account, pool solana.PublicKey, startIndex int32) (*TickArray, error) {
	if account.Owner != m.deriver.ProgramID() {
		m.logger.Warn("tick array has foreign owner", "address", addr.String(), "owner", account.Owner.String())
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrAccountMismatch, addr, account.Owner)
	}
	ta, err := Decode(account.Data)
	if err != nil {
		m.logger.Warn("tick array undecodable", "address", addr.String(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAccountMismatch, err)
	}
	if ta.PoolID != pool || ta.StartTickIndex != startIndex {
		m.logger.Warn("tick array identity mismatch",
			"address", addr.String(),
			"pool", ta.PoolID.String(),
			"start", ta.StartTickIndex,
		)
		return nil, fmt.Errorf("%w: %s holds array %d of pool %s", ErrAccountMismatch, addr, ta.StartTickIndex, ta.PoolID)
	}
	return ta, nil
}

// Save persists one array.
func (m *Manager) Save(ctx context.Context, l Lookup) error {
	data, err := l.Array.Encode()
	if err != nil {
		return err
	}
	return m.store.Store(ctx, l.Address, accountstore.Account{Owner: m.deriver.ProgramID(), Data: data})
}

// SaveBatch persists every array or none of them.
func (m *Manager) SaveBatch(ctx context.Context, lookups ...Lookup) error {
	writes := make([]accountstore.Write, 0, len(lookups))
	for _, l := range lookups {
		data, err := l.Array.Encode()
		if err != nil {
			return err
		}
		writes = append(writes, accountstore.Write{
			Address: l.Address,
			Account: accountstore.Account{Owner: m.deriver.ProgramID(), Data: data},
		})
	}
	return m.store.StoreBatch(ctx, writes)
}
