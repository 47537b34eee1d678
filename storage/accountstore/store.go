package accountstore

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrSizeMismatch    = errors.New("account size mismatch")
	ErrZeroOwner       = errors.New("account owner cannot be the zero key")
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Account is a fixed-size record owned by a program.
type Account struct {
	Owner solana.PublicKey
	Data  []byte
}

// Clone returns a deep copy of a.
func (a Account) Clone() Account {
	return Account{Owner: a.Owner, Data: append([]byte(nil), a.Data...)}
}

// Write is a single record update inside StoreBatch.
type Write struct {
	Address solana.PublicKey
	Account Account
}

// Store persists byte-exact account records. Implementations assume at most one
// concurrent mutator per address.
type Store interface {
	// Exists reports whether address holds an allocated account.
	Exists(ctx context.Context, address solana.PublicKey) (bool, error)
	// Allocate creates a zero-initialized account of size bytes.
	Allocate(ctx context.Context, address solana.PublicKey, size int, owner solana.PublicKey) (Account, error)
	Load(ctx context.Context, address solana.PublicKey) (Account, error)
	// Store overwrites an existing account. The size of an account never changes.
	Store(ctx context.Context, address solana.PublicKey, account Account) error
	// StoreBatch applies every write or none of them.
	StoreBatch(ctx context.Context, writes []Write) error
}
