package accountstore

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached is a write-through LRU cache in front of another Store.
type Cached struct {
	next  Store
	cache *lru.Cache[solana.PublicKey, Account]
}

// NewCached keeps up to size recently used accounts in memory.
func NewCached(next Store, size int) (*Cached, error) {
	cache, err := lru.New[solana.PublicKey, Account](size)
	if err != nil {
		return nil, fmt.Errorf("create account cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Exists(ctx context.Context, address solana.PublicKey) (bool, error) {
	if c.cache.Contains(address) {
		return true, nil
	}
	return c.next.Exists(ctx, address)
}

func (c *Cached) Allocate(ctx context.Context, address solana.PublicKey, size int, owner solana.PublicKey) (Account, error) {
	account, err := c.next.Allocate(ctx, address, size, owner)
	if err != nil {
		return Account{}, err
	}
	c.cache.Add(address, account.Clone())
	return account, nil
}

func (c *Cached) Load(ctx context.Context, address solana.PublicKey) (Account, error) {
	if account, ok := c.cache.Get(address); ok {
		return account.Clone(), nil
	}
	account, err := c.next.Load(ctx, address)
	if err != nil {
		return Account{}, err
	}
	c.cache.Add(address, account.Clone())
	return account, nil
}

func (c *Cached) Store(ctx context.Context, address solana.PublicKey, account Account) error {
	if err := c.next.Store(ctx, address, account); err != nil {
		c.cache.Remove(address)
		return err
	}
	c.cache.Add(address, account.Clone())
	return nil
}

func (c *Cached) StoreBatch(ctx context.Context, writes []Write) error {
	if err := c.next.StoreBatch(ctx, writes); err != nil {
		for _, w := range writes {
			c.cache.Remove(w.Address)
		}
		return err
	}
	for _, w := range writes {
		c.cache.Add(w.Address, w.Account.Clone())
	}
	return nil
}

// Len returns the number of cached accounts.
func (c *Cached) Len() int {
	return c.cache.Len()
}
