package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/defistate/clmm-core-go/storage/kv"
)

// DB is an in-process kv.DB backed by a map.
type DB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewDB() *DB {
	return &DB{data: make(map[string][]byte)}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, kv.ErrDBClosed
	}
	val, ok := m.data[string(key)]
	if !ok {
		return nil, kv.ErrKeyNotFound
	}
	return append([]byte(nil), val...), nil
}

func (m *DB) Write(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return kv.ErrDBClosed
	}
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *DB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return kv.ErrDBClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *DB) Batch(ctx context.Context, ops []kv.BatchOperation) error {
	for _, op := range ops {
		if op.Type != kv.BatchPut && op.Type != kv.BatchDelete {
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return kv.ErrDBClosed
	}
	for _, op := range ops {
		switch op.Type {
		case kv.BatchPut:
			m.data[string(op.Key)] = append([]byte(nil), op.Value...)
		case kv.BatchDelete:
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
