package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/defistate/clmm-core-go/storage/kv"
	_ "modernc.org/sqlite"
)

const (
	schema    = `CREATE TABLE IF NOT EXISTS kv (k BLOB PRIMARY KEY, v BLOB NOT NULL)`
	selectSQL = `SELECT v FROM kv WHERE k = ?`
	upsertSQL = `INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`
	deleteSQL = `DELETE FROM kv WHERE k = ?`
)

type DB struct {
	db *sql.DB
}

// Open opens (or creates) a sqlite database file at path.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// a single writer keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &DB{db: db}, nil
}

func (s *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if s.db == nil {
		return nil, kv.ErrDBClosed
	}
	var val []byte
	err := s.db.QueryRowContext(ctx, selectSQL, key).Scan(&val)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, err
	}
	return val, nil
}

func (s *DB) Write(ctx context.Context, key, value []byte) error {
	if s.db == nil {
		return kv.ErrDBClosed
	}
	_, err := s.db.ExecContext(ctx, upsertSQL, key, value)
	return err
}

func (s *DB) Delete(ctx context.Context, key []byte) error {
	if s.db == nil {
		return kv.ErrDBClosed
	}
	_, err := s.db.ExecContext(ctx, deleteSQL, key)
	return err
}

func (s *DB) Batch(ctx context.Context, ops []kv.BatchOperation) (err error) {
	if s.db == nil {
		return kv.ErrDBClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, op := range ops {
		switch op.Type {
		case kv.BatchPut:
			_, err = tx.ExecContext(ctx, upsertSQL, op.Key, op.Value)
		case kv.BatchDelete:
			_, err = tx.ExecContext(ctx, deleteSQL, op.Key)
		default:
			err = fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *DB) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
