package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Backend is a durable key/value store of partition blobs.
type Backend interface {
	// Get returns the blob stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put replaces the blob stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Update reads key, applies fn and writes the result as one unit. No other
	// Update on the same key interleaves between the read and the write. When
	// fn returns an error nothing is written.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	Close() error
}

// UpdateFunc maps the current blob (ok is false when absent) to the new one.
type UpdateFunc func(old []byte, ok bool) ([]byte, error)

// sqliteBackend stores partitions in the partitions table.
type sqliteBackend struct {
	drv *entsql.Driver

	// mu serializes Update within the process; SQLite serializes writers
	// across processes.
	mu sync.Mutex
}

func (b *sqliteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return getPartition(ctx, b.drv, key)
}

func (b *sqliteBackend) Put(ctx context.Context, key string, value []byte) error {
	return putPartition(ctx, b.drv, key, value)
}

func (b *sqliteBackend) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(partitionsTable.Name).
		Where(entsql.EQ("key", key)).
		Query()
	if err := b.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (b *sqliteBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	old, ok, err := getPartition(ctx, tx, key)
	if err != nil {
		tx.Rollback()
		return err
	}
	next, err := fn(old, ok)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := putPartition(ctx, tx, key, next); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the Store owns the connection.
func (b *sqliteBackend) Close() error { return nil }

func getPartition(ctx context.Context, q dialect.ExecQuerier, key string) ([]byte, bool, error) {
	sb := entsql.Dialect(dialect.SQLite)
	query, args := sb.Select("value").
		From(sb.Table(partitionsTable.Name)).
		Where(entsql.EQ("key", key)).
		Query()

	rows := &entsql.Rows{}
	if err := q.Query(ctx, query, args, rows); err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}
	var v []byte
	if err := rows.Scan(&v); err != nil {
		return nil, false, fmt.Errorf("scan %s: %w", key, err)
	}
	return v, true, nil
}

func putPartition(ctx context.Context, q dialect.ExecQuerier, key string, value []byte) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(partitionsTable.Name).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues()).
		Query()
	if err := q.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
