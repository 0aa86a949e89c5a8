package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	redisLayoutKey   = "notepilot_layout_version"
	redisMaxAttempts = 5
)

// RedisBackend stores partitions as plain Redis strings. Update uses
// optimistic locking (WATCH/MULTI/EXEC).
type RedisBackend struct {
	client *goredis.Client
}

// OpenRedis connects to addr, pings it and checks the layout version.
func OpenRedis(ctx context.Context, addr string) (*RedisBackend, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}

	b := &RedisBackend{client: client}
	if err := b.checkLayout(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return b, nil
}

func (b *RedisBackend) checkLayout(ctx context.Context) error {
	found, err := b.client.Get(ctx, redisLayoutKey).Result()
	if errors.Is(err, goredis.Nil) {
		return b.client.Set(ctx, redisLayoutKey, LayoutVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("read layout version: %w", err)
	}
	return CheckLayout(found)
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return v, true, nil
}

func (b *RedisBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	txf := func(tx *goredis.Tx) error {
		old, err := tx.Get(ctx, key).Bytes()
		ok := true
		if errors.Is(err, goredis.Nil) {
			old, ok = nil, false
		} else if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}

		next, err := fn(old, ok)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < redisMaxAttempts; attempt++ {
		err := b.client.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: too much contention", key)
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
