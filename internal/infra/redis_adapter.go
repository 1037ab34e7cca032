// Package infra provides concrete infrastructure adapters used by the
// sentinel binaries. Today that's a single Redis-backed key/value adapter
// used by internal/monitor to persist restart-continuity snapshots.
package infra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("infra: key not found")

// GoRedisAdapter wraps go-redis v9 as a minimal byte-oriented key/value
// store. It intentionally exposes nothing beyond Set/Get/Del — the monitor's
// snapshot store has no need for Redis's richer data structures.
type GoRedisAdapter struct {
	rdb *redis.Client
}

// NewGoRedisAdapter dials Redis and verifies connectivity with a PING.
// Callers decide whether to run without a snapshot store when this returns
// an error — the monitor has no hard dependency on Redis.
func NewGoRedisAdapter(addr, password string, db int) (*GoRedisAdapter, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed (%s): %w", addr, err)
	}

	slog.Info("redis connected", "addr", addr, "db", db)
	return &GoRedisAdapter{rdb: rdb}, nil
}

// Close shuts down the underlying redis client.
func (a *GoRedisAdapter) Close() error {
	return a.rdb.Close()
}

// Set stores value under key with no expiry — snapshots are overwritten in
// place on every tick, not left to expire.
func (a *GoRedisAdapter) Set(ctx context.Context, key string, value []byte) error {
	return a.rdb.Set(ctx, key, value, 0).Err()
}

// Get returns ErrNotFound when the key is absent, rather than leaking the
// go-redis sentinel error to callers.
func (a *GoRedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := a.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return val, err
}

func (a *GoRedisAdapter) Del(ctx context.Context, key string) error {
	return a.rdb.Del(ctx, key).Err()
}
