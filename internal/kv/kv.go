// Package kv defines the key-value storage used for persisted state, with
// in-memory, SQLite and Redis implementations.
package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gatepad/gatepad/internal/config"
	"github.com/gatepad/gatepad/internal/db"
)

// Store is a string key-value store. Get reports absence with ok=false
// rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Open returns the store selected by cfg.Storage. baseDir hosts the SQLite
// database. The returned close func releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config, baseDir string) (Store, func() error, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return NewMemory(), func() error { return nil }, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedis(client, cfg.RedisPrefix), client.Close, nil

	case config.StorageSQLite, "":
		database, err := db.Init(baseDir)
		if err != nil {
			return nil, nil, err
		}
		db.ConfigurePool(database, cfg)
		return NewSQLite(database), database.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}
