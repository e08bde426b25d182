package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gatepad/gatepad/internal/config"
	"github.com/gatepad/gatepad/internal/db"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

// stores returns one instance of every Store implementation.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	client, _ := setupTestRedis(t)

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": NewSQLite(database),
		"redis":  NewRedis(client, "test:"),
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "vlsi-projects-v1")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Set(ctx, "vlsi-projects-v1", `[{"id":"p1"}]`))
			v, ok, err := s.Get(ctx, "vlsi-projects-v1")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, `[{"id":"p1"}]`, v)

			require.NoError(t, s.Set(ctx, "vlsi-projects-v1", `[]`))
			v, _, err = s.Get(ctx, "vlsi-projects-v1")
			require.NoError(t, err)
			require.Equal(t, `[]`, v)

			require.NoError(t, s.Delete(ctx, "vlsi-projects-v1"))
			_, ok, err = s.Get(ctx, "vlsi-projects-v1")
			require.NoError(t, err)
			require.False(t, ok)

			// Deleting an absent key is fine.
			require.NoError(t, s.Delete(ctx, "never-set"))
		})
	}
}

func TestRedis_UsesPrefix(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := NewRedis(client, "gatepad:")

	require.NoError(t, s.Set(context.Background(), "preferredTheme", "light"))

	got, err := mr.Get("gatepad:preferredTheme")
	require.NoError(t, err)
	require.Equal(t, "light", got)
	require.False(t, mr.Exists("preferredTheme"))
}

func TestRedis_ServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := NewRedis(client, "")
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Storage = config.StorageMemory
		s, closeFn, err := Open(ctx, cfg, t.TempDir())
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &Memory{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, closeFn, err := Open(ctx, config.DefaultConfig(), t.TempDir())
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &SQLite{}, s)
	})

	t.Run("redis", func(t *testing.T) {
		_, mr := setupTestRedis(t)
		cfg := config.DefaultConfig()
		cfg.Storage = config.StorageRedis
		cfg.RedisAddr = mr.Addr()
		s, closeFn, err := Open(ctx, cfg, t.TempDir())
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &Redis{}, s)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Storage = "etcd"
		_, _, err := Open(ctx, cfg, t.TempDir())
		require.Error(t, err)
	})
}
