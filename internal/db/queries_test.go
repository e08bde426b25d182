package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetValue_Missing(t *testing.T) {
	db := setupDB(t)

	v, ok, err := GetValue(context.Background(), db, "absent")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, v)
}

func TestPutValue_Upsert(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	require.NoError(t, PutValue(ctx, db, "preferredTheme", "dark"))
	require.NoError(t, PutValue(ctx, db, "preferredTheme", "light"))

	v, ok, err := GetValue(ctx, db, "preferredTheme")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "light", v)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestDeleteValue(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	require.NoError(t, PutValue(ctx, db, "savedCodes", "[]"))
	require.NoError(t, DeleteValue(ctx, db, "savedCodes"))
	require.NoError(t, DeleteValue(ctx, db, "savedCodes"))

	_, ok, err := GetValue(ctx, db, "savedCodes")
	require.NoError(t, err)
	require.False(t, ok)
}
