//go:build integration

package adapter

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/pkg/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestUserRepoSQLite(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	u, err := repo.Create(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	// username is unique
	_, err = repo.Create(ctx, "alice", "other")
	assert.Error(t, err)

	got, err := repo.VerifyLogin(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.VerifyLogin(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = repo.VerifyLogin(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFavoritesRepoSQLite(t *testing.T) {
	db := openTestDB(t)
	repo := NewFavoritesRepo(db)
	ctx := context.Background()

	ids, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.Add(ctx, "u1", "5"))
	require.NoError(t, repo.Add(ctx, "u1", "7"))
	require.NoError(t, repo.Add(ctx, "u1", "5")) // duplicate add is a no-op

	ids, err = repo.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	has, err := repo.Contains(ctx, "u1", "5")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, repo.Remove(ctx, "u1", "5"))
	has, err = repo.Contains(ctx, "u1", "5")
	require.NoError(t, err)
	assert.False(t, has)

	// per-user isolation
	ids, err = repo.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
