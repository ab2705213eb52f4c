package models_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snatcher/internal/database"
	"snatcher/internal/database/models"
	"snatcher/internal/utils"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := utils.NewLogger(false)
	require.NoError(t, database.RunMigrations(db, logger))
	// a second run must be a no-op
	require.NoError(t, database.RunMigrations(db, logger))
	return db
}

func TestCacheRepository(t *testing.T) {
	repo := models.NewCacheRepository(openDB(t))
	ctx := context.Background()

	base := time.Date(2013, 6, 1, 12, 0, 0, 0, time.UTC)
	added, err := repo.Add(ctx, []models.CacheItem{
		{Provider: "fanzub", Name: "old", URL: "http://x/1", PublishedAt: base.Add(-48 * time.Hour), AddedAt: base.Add(-48 * time.Hour)},
		{Provider: "fanzub", Name: "new", URL: "http://x/2", Size: 42, PublishedAt: base, AddedAt: base},
		{Provider: "other", Name: "elsewhere", URL: "http://y/1", AddedAt: base},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	// duplicates by url are ignored
	added, err = repo.Add(ctx, []models.CacheItem{{Provider: "fanzub", Name: "new again", URL: "http://x/2", AddedAt: base}})
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	items, err := repo.List(ctx, "fanzub")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "new", items[0].Name)
	assert.Equal(t, int64(42), items[0].Size)
	assert.Equal(t, base, items[0].PublishedAt)

	newer, err := repo.ListPublishedAfter(ctx, "fanzub", base.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, newer, 1)
	assert.Equal(t, "new", newer[0].Name)

	deleted, err := repo.DeleteOlderThan(ctx, "fanzub", base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	items, err = repo.List(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCacheRepositoryLastUpdate(t *testing.T) {
	repo := models.NewCacheRepository(openDB(t))
	ctx := context.Background()

	last, err := repo.LastUpdate(ctx, "fanzub")
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	first := time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetLastUpdate(ctx, "fanzub", first))
	require.NoError(t, repo.SetLastUpdate(ctx, "fanzub", first.Add(time.Hour)))

	last, err = repo.LastUpdate(ctx, "fanzub")
	require.NoError(t, err)
	assert.Equal(t, first.Add(time.Hour), last)
}

func TestHistoryRepository(t *testing.T) {
	repo := models.NewHistoryRepository(openDB(t))
	ctx := context.Background()

	at := time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second"} {
		s := &models.Snatch{Provider: "fanzub", Name: name, URL: "http://x", Kind: "nzb", Method: "blackhole", SnatchedAt: at.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Add(ctx, s))
		assert.NotZero(t, s.ID)
	}

	recent, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "second", recent[0].Name)
	assert.Equal(t, at.Add(time.Minute), recent[0].SnatchedAt)
}
