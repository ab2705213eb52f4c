package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CacheItem is a feed item remembered from a provider's RSS snapshot.
type CacheItem struct {
	ID          int64     `db:"id"`
	Provider    string    `db:"provider"`
	Name        string    `db:"name"`
	URL         string    `db:"url"`
	Size        int64     `db:"size"`
	PublishedAt time.Time `db:"published_at"`
	AddedAt     time.Time `db:"added_at"`
}

type CacheRepository struct {
	db *sql.DB
}

func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Add stores items, ignoring URLs the provider already has. It returns the
// number of new rows.
func (r *CacheRepository) Add(ctx context.Context, items []CacheItem) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin cache insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT OR IGNORE INTO rss_cache (provider, name, url, size, published_at, added_at)
        VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare cache insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, item := range items {
		res, err := stmt.ExecContext(ctx, item.Provider, item.Name, item.URL, item.Size,
			toUnix(item.PublishedAt), toUnix(item.AddedAt))
		if err != nil {
			return 0, fmt.Errorf("failed to cache %q: %w", item.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cache insert: %w", err)
	}
	return added, nil
}

// List returns every cached item of provider, newest first.
func (r *CacheRepository) List(ctx context.Context, provider string) ([]CacheItem, error) {
	return r.query(ctx, `
        SELECT id, provider, name, url, size, published_at, added_at
        FROM rss_cache WHERE provider = ?
        ORDER BY added_at DESC, id DESC`, provider)
}

// ListPublishedAfter returns the items of provider published strictly after since.
func (r *CacheRepository) ListPublishedAfter(ctx context.Context, provider string, since time.Time) ([]CacheItem, error) {
	return r.query(ctx, `
        SELECT id, provider, name, url, size, published_at, added_at
        FROM rss_cache WHERE provider = ? AND published_at > ?
        ORDER BY published_at DESC, id DESC`, provider, toUnix(since))
}

func (r *CacheRepository) query(ctx context.Context, query string, args ...interface{}) ([]CacheItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rss cache: %w", err)
	}
	defer rows.Close()

	var items []CacheItem
	for rows.Next() {
		var item CacheItem
		var published, added int64
		if err := rows.Scan(&item.ID, &item.Provider, &item.Name, &item.URL, &item.Size, &published, &added); err != nil {
			return nil, err
		}
		item.PublishedAt = fromUnix(published)
		item.AddedAt = fromUnix(added)
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteOlderThan drops items of provider added before cutoff.
func (r *CacheRepository) DeleteOlderThan(ctx context.Context, provider string, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM rss_cache WHERE provider = ? AND added_at < ?", provider, toUnix(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to trim rss cache: %w", err)
	}
	return res.RowsAffected()
}

// LastUpdate returns when provider's cache was last refreshed, zero if never.
func (r *CacheRepository) LastUpdate(ctx context.Context, provider string) (time.Time, error) {
	var ts int64
	err := r.db.QueryRowContext(ctx, "SELECT last_update FROM cache_meta WHERE provider = ?", provider).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read cache timestamp: %w", err)
	}
	return fromUnix(ts), nil
}

func (r *CacheRepository) SetLastUpdate(ctx context.Context, provider string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO cache_meta (provider, last_update) VALUES (?, ?)
        ON CONFLICT(provider) DO UPDATE SET last_update = excluded.last_update`, provider, toUnix(at))
	if err != nil {
		return fmt.Errorf("failed to store cache timestamp: %w", err)
	}
	return nil
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
