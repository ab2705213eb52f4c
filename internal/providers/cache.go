package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"snatcher/internal/clients/indexers"
	"snatcher/internal/database/models"
	"snatcher/internal/release"
	"snatcher/internal/utils"
)

const (
	defaultCacheInterval = 10 * time.Minute
	cacheRetention       = 7 * 24 * time.Hour
)

// Cache is the periodic RSS cache a provider consults before searching.
type Cache interface {
	// Update refreshes the cache unless the last refresh is too recent.
	Update(ctx context.Context) error
	Items(ctx context.Context) ([]indexers.FeedItem, error)
	// Propers lists cached proper/repack items published after since.
	Propers(ctx context.Context, since time.Time) ([]ProperCandidate, error)
}

// NoCache is used when a provider runs without persistent storage.
type NoCache struct{}

func (NoCache) Update(context.Context) error { return nil }

func (NoCache) Items(context.Context) ([]indexers.FeedItem, error) { return nil, nil }

func (NoCache) Propers(context.Context, time.Time) ([]ProperCandidate, error) { return nil, nil }

// RSSCache stores a provider's RSS snapshots in sqlite. The refresh
// timestamp is guarded per cache so a refresh and a search of the same
// provider never race on it.
type RSSCache struct {
	provider    string
	source      indexers.Indexer
	repo        *models.CacheRepository
	minInterval time.Duration
	logger      *utils.Logger

	mu  sync.Mutex
	now func() time.Time
}

func NewRSSCache(provider string, source indexers.Indexer, repo *models.CacheRepository, logger *utils.Logger) *RSSCache {
	interval := source.RefreshInterval()
	if interval <= 0 {
		interval = defaultCacheInterval
	}
	return &RSSCache{
		provider:    provider,
		source:      source,
		repo:        repo,
		minInterval: interval,
		logger:      logger,
		now:         time.Now,
	}
}

func (c *RSSCache) Update(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	last, err := c.repo.LastUpdate(ctx, c.provider)
	if err != nil {
		return err
	}
	if !last.IsZero() && now.Sub(last) < c.minInterval {
		c.logger.Debug("Last update of the", c.provider, "cache was too soon, using old cache")
		return nil
	}

	items, err := c.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh %s cache: %w", c.provider, err)
	}

	var rows []models.CacheItem
	for _, item := range items {
		if !item.Complete() {
			c.logger.Debug("The data returned from the", c.provider, "feed is incomplete, this result is unusable")
			continue
		}
		rows = append(rows, models.CacheItem{
			Provider:    c.provider,
			Name:        item.Title,
			URL:         item.URL,
			Size:        item.Size,
			PublishedAt: item.PublishedAt,
			AddedAt:     now,
		})
	}

	added, err := c.repo.Add(ctx, rows)
	if err != nil {
		return err
	}
	if err := c.repo.SetLastUpdate(ctx, c.provider, now); err != nil {
		return err
	}
	if _, err := c.repo.DeleteOlderThan(ctx, c.provider, now.Add(-cacheRetention)); err != nil {
		c.logger.Warn("Failed to trim the", c.provider, "cache:", err)
	}

	c.logger.Info("Cached", added, "new items from", c.provider)
	return nil
}

func (c *RSSCache) Items(ctx context.Context) ([]indexers.FeedItem, error) {
	rows, err := c.repo.List(ctx, c.provider)
	if err != nil {
		return nil, err
	}
	items := make([]indexers.FeedItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, indexers.FeedItem{
			Title:       row.Name,
			URL:         row.URL,
			PublishedAt: row.PublishedAt,
			Size:        row.Size,
		})
	}
	return items, nil
}

func (c *RSSCache) Propers(ctx context.Context, since time.Time) ([]ProperCandidate, error) {
	rows, err := c.repo.ListPublishedAfter(ctx, c.provider, since)
	if err != nil {
		return nil, err
	}
	var propers []ProperCandidate
	for _, row := range rows {
		if release.IsProperTitle(row.Name) {
			propers = append(propers, ProperCandidate{Name: row.Name, URL: row.URL, Date: row.PublishedAt})
		}
	}
	return propers, nil
}
