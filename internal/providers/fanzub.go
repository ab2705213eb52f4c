package providers

import (
	"context"
	"fmt"
	"time"

	"snatcher/internal/clients/indexers"
	"snatcher/internal/database/models"
	"snatcher/internal/tv"
	"snatcher/internal/utils"
)

// fanzubProperVersions are the release versions searched by the propers sweep.
var fanzubProperVersions = []int{2, 3, 4}

// NewFanzubProvider builds the anime-only NZB provider. repo may be nil to
// run without an RSS cache.
func NewFanzubProvider(name, baseURL string, enabled bool, repo *models.CacheRepository, fetcher *indexers.Fetcher, logger *utils.Logger) *Provider {
	if name == "" {
		name = "Fanzub"
	}
	indexer := indexers.NewFanzub(baseURL, fetcher, logger.WithField("indexer", name))

	var cache Cache = NoCache{}
	if repo != nil {
		cache = NewRSSCache(name, indexer, repo, logger.WithField("cache", name))
	}

	p := NewProvider(Options{
		Name:      name,
		Kind:      tv.KindNZB,
		Enabled:   enabled,
		AnimeOnly: true,
		Indexer:   indexer,
		Fetcher:   fetcher,
		Cache:     cache,
	}, logger)
	p.findPropers = p.sweepVersions
	return p
}

// sweepVersions searches the indexer for v2..v4 releases instead of relying
// on the cache, keeping items published after since.
func (p *Provider) sweepVersions(ctx context.Context, since time.Time) ([]ProperCandidate, error) {
	results := []ProperCandidate{}
	seen := make(map[string]bool)

	for _, version := range fanzubProperVersions {
		query := fmt.Sprintf("v%d", version)
		items, err := p.indexer.Search(ctx, query)
		if err != nil {
			p.logger.Error("Proper search for", query, "failed:", err)
			continue
		}

		for _, item := range items {
			if !item.Complete() || item.PublishedAt.IsZero() {
				continue
			}
			if !since.IsZero() && !item.PublishedAt.After(since) {
				continue
			}
			if seen[item.URL] {
				continue
			}
			seen[item.URL] = true
			results = append(results, ProperCandidate{Name: item.Title, URL: item.URL, Date: item.PublishedAt})
		}
	}
	return results, nil
}
