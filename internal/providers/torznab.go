package providers

import (
	"snatcher/internal/clients/indexers"
	"snatcher/internal/database/models"
	"snatcher/internal/tv"
	"snatcher/internal/utils"
)

// NewTorznabProvider builds a torrent provider on a Jackett/Prowlarr torznab
// endpoint. It serves every show.
func NewTorznabProvider(name, baseURL, apiKey, category string, enabled bool, repo *models.CacheRepository, fetcher *indexers.Fetcher, logger *utils.Logger) *Provider {
	indexer := indexers.NewTorznab(baseURL, apiKey, category, fetcher, logger.WithField("indexer", name))

	var cache Cache = NoCache{}
	if repo != nil {
		cache = NewRSSCache(name, indexer, repo, logger.WithField("cache", name))
	}

	return NewProvider(Options{
		Name:    name,
		Kind:    tv.KindTorrent,
		Enabled: enabled,
		Indexer: indexer,
		Fetcher: fetcher,
		Cache:   cache,
	}, logger)
}
