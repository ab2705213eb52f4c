package providers

import (
	"fmt"

	"snatcher/internal/clients/indexers"
	"snatcher/internal/config"
	"snatcher/internal/database/models"
	"snatcher/internal/utils"
)

// FromConfig builds the configured providers in order. Disabled providers
// are built too so they can be listed.
func FromConfig(cfg *config.Config, repo *models.CacheRepository, fetcher *indexers.Fetcher, logger *utils.Logger) ([]*Provider, error) {
	var list []*Provider
	for _, pc := range cfg.Providers {
		p, err := New(pc, repo, fetcher, logger)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

func New(pc config.ProviderConfig, repo *models.CacheRepository, fetcher *indexers.Fetcher, logger *utils.Logger) (*Provider, error) {
	switch pc.Type {
	case config.ProviderFanzub:
		return NewFanzubProvider(pc.Name, pc.URL, pc.Enabled, repo, fetcher, logger), nil
	case config.ProviderTorznab:
		return NewTorznabProvider(pc.Name, pc.URL, pc.APIKey, pc.Category, pc.Enabled, repo, fetcher, logger), nil
	}
	return nil, fmt.Errorf("unsupported provider type: %s", pc.Type)
}
