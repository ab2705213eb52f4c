package indexers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"snatcher/internal/utils"
)

const TorznabRefreshInterval = 10 * time.Minute

// Torznab implements a Jackett/Prowlarr compatible torznab indexer.
type Torznab struct {
	baseURL  string
	apiKey   string
	category string
	fetcher  *Fetcher
	logger   *utils.Logger
}

func NewTorznab(baseURL, apiKey, category string, fetcher *Fetcher, logger *utils.Logger) *Torznab {
	return &Torznab{
		baseURL:  baseURL,
		apiKey:   apiKey,
		category: category,
		fetcher:  fetcher,
		logger:   logger,
	}
}

func (c *Torznab) endpoint(params url.Values) string {
	params.Set("apikey", c.apiKey)
	if c.category != "" {
		params.Set("cat", c.category)
	}
	return fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
}

func (c *Torznab) get(ctx context.Context, params url.Values) ([]FeedItem, error) {
	data, err := c.fetcher.Fetch(ctx, c.endpoint(params), nil)
	if err != nil {
		return nil, fmt.Errorf("torznab request failed: %w", err)
	}
	return ExtractItems(data, c.logger)
}

// Search performs a free-text TV search.
func (c *Torznab) Search(ctx context.Context, query string) ([]FeedItem, error) {
	params := url.Values{}
	params.Set("t", "tvsearch")
	params.Set("q", query)
	return c.get(ctx, params)
}

// Snapshot returns the latest releases of the configured category.
func (c *Torznab) Snapshot(ctx context.Context) ([]FeedItem, error) {
	params := url.Values{}
	params.Set("t", "search")
	return c.get(ctx, params)
}

func (c *Torznab) RefreshInterval() time.Duration {
	return TorznabRefreshInterval
}

// HealthCheck verifies the connection by requesting the caps document.
func (c *Torznab) HealthCheck(ctx context.Context) (bool, error) {
	params := url.Values{}
	params.Set("t", "caps")
	_, err := c.fetcher.Fetch(ctx, c.endpoint(params), nil)
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
