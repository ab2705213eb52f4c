package indexers

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"snatcher/internal/utils"
)

const (
	FanzubSearchDelay     = 5 * time.Second
	FanzubRefreshInterval = 20 * time.Minute
	fanzubMaxResults      = 100
	fanzubCategory        = "anime"
)

// Fanzub is the client for the anime NZB aggregator. Every on-demand search
// is followed by a fixed pause; searches on one instance are serialized so
// the pause applies to this indexer only.
type Fanzub struct {
	baseURL  string
	category string
	fetcher  *Fetcher
	logger   *utils.Logger

	mu    sync.Mutex
	sleep func(time.Duration)
}

func NewFanzub(baseURL string, fetcher *Fetcher, logger *utils.Logger) *Fanzub {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Fanzub{
		baseURL:  baseURL,
		category: fanzubCategory,
		fetcher:  fetcher,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// SetSleep replaces the post-search pause, mainly for tests.
func (f *Fanzub) SetSleep(sleep func(time.Duration)) {
	f.sleep = sleep
}

func (f *Fanzub) feedURL(query string) string {
	params := url.Values{}
	params.Set("cat", f.category)
	if query != "" {
		params.Set("q", query)
	}
	params.Set("max", strconv.Itoa(fanzubMaxResults))
	return f.baseURL + "rss?" + params.Encode()
}

// Search runs one query. The pause after the request happens even when the
// request failed.
func (f *Fanzub) Search(ctx context.Context, query string) ([]FeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	searchURL := f.feedURL(query)
	f.logger.Debug("Search url:", searchURL)

	data, err := f.fetcher.Fetch(ctx, searchURL, nil)
	f.sleep(FanzubSearchDelay)
	if err != nil {
		return nil, err
	}

	items, err := ExtractItems(data, f.logger)
	if err != nil {
		return nil, err
	}

	complete := items[:0]
	for _, item := range items {
		if !item.Complete() {
			f.logger.Error("The XML returned from the Fanzub RSS feed is incomplete, this result is unusable:", item.Title)
			continue
		}
		complete = append(complete, item)
	}
	return complete, nil
}

// Snapshot fetches the newest items without a query and with no pause.
func (f *Fanzub) Snapshot(ctx context.Context) ([]FeedItem, error) {
	data, err := f.fetcher.Fetch(ctx, f.feedURL(""), nil)
	if err != nil {
		return nil, err
	}
	return ExtractItems(data, f.logger)
}

func (f *Fanzub) RefreshInterval() time.Duration {
	return FanzubRefreshInterval
}
