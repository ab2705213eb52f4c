package indexers

import (
	"context"
	"net/http"
	"time"
)

// Indexer is a remote release source. Search runs an on-demand query,
// Snapshot pulls the latest items for the periodic cache.
type Indexer interface {
	Search(ctx context.Context, query string) ([]FeedItem, error)
	Snapshot(ctx context.Context) ([]FeedItem, error)
	// RefreshInterval is the minimum time between two snapshots.
	RefreshInterval() time.Duration
}

// HealthChecker is implemented by indexers with a cheap liveness check.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (bool, error)
}

// Transport performs the raw HTTP exchange. *http.Client satisfies it;
// indexers that need cookies or digest auth plug in their own.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// FeedItem is one normalized entry of an indexer feed. URL is empty when
// the item carried no link; PublishedAt is zero when no date was parsed.
type FeedItem struct {
	Title       string
	URL         string
	PublishedAt time.Time
	Size        int64
}

// Complete reports whether the item has both a title and a link.
func (i FeedItem) Complete() bool {
	return i.Title != "" && i.URL != ""
}
