package providers

import (
	"fmt"
	"strings"
	"time"

	"snatcher/internal/tv"
)

// SearchResult is an accepted release, ready to be snatched. Its Kind
// decides how it is acquired.
type SearchResult struct {
	Provider     *Provider
	Kind         tv.ProviderKind
	Episodes     []tv.Episode
	Name         string
	URL          string
	Quality      tv.Quality
	ReleaseGroup string
	IsProper     bool
	Size         int64
	PublishedAt  time.Time
	// Content holds the payload when the provider already downloaded it.
	Content []byte
	// Show is set on whole-season results for season pack handling.
	Show tv.Show
}

func (r *SearchResult) String() string {
	var eps []string
	for _, ep := range r.Episodes {
		eps = append(eps, fmt.Sprintf("S%02dE%02d", ep.Season, ep.Number))
	}
	provider := ""
	if r.Provider != nil {
		provider = r.Provider.Name()
	}
	return fmt.Sprintf("%s [%s] %s (%s) from %s", r.Name, r.Kind, strings.Join(eps, ","), r.Quality, provider)
}

// BucketKey groups season search results. Positive values are episode
// numbers; MultiEpisode and WholeSeason are reserved.
type BucketKey int

const (
	MultiEpisode BucketKey = -1
	WholeSeason  BucketKey = -2
)

// EpisodeBucket returns the key for a single-episode release.
func EpisodeBucket(number int) BucketKey {
	return BucketKey(number)
}

func (k BucketKey) String() string {
	switch k {
	case MultiEpisode:
		return "MULTI_EP"
	case WholeSeason:
		return "SEASON"
	}
	return fmt.Sprintf("E%02d", int(k))
}

// ProperCandidate is a possible proper or repack found by a newer-version sweep.
type ProperCandidate struct {
	Name string
	URL  string
	Date time.Time
}
