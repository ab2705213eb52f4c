package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"snatcher/internal/providers"
	"snatcher/internal/tv"
)

// SearchRequest describes a one-off search from the CLI or the API.
type SearchRequest struct {
	Show      string `json:"show"`
	Season    int    `json:"season"`
	Episode   int    `json:"episode"`
	Absolute  int    `json:"absolute"`
	AirDate   string `json:"air_date"` // 2006-01-02, for air-by-date shows
	Anime     bool   `json:"anime"`
	AirByDate bool   `json:"air_by_date"`
	Manual    bool   `json:"manual"`
	Query     string `json:"query"`
	Snatch    bool   `json:"snatch"`
}

func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Show) == "" {
		return fmt.Errorf("show is required")
	}
	if r.AirByDate && r.AirDate == "" && r.Episode > 0 {
		return fmt.Errorf("air-by-date shows are searched by air date")
	}
	if r.AirDate != "" {
		if _, err := time.Parse("2006-01-02", r.AirDate); err != nil {
			return fmt.Errorf("invalid air date %q: %w", r.AirDate, err)
		}
	}
	return nil
}

func (r SearchRequest) show() *tv.StaticShow {
	return &tv.StaticShow{Title: r.Show, Anime: r.Anime, AirByDate: r.AirByDate}
}

// Search runs an episode search when an episode or air date is given and a
// season search otherwise. Season results are flattened: single episodes in
// order, then multi-episode releases, then season packs.
func (m *Manager) Search(ctx context.Context, req SearchRequest) ([]*providers.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	show := req.show()

	if req.Episode > 0 || req.AirDate != "" {
		ep := tv.Episode{Show: show, Season: req.Season, Number: req.Episode, AbsoluteNumber: req.Absolute}
		if req.AirDate != "" {
			ep.AirDate, _ = time.Parse("2006-01-02", req.AirDate)
		}
		return m.SearchEpisode(ctx, ep, req.Manual, req.Query), nil
	}

	buckets := m.SearchSeason(ctx, show, req.Season)
	return flattenBuckets(buckets), nil
}

func flattenBuckets(buckets map[providers.BucketKey][]*providers.SearchResult) []*providers.SearchResult {
	keys := make([]providers.BucketKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	// Episode numbers ascending, then MultiEpisode (-1), then WholeSeason (-2).
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if (a > 0) != (b > 0) {
			return a > 0
		}
		if a > 0 {
			return a < b
		}
		return a > b
	})

	results := []*providers.SearchResult{}
	for _, key := range keys {
		results = append(results, buckets[key]...)
	}
	return results
}
