package providers

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"snatcher/internal/clients/indexers"
	"snatcher/internal/release"
	"snatcher/internal/tv"
	"snatcher/internal/utils"
)

var nonIDChars = regexp.MustCompile(`\W`)

// Options configures a Provider. Zero values fall back to the defaults:
// scene queries, the rls classifier, no cache and a plain fetcher.
type Options struct {
	Name       string
	Kind       tv.ProviderKind
	Enabled    bool
	AnimeOnly  bool
	Indexer    indexers.Indexer
	Fetcher    *indexers.Fetcher
	Cache      Cache
	Queries    tv.QueryGenerator
	Classifier tv.Classifier
	// Auth runs before every search; an error skips the search.
	Auth func(ctx context.Context) error
}

// Provider runs the search pipeline against one indexer: query generation,
// fetch, classification, wanted-state filtering and result assembly.
type Provider struct {
	name       string
	kind       tv.ProviderKind
	enabled    bool
	animeOnly  bool
	indexer    indexers.Indexer
	fetcher    *indexers.Fetcher
	cache      Cache
	queries    tv.QueryGenerator
	classifier tv.Classifier
	auth       func(ctx context.Context) error
	logger     *utils.Logger

	// findPropers replaces the cache based newer-version lookup.
	findPropers func(ctx context.Context, since time.Time) ([]ProperCandidate, error)
}

func NewProvider(opts Options, logger *utils.Logger) *Provider {
	p := &Provider{
		name:       opts.Name,
		kind:       opts.Kind,
		enabled:    opts.Enabled,
		animeOnly:  opts.AnimeOnly,
		indexer:    opts.Indexer,
		fetcher:    opts.Fetcher,
		cache:      opts.Cache,
		queries:    opts.Queries,
		classifier: opts.Classifier,
		auth:       opts.Auth,
		logger:     logger.WithField("provider", opts.Name),
	}
	if p.fetcher == nil {
		p.fetcher = indexers.NewFetcher(nil)
	}
	if p.cache == nil {
		p.cache = NoCache{}
	}
	if p.queries == nil {
		p.queries = tv.SceneQueries{}
	}
	if p.classifier == nil {
		p.classifier = release.NewClassifier()
	}
	return p
}

func (p *Provider) Name() string          { return p.name }
func (p *Provider) Kind() tv.ProviderKind { return p.kind }

// ID is the lowercased name with anything but word characters replaced.
func (p *Provider) ID() string {
	return nonIDChars.ReplaceAllString(strings.ToLower(p.name), "_")
}

func (p *Provider) ImageName() string {
	return p.ID() + ".png"
}

// IsActive reports whether the provider is enabled and its kind is searched.
func (p *Provider) IsActive(useNZBs, useTorrents bool) bool {
	if !p.enabled {
		return false
	}
	switch p.kind {
	case tv.KindNZB:
		return useNZBs
	case tv.KindTorrent:
		return useTorrents
	}
	return false
}

// IsApplicable reports whether the provider can serve show at all.
func (p *Provider) IsApplicable(show tv.Show) bool {
	if p.animeOnly && !show.IsAnime() {
		p.logger.Info(show.Name(), "is not an anime, skipping", p.name)
		return false
	}
	return true
}

// Indexer exposes the underlying indexer, e.g. for health checks.
func (p *Provider) Indexer() indexers.Indexer {
	return p.indexer
}

// Fetch downloads a result payload through the provider's transport.
func (p *Provider) Fetch(ctx context.Context, url string) ([]byte, error) {
	return p.fetcher.Fetch(ctx, url, nil)
}

// UpdateCache refreshes the provider's RSS cache.
func (p *Provider) UpdateCache(ctx context.Context) error {
	return p.cache.Update(ctx)
}

func (p *Provider) authenticate(ctx context.Context, log *utils.Logger) bool {
	if p.auth == nil {
		return true
	}
	if err := p.auth(ctx); err != nil {
		log.Error("Authentication with", p.name, "failed:", err)
		return false
	}
	return true
}

// SearchEpisode looks for ep. The cache is consulted first; the indexer is
// only queried for a manual search that found nothing in the cache. query,
// when set, replaces the generated search terms.
func (p *Provider) SearchEpisode(ctx context.Context, ep tv.Episode, manual bool, query string) []*SearchResult {
	log := p.logger.WithField("search", uuid.NewString()[:8])
	results := []*SearchResult{}

	if !p.IsApplicable(ep.Show) {
		return results
	}
	log.Info("Searching", p.name, "for", ep.PrettyName())

	if !p.authenticate(ctx, log) {
		return results
	}

	if err := p.cache.Update(ctx); err != nil {
		log.Error("Failed to update the", p.name, "cache:", err)
	}
	cached, err := p.cache.Items(ctx)
	if err != nil {
		log.Error("Failed to read the", p.name, "cache:", err)
	}
	results = append(results, p.matchEpisode(log, ep, manual, cached)...)
	if len(results) > 0 || !manual {
		return results
	}

	queries := []string{query}
	if query == "" {
		queries = p.queries.EpisodeQueries(ep)
	}

	var items []indexers.FeedItem
	for _, q := range queries {
		found, err := p.indexer.Search(ctx, q)
		if err != nil {
			log.Error("Search for", q, "on", p.name, "failed:", err)
			continue
		}
		items = append(items, found...)
	}

	return append(results, p.matchEpisode(log, ep, manual, items)...)
}

func (p *Provider) matchEpisode(log *utils.Logger, ep tv.Episode, manual bool, items []indexers.FeedItem) []*SearchResult {
	var results []*SearchResult
	for _, item := range items {
		if !item.Complete() {
			log.Debug("Skipping incomplete feed item", item.Title)
			continue
		}
		rel, err := p.classifier.Classify(ep.Show, item.Title)
		if err != nil {
			log.Debug("Unable to parse the filename", item.Title, "into a valid episode:", err)
			continue
		}

		if ep.Show.IsAirByDate() {
			if rel.AirDate.IsZero() || !sameDay(rel.AirDate, ep.AirDate) {
				log.Debug("Episode", item.Title, "didn't air on", ep.AirDate.Format("2006-01-02"), "but we were looking for it, skipping it")
				continue
			}
		} else if rel.Season != ep.Season || !rel.HasEpisode(ep.Number) {
			log.Debug("Episode", item.Title, "isn't", ep.PrettyName(), ", skipping it")
			continue
		}

		if !ep.Show.WantEpisode(ep.Season, ep.Number, rel.Quality, manual) {
			log.Info("Episode", ep.PrettyName(), "is not wanted at quality", rel.Quality, ", skipping", item.Title)
			continue
		}

		log.Debug("Found result", item.Title, "at", item.URL)
		results = append(results, p.newResult([]tv.Episode{ep}, item, rel))
	}
	return results
}

// SearchSeason searches a whole season and buckets the accepted releases by
// episode number, MultiEpisode or WholeSeason. A release with any unwanted
// episode is dropped entirely.
func (p *Provider) SearchSeason(ctx context.Context, show tv.Show, season int) map[BucketKey][]*SearchResult {
	log := p.logger.WithField("search", uuid.NewString()[:8])
	buckets := make(map[BucketKey][]*SearchResult)

	if !p.IsApplicable(show) {
		return buckets
	}
	log.Info("Searching", p.name, "for season", season, "of", show.Name())

	if !p.authenticate(ctx, log) {
		return buckets
	}

	for _, q := range p.queries.SeasonQueries(show, season) {
		items, err := p.indexer.Search(ctx, q)
		if err != nil {
			log.Error("Search for", q, "on", p.name, "failed:", err)
			continue
		}

		for _, item := range items {
			if !item.Complete() {
				continue
			}
			rel, err := p.classifier.Classify(show, item.Title)
			if err != nil {
				log.Debug("Unable to parse the filename", item.Title, "into a valid episode:", err)
				continue
			}
			if show.IsAirByDate() && !rel.AirDate.IsZero() && rel.IsSeasonPack() {
				log.Debug("No episode of", show.Name(), "aired on", rel.AirDate.Format("2006-01-02"), ", skipping", item.Title)
				continue
			}
			if season >= 0 && rel.Season != season {
				log.Debug("Release", item.Title, "is for season", rel.Season, ", skipping it")
				continue
			}

			wanted := true
			for _, n := range rel.Episodes {
				if !show.WantEpisode(rel.Season, n, rel.Quality, false) {
					wanted = false
					break
				}
			}
			if !wanted {
				log.Info("Ignoring result", item.Title, "because we don't want an episode that is", rel.Quality)
				continue
			}

			episodes := make([]tv.Episode, 0, len(rel.Episodes))
			for _, n := range rel.Episodes {
				episodes = append(episodes, tv.Episode{Show: show, Season: rel.Season, Number: n, AirDate: rel.AirDate})
			}
			result := p.newResult(episodes, item, rel)

			var key BucketKey
			switch len(episodes) {
			case 0:
				key = WholeSeason
				result.Show = show
				log.Debug("Separating full season result to check for later")
			case 1:
				key = EpisodeBucket(episodes[0].Number)
			default:
				key = MultiEpisode
				log.Debug("Separating multi-episode result to check for later")
			}
			buckets[key] = append(buckets[key], result)
		}
	}
	return buckets
}

// SearchRSS refreshes the cache and returns cached releases for the wanted
// episodes.
func (p *Provider) SearchRSS(ctx context.Context, wanted []tv.Episode) []*SearchResult {
	results := []*SearchResult{}
	if err := p.cache.Update(ctx); err != nil {
		p.logger.Error("Failed to update the", p.name, "cache:", err)
	}
	items, err := p.cache.Items(ctx)
	if err != nil {
		p.logger.Error("Failed to read the", p.name, "cache:", err)
		return results
	}
	for _, ep := range wanted {
		if p.animeOnly && !ep.Show.IsAnime() {
			continue
		}
		results = append(results, p.matchEpisode(p.logger, ep, false, items)...)
	}
	return results
}

// FindNewerVersions lists proper/repack candidates published after since,
// or all of them when since is zero.
func (p *Provider) FindNewerVersions(ctx context.Context, since time.Time) []ProperCandidate {
	find := p.cache.Propers
	if p.findPropers != nil {
		find = p.findPropers
	}
	propers, err := find(ctx, since)
	if err != nil {
		p.logger.Error("Failed to look for propers on", p.name, ":", err)
		return []ProperCandidate{}
	}
	if propers == nil {
		propers = []ProperCandidate{}
	}
	return propers
}

func (p *Provider) newResult(episodes []tv.Episode, item indexers.FeedItem, rel tv.ClassifiedRelease) *SearchResult {
	return &SearchResult{
		Provider:     p,
		Kind:         p.kind,
		Episodes:     episodes,
		Name:         item.Title,
		URL:          item.URL,
		Quality:      rel.Quality,
		ReleaseGroup: rel.ReleaseGroup,
		IsProper:     rel.IsProper,
		Size:         item.Size,
		PublishedAt:  item.PublishedAt,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
