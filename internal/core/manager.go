package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"snatcher/internal/clients/indexers"
	"snatcher/internal/clients/notifications"
	"snatcher/internal/clients/torrent"
	"snatcher/internal/config"
	"snatcher/internal/database/models"
	"snatcher/internal/providers"
	"snatcher/internal/tv"
	"snatcher/internal/utils"
)

const maxParallelProviders = 4

// Manager runs searches across all providers and snatches the results.
type Manager struct {
	config    *config.Config
	providers []*providers.Provider
	acquirer  *Acquirer
	queue     torrent.QueueClient
	selector  *Selector
	history   *models.HistoryRepository
	notifiers []notifications.Notifier
	events    *EventHub
	logger    *utils.Logger
	scheduler *cron.Cron
}

func NewManager(ctx context.Context, cfg *config.Config, db *sql.DB, logger *utils.Logger) (*Manager, error) {
	fetcher := indexers.NewFetcher(nil)
	provs, err := providers.FromConfig(cfg, models.NewCacheRepository(db), fetcher, logger)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		config:    cfg,
		providers: provs,
		acquirer:  NewAcquirer(cfg, nil, logger),
		selector:  NewSelector(cfg.Search.RejectPatterns, logger),
		history:   models.NewHistoryRepository(db),
		events:    NewEventHub(),
		logger:    logger,
		scheduler: cron.New(),
	}

	if cfg.Search.SnatchMethod == config.SnatchTransmission {
		client, err := torrent.NewTransmissionClient(ctx, cfg.Transmission, &http.Client{Timeout: 30 * time.Second}, fetcher, logger)
		if err != nil {
			return nil, err
		}
		m.queue = client
	}

	if key := cfg.Notifications.Pushbullet.APIKey; key != "" {
		m.notifiers = append(m.notifiers, notifications.NewPushbulletClient(key, logger))
	}

	return m, nil
}

// Providers returns the configured providers in config order.
func (m *Manager) Providers() []*providers.Provider {
	return m.providers
}

func (m *Manager) activeProviders(show tv.Show) []*providers.Provider {
	var active []*providers.Provider
	for _, p := range m.providers {
		if !p.IsActive(m.config.Search.UseNZBs, m.config.Search.UseTorrents) {
			continue
		}
		if show != nil && !p.IsApplicable(show) {
			continue
		}
		active = append(active, p)
	}
	return active
}

// eachProvider runs fn for every provider concurrently. Each provider keeps
// its own rate limit, so a slow indexer does not hold up the others.
func eachProvider(ctx context.Context, provs []*providers.Provider, fn func(ctx context.Context, i int, p *providers.Provider)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelProviders)
	for i, p := range provs {
		i, p := i, p
		g.Go(func() error {
			fn(gctx, i, p)
			return nil
		})
	}
	_ = g.Wait()
}

// SearchEpisode searches every applicable provider for ep. Results keep
// provider order.
func (m *Manager) SearchEpisode(ctx context.Context, ep tv.Episode, manual bool, query string) []*providers.SearchResult {
	provs := m.activeProviders(ep.Show)
	found := make([][]*providers.SearchResult, len(provs))
	eachProvider(ctx, provs, func(ctx context.Context, i int, p *providers.Provider) {
		found[i] = p.SearchEpisode(ctx, ep, manual, query)
	})

	results := []*providers.SearchResult{}
	for _, r := range found {
		results = append(results, r...)
	}
	m.logger.Info("Found", len(results), "results for", ep.PrettyName())
	return results
}

// SearchSeason merges the season buckets of every applicable provider.
func (m *Manager) SearchSeason(ctx context.Context, show tv.Show, season int) map[providers.BucketKey][]*providers.SearchResult {
	provs := m.activeProviders(show)
	found := make([]map[providers.BucketKey][]*providers.SearchResult, len(provs))
	eachProvider(ctx, provs, func(ctx context.Context, i int, p *providers.Provider) {
		found[i] = p.SearchSeason(ctx, show, season)
	})

	merged := make(map[providers.BucketKey][]*providers.SearchResult)
	for _, buckets := range found {
		for key, results := range buckets {
			merged[key] = append(merged[key], results...)
		}
	}
	return merged
}

// SearchRSS checks every provider's cache for the wanted episodes.
func (m *Manager) SearchRSS(ctx context.Context, wanted []tv.Episode) []*providers.SearchResult {
	provs := m.activeProviders(nil)
	found := make([][]*providers.SearchResult, len(provs))
	eachProvider(ctx, provs, func(ctx context.Context, i int, p *providers.Provider) {
		found[i] = p.SearchRSS(ctx, wanted)
	})

	results := []*providers.SearchResult{}
	for _, r := range found {
		results = append(results, r...)
	}
	return results
}

// FindPropers collects proper/repack candidates newer than since from all
// active providers.
func (m *Manager) FindPropers(ctx context.Context, since time.Time) []providers.ProperCandidate {
	provs := m.activeProviders(nil)
	found := make([][]providers.ProperCandidate, len(provs))
	eachProvider(ctx, provs, func(ctx context.Context, i int, p *providers.Provider) {
		found[i] = p.FindNewerVersions(ctx, since)
	})

	propers := []providers.ProperCandidate{}
	for _, c := range found {
		propers = append(propers, c...)
	}
	return propers
}

// RefreshCaches updates the RSS cache of every active provider.
func (m *Manager) RefreshCaches(ctx context.Context) error {
	provs := m.activeProviders(nil)
	errs := make([]error, len(provs))
	eachProvider(ctx, provs, func(ctx context.Context, i int, p *providers.Provider) {
		if err := p.UpdateCache(ctx); err != nil {
			m.logger.Error("Failed to refresh the", p.Name(), "cache:", err)
			errs[i] = fmt.Errorf("%s: %w", p.Name(), err)
		}
	})
	return errors.Join(errs...)
}

func (m *Manager) snatchMethod(result *providers.SearchResult) string {
	if result.Kind == tv.KindTorrent && m.config.Search.SnatchMethod == config.SnatchTransmission && m.queue != nil {
		return config.SnatchTransmission
	}
	return config.SnatchBlackhole
}

// Snatch hands result to Transmission or saves it to the blackhole
// directory, records it and notifies.
func (m *Manager) Snatch(ctx context.Context, result *providers.SearchResult) error {
	method := m.snatchMethod(result)
	m.logger.Info("Snatching", result.String(), "via", method)

	var err error
	switch method {
	case config.SnatchTransmission:
		if _, ok := m.queue.SendTorrent(ctx, result.Name, result.URL); !ok {
			err = fmt.Errorf("could not queue %s on transmission", result.Name)
		}
	default:
		err = m.acquirer.Acquire(ctx, result)
	}

	if err != nil {
		m.events.Publish(Event{Type: EventSnatchFailed, Name: result.Name, Method: method, Error: err.Error()})
		m.notify(func(n notifications.Notifier) {
			if errors.Is(err, ErrNotEnoughSpace) {
				n.NotifyNotEnoughSpace(result.Name)
				return
			}
			n.NotifySnatchFailed(result.Name, err)
		})
		return err
	}

	providerName := ""
	if result.Provider != nil {
		providerName = result.Provider.Name()
	}
	if m.history != nil {
		snatch := &models.Snatch{
			Provider:   providerName,
			Name:       result.Name,
			URL:        result.URL,
			Kind:       result.Kind.String(),
			Quality:    int(result.Quality),
			Method:     method,
			SnatchedAt: time.Now(),
		}
		if err := m.history.Add(ctx, snatch); err != nil {
			m.logger.Warn("Could not record snatch of", result.Name, ":", err)
		}
	}
	m.events.Publish(Event{Type: EventSnatched, Name: result.Name, Provider: providerName, Method: method})
	m.notify(func(n notifications.Notifier) {
		n.NotifySnatch(result.Name, providerName, method)
	})
	return nil
}

// Events returns the hub snatch events are published on.
func (m *Manager) Events() *EventHub {
	return m.events
}

// PickedUp publishes that a download client consumed a blackhole file.
func (m *Manager) PickedUp(path string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m.events.Publish(Event{Type: EventPickedUp, Name: name, Method: config.SnatchBlackhole})
}

// SnatchBest tries the ranked results in order until one is snatched.
func (m *Manager) SnatchBest(ctx context.Context, results []*providers.SearchResult) (*providers.SearchResult, error) {
	ranked := m.selector.Rank(results)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no acceptable results")
	}

	var errs []error
	for _, result := range ranked {
		err := m.Snatch(ctx, result)
		if err == nil {
			return result, nil
		}
		m.logger.Warn("Snatch of", result.Name, "failed, trying the next result:", err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// History returns the most recent snatches.
func (m *Manager) History(ctx context.Context, limit int) ([]models.Snatch, error) {
	if m.history == nil {
		return nil, nil
	}
	return m.history.Recent(ctx, limit)
}

// Queue exposes the Transmission client, nil unless snatch_method is
// transmission.
func (m *Manager) Queue() torrent.QueueClient {
	return m.queue
}

func (m *Manager) notify(fn func(n notifications.Notifier)) {
	var wg sync.WaitGroup
	for _, n := range m.notifiers {
		wg.Add(1)
		go func(notifier notifications.Notifier) {
			defer wg.Done()
			fn(notifier)
		}(n)
	}
	wg.Wait()
}

// TestNotifiers checks every configured notifier's credentials.
func (m *Manager) TestNotifiers() error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Test(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) StartScheduler() error {
	if _, err := m.scheduler.AddFunc(m.config.Search.CacheRefresh, func() {
		log := m.logger.WithField("job", "cache-refresh")
		log.Debug("Refreshing provider caches")
		if err := m.RefreshCaches(context.Background()); err != nil {
			log.Warn("Cache refresh finished with errors:", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid cache_refresh schedule %q: %w", m.config.Search.CacheRefresh, err)
	}
	m.scheduler.Start()
	m.logger.Info("Scheduler started, refreshing caches", m.config.Search.CacheRefresh)
	return nil
}

func (m *Manager) Stop() {
	if m.scheduler != nil {
		<-m.scheduler.Stop().Done()
	}
}
