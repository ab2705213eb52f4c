package core

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/disk"

	"snatcher/internal/clients/torrent"
	"snatcher/internal/config"
	"snatcher/internal/providers"
	"snatcher/internal/tv"
	"snatcher/internal/utils"
)

// ErrNotEnoughSpace is returned when the destination is below the
// configured free space floor.
var ErrNotEnoughSpace = fmt.Errorf("%w: not enough free space", tv.ErrIO)

// SniffFunc reports the media type of a saved file.
type SniffFunc func(path string) (string, error)

// acquireTarget is where payloads of one kind are saved and whether they
// are content-checked afterwards.
type acquireTarget struct {
	dir    string
	verify bool
}

// Acquirer saves result payloads into the blackhole directories watched by
// the download clients.
type Acquirer struct {
	targets      map[tv.ProviderKind]acquireTarget
	minFreeBytes uint64
	sniff        SniffFunc
	freeSpace    func(path string) (uint64, error)
	logger       *utils.Logger
}

// NewAcquirer builds an Acquirer from the configured directories. A nil
// sniff uses torrent.SniffContainerType.
func NewAcquirer(cfg *config.Config, sniff SniffFunc, logger *utils.Logger) *Acquirer {
	if sniff == nil {
		sniff = torrent.SniffContainerType
	}
	return &Acquirer{
		targets: map[tv.ProviderKind]acquireTarget{
			tv.KindNZB:     {dir: cfg.Directories.NZB},
			tv.KindTorrent: {dir: cfg.Directories.Torrent, verify: true},
		},
		minFreeBytes: cfg.Acquisition.MinFreeSpaceMB * 1024 * 1024,
		sniff:        sniff,
		freeSpace:    diskFree,
		logger:       logger.WithField("component", "acquirer"),
	}
}

func diskFree(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// Acquire downloads result and writes it to the directory for its kind.
// Torrent payloads that do not sniff as torrent metainfo are removed and
// reported as ErrInvalidArtifact.
func (a *Acquirer) Acquire(ctx context.Context, result *providers.SearchResult) error {
	target, ok := a.targets[result.Kind]
	if !ok || target.dir == "" {
		return fmt.Errorf("%w: no directory configured for %s results", tv.ErrIO, result.Kind)
	}
	if utils.IsMagnet(result.URL) {
		return fmt.Errorf("%w: magnet links cannot be saved to a blackhole", tv.ErrInvalidArtifact)
	}

	data, err := a.payload(ctx, result)
	if err != nil {
		a.logger.Error("Could not download", result.Name, ":", err)
		return err
	}

	if err := a.checkFreeSpace(target.dir); err != nil {
		a.logger.Error(err)
		return err
	}

	dest := filepath.Join(target.dir, artifactName(result)+"."+result.Kind.Extension())
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		a.logger.Error("Failed to save", result.Name, ":", err)
		return fmt.Errorf("%w: %w", tv.ErrIO, err)
	}
	if err := utils.ChmodAsParent(dest); err != nil {
		a.logger.Warn("Could not copy parent permissions to", dest, ":", err)
	}

	if target.verify {
		if err := a.verify(dest); err != nil {
			a.logger.Error(err)
			if rmErr := os.Remove(dest); rmErr != nil {
				a.logger.Warn("Could not remove invalid file", dest, ":", rmErr)
			}
			return err
		}
	}

	a.logger.Info("Saved", result.Name, "to", dest, "("+humanize.Bytes(uint64(len(data)))+")")
	return nil
}

// artifactName is the file name for result, without extension. A name that
// sanitizes to nothing falls back to the URL basename.
func artifactName(result *providers.SearchResult) string {
	if name := utils.SanitizeFilename(result.Name); name != "" {
		return name
	}
	if u, err := url.Parse(result.URL); err == nil {
		base := path.Base(u.Path)
		base = strings.TrimSuffix(base, path.Ext(base))
		if name := utils.SanitizeFilename(base); name != "" {
			return name
		}
	}
	return "snatch-" + uuid.NewString()[:8]
}

func (a *Acquirer) payload(ctx context.Context, result *providers.SearchResult) ([]byte, error) {
	if len(result.Content) > 0 {
		return result.Content, nil
	}
	if result.Provider == nil {
		return nil, fmt.Errorf("%w: result %s has no provider to fetch from", tv.ErrNetwork, result.Name)
	}
	data, err := result.Provider.Fetch(ctx, result.URL)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload from %s", tv.ErrNetwork, result.URL)
	}
	return data, nil
}

func (a *Acquirer) checkFreeSpace(dir string) error {
	if a.minFreeBytes == 0 {
		return nil
	}
	free, err := a.freeSpace(dir)
	if err != nil {
		a.logger.Warn("Could not check free space in", dir, ":", err)
		return nil
	}
	if free < a.minFreeBytes {
		return fmt.Errorf("%w: only %s free in %s, need %s", ErrNotEnoughSpace,
			humanize.Bytes(free), dir, humanize.Bytes(a.minFreeBytes))
	}
	return nil
}

func (a *Acquirer) verify(path string) error {
	mediaType, err := a.sniff(path)
	if err != nil {
		return fmt.Errorf("%w: could not sniff %s: %w", tv.ErrInvalidArtifact, path, err)
	}
	if mediaType != torrent.TorrentMediaType {
		return fmt.Errorf("%w: %s is %s, not a torrent", tv.ErrInvalidArtifact, path, mediaType)
	}
	return nil
}
