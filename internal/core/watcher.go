package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"snatcher/internal/tv"
	"snatcher/internal/utils"
)

// BlackholeWatcher reports when a download client consumes a file saved by
// the Acquirer, i.e. removes or renames it out of the watch directory.
type BlackholeWatcher struct {
	watcher *fsnotify.Watcher
	logger  *utils.Logger
}

func NewBlackholeWatcher(dirs []string, logger *utils.Logger) (*BlackholeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return &BlackholeWatcher{watcher: w, logger: logger.WithField("component", "blackhole")}, nil
}

func isPayloadFile(path string) bool {
	switch filepath.Ext(path) {
	case "." + tv.KindNZB.Extension(), "." + tv.KindTorrent.Extension():
		return true
	}
	return false
}

// Run calls onPickup for every consumed payload until ctx is done or the
// watcher is closed.
func (b *BlackholeWatcher) Run(ctx context.Context, onPickup func(path string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if !isPayloadFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				b.logger.Info("Download client picked up", filepath.Base(event.Name))
				onPickup(event.Name)
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.logger.Warn("Blackhole watcher error:", err)
		}
	}
}

func (b *BlackholeWatcher) Close() error {
	return b.watcher.Close()
}
