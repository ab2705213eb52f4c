package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snatcher/internal/utils"
)

func TestBlackholeWatcherReportsPickup(t *testing.T) {
	dir := t.TempDir()
	w, err := NewBlackholeWatcher([]string{dir, ""}, utils.NewLogger(false))
	require.NoError(t, err)
	defer w.Close()

	picked := make(chan string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, func(path string) { picked <- path })

	ignored := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(ignored, []byte("x"), 0o644))
	require.NoError(t, os.Remove(ignored))

	path := filepath.Join(dir, "Show.S01E01.torrent")
	require.NoError(t, os.WriteFile(path, []byte("d4:infodee"), 0o644))
	require.NoError(t, os.Remove(path))

	select {
	case got := <-picked:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("pickup was not reported")
	}
}

func TestBlackholeWatcherMissingDir(t *testing.T) {
	_, err := NewBlackholeWatcher([]string{filepath.Join(t.TempDir(), "missing")}, utils.NewLogger(false))
	assert.Error(t, err)
}

func TestEventHub(t *testing.T) {
	hub := NewEventHub()
	ch, unsubscribe := hub.Subscribe()

	hub.Publish(Event{Type: EventSnatched, Name: "a"})
	got := <-ch
	assert.Equal(t, EventSnatched, got.Type)
	assert.False(t, got.At.IsZero())

	unsubscribe()
	unsubscribe()
	hub.Publish(Event{Type: EventSnatched, Name: "b"})
	_, open := <-ch
	assert.False(t, open)

	var nilHub *EventHub
	nilHub.Publish(Event{Type: EventSnatched})
}
