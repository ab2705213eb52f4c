package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "./data/snatcher.db", cfg.Database.Path)
	assert.Equal(t, SnatchBlackhole, cfg.Search.SnatchMethod)
	assert.True(t, cfg.Search.UseNZBs)
	assert.Equal(t, "localhost:9091", cfg.Transmission.Host)
	assert.Empty(t, cfg.Providers)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
search:
  use_nzbs: true
  use_torrents: false
  snatch_method: transmission
directories:
  nzb: /watch/nzb
providers:
  - name: Fanzub
    type: fanzub
    url: https://fanzub.com/
    enabled: true
  - name: Jackett
    type: torznab
    url: http://localhost:9117/api/v2.0/indexers/all/results/torznab/
    api_key: secret
    enabled: false
transmission:
  host: seedbox:9091
  download_dir: /downloads
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SnatchTransmission, cfg.Search.SnatchMethod)
	assert.Equal(t, "/watch/nzb", cfg.Directories.NZB)
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "secret", cfg.Providers[1].APIKey)

	enabled := cfg.EnabledProviders()
	require.Len(t, enabled, 1)
	assert.Equal(t, "Fanzub", enabled[0].Name)
	assert.Equal(t, "/downloads", cfg.Transmission.DownloadDir)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SNATCHER_TRANSMISSION_HOST", "envhost:9091")
	t.Setenv("SNATCHER_TRANSMISSION_USERNAME", "user")
	t.Setenv("SNATCHER_TRANSMISSION_PASSWORD", "pass")
	t.Setenv("SNATCHER_DEBUG", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "envhost:9091", cfg.Transmission.Host)
	assert.Equal(t, "user", cfg.Transmission.Username)
	assert.Equal(t, "pass", cfg.Transmission.Password)
	assert.True(t, cfg.App.Debug)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  string
	}{
		{
			name: "unknown provider type",
			body: "providers:\n  - {name: x, type: rarbg, url: http://x}\n",
			err:  "unsupported type",
		},
		{
			name: "missing url",
			body: "providers:\n  - {name: x, type: fanzub}\n",
			err:  "url is required",
		},
		{
			name: "duplicate names",
			body: "providers:\n  - {name: x, type: fanzub, url: http://a}\n  - {name: X, type: torznab, url: http://b}\n",
			err:  "configured twice",
		},
		{
			name: "unknown snatch method",
			body: "search:\n  snatch_method: ftp\n",
			err:  "unsupported snatch method",
		},
		{
			name: "empty nzb directory",
			body: "directories:\n  nzb: \"\"\n",
			err:  "directories.nzb",
		},
		{
			name: "bad reject pattern",
			body: "search:\n  reject_patterns: [\"(unclosed\"]\n",
			err:  "invalid reject pattern",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{}
	cfg.App.DataPath = filepath.Join(root, "data")
	cfg.Directories.NZB = filepath.Join(root, "watch", "nzb")
	cfg.Directories.Torrent = filepath.Join(root, "watch", "torrent")

	require.NoError(t, cfg.EnsureDirectories())
	assert.DirExists(t, cfg.App.DataPath)
	assert.DirExists(t, cfg.Directories.NZB)
	assert.DirExists(t, cfg.Directories.Torrent)
}
