package torrent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMetainfo() []byte {
	pieces := strings.Repeat("x", 20)
	return []byte("d8:announce23:http://tracker/announce4:infod6:lengthi1e4:name5:a.txt" +
		"12:piece lengthi16384e6:pieces20:" + pieces + "ee")
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestSniffContainerTypeTorrent(t *testing.T) {
	got, err := SniffContainerType(writeFile(t, "a.torrent", validMetainfo()))
	require.NoError(t, err)
	assert.Equal(t, TorrentMediaType, got)
}

func TestSniffContainerTypeHTML(t *testing.T) {
	got, err := SniffContainerType(writeFile(t, "a.torrent", []byte("<html><body>Login required</body></html>")))
	require.NoError(t, err)
	assert.NotEqual(t, TorrentMediaType, got)
	assert.Contains(t, got, "text/html")
}

func TestSniffContainerTypeEmpty(t *testing.T) {
	got, err := SniffContainerType(writeFile(t, "a.torrent", nil))
	require.NoError(t, err)
	assert.NotEqual(t, TorrentMediaType, got)
}

func TestSniffContainerTypeMissing(t *testing.T) {
	_, err := SniffContainerType(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
