package torrent

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/anacrolix/torrent/metainfo"
)

const TorrentMediaType = "application/x-bittorrent"

// SniffContainerType reports the media type of the file at path. Anything
// that decodes as torrent metainfo with a valid info dictionary is
// application/x-bittorrent; everything else falls back to content sniffing.
func SniffContainerType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if mi, err := metainfo.Load(f); err == nil {
		if _, err := mi.UnmarshalInfo(); err == nil {
			return TorrentMediaType, nil
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind %s: %w", path, err)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return http.DetectContentType(head[:n]), nil
}
