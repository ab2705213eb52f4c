package utils

import (
	"fmt"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

// IsMagnet reports whether link is a magnet URI.
func IsMagnet(link string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(link)), "magnet:")
}

// MagnetInfoHash extracts the hex info hash from a magnet URI.
func MagnetInfoHash(link string) (string, error) {
	m, err := metainfo.ParseMagnetUri(link)
	if err != nil {
		return "", fmt.Errorf("invalid magnet link: %w", err)
	}
	return m.InfoHash.HexString(), nil
}
