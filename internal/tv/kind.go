package tv

import "fmt"

// ProviderKind is the payload type a provider deals in.
type ProviderKind string

const (
	KindNZB     ProviderKind = "nzb"
	KindTorrent ProviderKind = "torrent"
)

// ParseProviderKind maps a config value onto a ProviderKind.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch ProviderKind(s) {
	case KindNZB, KindTorrent:
		return ProviderKind(s), nil
	}
	return "", fmt.Errorf("unknown provider kind %q", s)
}

// Extension is the file extension used when a payload of this kind is saved.
func (k ProviderKind) Extension() string {
	return string(k)
}

func (k ProviderKind) String() string {
	return string(k)
}
