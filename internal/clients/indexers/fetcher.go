package indexers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"snatcher/internal/tv"
)

const (
	defaultUserAgent = "snatcher/1.0"
	defaultTimeout   = 30 * time.Second
	maxPayloadBytes  = 32 << 20
)

// HTTPError is returned for a non-2xx indexer response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request to %s failed with status: %d", e.URL, e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return tv.ErrNetwork
}

// Fetcher downloads indexer payloads through a pluggable Transport.
type Fetcher struct {
	transport Transport
	userAgent string
}

// NewFetcher returns a Fetcher using transport, or a plain http.Client with a
// 30 second timeout when transport is nil.
func NewFetcher(transport Transport) *Fetcher {
	if transport == nil {
		transport = &http.Client{Timeout: defaultTimeout}
	}
	return &Fetcher{transport: transport, userAgent: defaultUserAgent}
}

// Fetch GETs rawURL and returns the body. Every failure wraps tv.ErrNetwork.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %s: %w", tv.ErrNetwork, rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.transport.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch %s: %w", tv.ErrNetwork, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", tv.ErrNetwork, rawURL, err)
	}
	return data, nil
}
