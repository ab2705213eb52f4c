package indexers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snatcher/internal/utils"
)

func TestTorznab(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, defaultUserAgent, r.UserAgent())
		assert.Equal(t, "key", q.Get("apikey"))
		assert.Equal(t, "5000", q.Get("cat"))
		switch q.Get("t") {
		case "caps":
			fmt.Fprint(w, `<caps/>`)
		case "tvsearch":
			assert.Equal(t, "Show S01E01", q.Get("q"))
			fmt.Fprint(w, `<rss><channel><item><title>Show.S01E01.720p.HDTV-GRP</title><link>http://t/1.torrent</link></item></channel></rss>`)
		case "search":
			fmt.Fprint(w, `<rss><channel>
<item><title>a</title><link>http://t/a</link></item>
<item><title>b</title><link>http://t/b</link></item>
</channel></rss>`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	c := NewTorznab(srv.URL, "key", "5000", NewFetcher(srv.Client()), utils.NewLogger(false))
	ctx := context.Background()

	items, err := c.Search(ctx, "Show S01E01")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "http://t/1.torrent", items[0].URL)

	items, err = c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	ok, err := c.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTorznabHealthCheckStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, defaultUserAgent, r.UserAgent())
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewTorznab(srv.URL, "bad", "5000", NewFetcher(srv.Client()), utils.NewLogger(false))
	ok, err := c.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	srv.Close()
	ok, err = c.HealthCheck(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}
