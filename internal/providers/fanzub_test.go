package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snatcher/internal/clients/indexers"
	"snatcher/internal/tv"
	"snatcher/internal/utils"
)

func newFanzubTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewFanzubProvider("Fanzub", srv.URL, true, nil, indexers.NewFetcher(srv.Client()), utils.NewLogger(false))
	p.indexer.(*indexers.Fanzub).SetSleep(func(time.Duration) {})
	return p
}

func TestFanzubFindNewerVersions(t *testing.T) {
	var queries []string
	p := newFanzubTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		if q != "v2" {
			fmt.Fprint(w, `<rss><channel></channel></rss>`)
			return
		}
		fmt.Fprint(w, `<rss><channel><item>
<title>[Grp] Show - 03v2 [720p]</title>
<link>http://fanzub/3v2.nzb</link>
<pubDate>Tue, 01 Jan 2013 10:00:00 +0000</pubDate>
</item></channel></rss>`)
	})

	propers := p.FindNewerVersions(context.Background(), time.Time{})
	assert.Equal(t, []string{"v2", "v3", "v4"}, queries)
	require.Len(t, propers, 1)
	assert.Equal(t, "[Grp] Show - 03v2 [720p]", propers[0].Name)
	assert.Equal(t, "http://fanzub/3v2.nzb", propers[0].URL)
	assert.Equal(t, time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC), propers[0].Date)

	propers = p.FindNewerVersions(context.Background(), time.Date(2013, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.NotNil(t, propers)
	assert.Empty(t, propers)
}

func TestFanzubProviderSearchEpisode(t *testing.T) {
	p := newFanzubTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anime", r.URL.Query().Get("cat"))
		fmt.Fprint(w, `<rss><channel>
<item><title>[Grp] Shingeki no Kyojin - 13 [720p]</title><link>http://fanzub/13.nzb</link></item>
<item><title>[Grp] Shingeki no Kyojin - 12 [720p]</title><link>http://fanzub/12.nzb</link></item>
</channel></rss>`)
	})
	show := &tv.StaticShow{Title: "Shingeki no Kyojin", Anime: true}

	assert.Equal(t, tv.KindNZB, p.Kind())
	results := p.SearchEpisode(context.Background(), tv.Episode{Show: show, Season: 1, Number: 13, AbsoluteNumber: 13}, true, "")
	require.Len(t, results, 1)
	assert.Equal(t, "http://fanzub/13.nzb", results[0].URL)
	assert.Equal(t, tv.KindNZB, results[0].Kind)

	assert.False(t, p.IsApplicable(&tv.StaticShow{Title: "Show"}))
}
