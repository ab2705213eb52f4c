package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snatcher/internal/config"
	"snatcher/internal/core"
	"snatcher/internal/database/models"
	"snatcher/internal/providers"
	"snatcher/internal/tv"
	"snatcher/internal/utils"
)

type fakeBackend struct {
	provs     []*providers.Provider
	results   []*providers.SearchResult
	snatchErr error
	refresh   error
	history   []models.Snatch
	since     time.Time
	lastReq   core.SearchRequest
	snatched  int
	hub       *core.EventHub
}

func (f *fakeBackend) Providers() []*providers.Provider { return f.provs }

func (f *fakeBackend) Search(_ context.Context, req core.SearchRequest) ([]*providers.SearchResult, error) {
	f.lastReq = req
	return f.results, nil
}

func (f *fakeBackend) SnatchBest(_ context.Context, results []*providers.SearchResult) (*providers.SearchResult, error) {
	f.snatched++
	if f.snatchErr != nil {
		return nil, f.snatchErr
	}
	return results[0], nil
}

func (f *fakeBackend) FindPropers(_ context.Context, since time.Time) []providers.ProperCandidate {
	f.since = since
	return []providers.ProperCandidate{{Name: "Show - 01v2", URL: "http://x/1", Date: since.Add(time.Hour)}}
}

func (f *fakeBackend) RefreshCaches(context.Context) error { return f.refresh }

func (f *fakeBackend) History(context.Context, int) ([]models.Snatch, error) { return f.history, nil }

func (f *fakeBackend) TestNotifiers() error { return nil }

func (f *fakeBackend) Events() *core.EventHub { return f.hub }

func newTestServer(backend Backend) http.Handler {
	cfg := &config.Config{}
	return NewServer(cfg, backend, utils.NewLogger(false)).Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetStatus(t *testing.T) {
	backend := &fakeBackend{provs: []*providers.Provider{
		providers.NewProvider(providers.Options{Name: "Fan Zub", Kind: tv.KindNZB, Enabled: true}, utils.NewLogger(false)),
	}}
	rec := do(t, newTestServer(backend), "GET", "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Providers []providerStatus `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Providers, 1)
	assert.Equal(t, "fan_zub", body.Providers[0].ID)
	assert.Equal(t, "nzb", body.Providers[0].Kind)
	assert.Equal(t, "fan_zub.png", body.Providers[0].Image)
}

func TestGetHistory(t *testing.T) {
	h := newTestServer(&fakeBackend{})

	rec := do(t, h, "GET", "/api/v1/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, "GET", "/api/v1/history?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPropers(t *testing.T) {
	backend := &fakeBackend{}
	h := newTestServer(backend)

	rec := do(t, h, "GET", "/api/v1/propers?since=2013-06-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2013, 6, 1, 0, 0, 0, 0, time.UTC), backend.since)

	rec = do(t, h, "GET", "/api/v1/propers?since=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	published := time.Date(2013, 6, 1, 12, 0, 0, 0, time.UTC)
	backend := &fakeBackend{results: []*providers.SearchResult{
		{Name: "Show.S01E02.720p.HDTV.x264-GRP", Kind: tv.KindTorrent, Quality: tv.QualityHDTV, PublishedAt: published},
		{Name: "Show.S01E02.1080p.WEB-DL.x264-GRP", Kind: tv.KindTorrent, Quality: tv.QualityFullHDWebDL},
	}}
	h := newTestServer(backend)

	rec := do(t, h, "POST", "/api/v1/search", `{"show":"Show","season":1,"episode":2,"manual":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.SearchRequest{Show: "Show", Season: 1, Episode: 2, Manual: true}, backend.lastReq)
	assert.Zero(t, backend.snatched)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "torrent", resp.Results[0].Kind)
	require.NotNil(t, resp.Results[0].Date)
	assert.True(t, published.Equal(*resp.Results[0].Date))
	assert.Nil(t, resp.Results[1].Date)
	assert.NotContains(t, rec.Body.String(), "0001-01-01")
	assert.Nil(t, resp.Snatched)
}

func TestSearchAndSnatch(t *testing.T) {
	backend := &fakeBackend{results: []*providers.SearchResult{{Name: "a", Kind: tv.KindNZB}}}
	h := newTestServer(backend)

	rec := do(t, h, "POST", "/api/v1/search", `{"show":"Show","season":1,"snatch":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Snatched)
	assert.Equal(t, "a", resp.Snatched.Name)

	backend.snatchErr = errors.New("could not queue")
	rec = do(t, h, "POST", "/api/v1/search", `{"show":"Show","season":1,"snatch":true}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSearchBadRequest(t *testing.T) {
	h := newTestServer(&fakeBackend{})
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/api/v1/search", `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/api/v1/search", `{"season":1}`).Code)
}

func TestRefreshCaches(t *testing.T) {
	backend := &fakeBackend{}
	h := newTestServer(backend)
	assert.Equal(t, http.StatusOK, do(t, h, "POST", "/api/v1/refresh", "").Code)

	backend.refresh = tv.ErrNetwork
	assert.Equal(t, http.StatusBadGateway, do(t, h, "POST", "/api/v1/refresh", "").Code)
}
