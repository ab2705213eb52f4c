package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snatcher/internal/core"
)

func TestStreamEvents(t *testing.T) {
	backend := &fakeBackend{hub: core.NewEventHub()}
	srv := httptest.NewServer(newTestServer(backend))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/events", nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello core.Event
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, core.EventConnected, hello.Type)

	backend.hub.Publish(core.Event{Type: core.EventSnatched, Name: "Show.S01E01", Method: "transmission"})

	var got core.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, core.EventSnatched, got.Type)
	assert.Equal(t, "Show.S01E01", got.Name)
	assert.Equal(t, "transmission", got.Method)
}

func TestStreamEventsUnavailable(t *testing.T) {
	rec := do(t, newTestServer(&fakeBackend{}), "GET", "/api/v1/events", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
