package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"snatcher/internal/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamEvents pushes snatch events to a websocket client until it
// disconnects.
func (h *APIHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	hub := h.backend.Events()
	if hub == nil {
		respondError(w, http.StatusServiceUnavailable, "Events are not available")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed:", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	// Incoming messages are ignored; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(core.Event{Type: core.EventConnected, At: time.Now()}); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(e); err != nil {
				h.logger.Debug("Event client went away:", err)
				return
			}
		}
	}
}
