package core

import (
	"sync"
	"time"
)

const (
	EventConnected    = "connected"
	EventSnatched     = "snatched"
	EventSnatchFailed = "snatch_failed"
	EventPickedUp     = "picked_up"
)

// Event is a snatch lifecycle notification pushed to API subscribers.
type Event struct {
	Type     string    `json:"type"`
	Name     string    `json:"name,omitempty"`
	Provider string    `json:"provider,omitempty"`
	Method   string    `json:"method,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// EventHub fans events out to subscribers. Slow subscribers miss events
// rather than block publishers.
type EventHub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a buffered event channel and a function that
// unsubscribes and closes it.
func (h *EventHub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *EventHub) Publish(e Event) {
	if h == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
