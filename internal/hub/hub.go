// Package hub fans server-sent events out to connected pages.
package hub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventReload tells pages to re-fetch their current view.
const EventReload = "reload"

const (
	clientBuffer      = 16
	keepaliveInterval = 30 * time.Second
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data any
}

// Client is a subscriber's event stream.
type Client struct {
	events chan Event
}

// Events returns the channel the hub delivers to. It is closed on Unsubscribe.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Hub tracks subscribers and broadcasts events to them.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]struct{}
	logger    zerolog.Logger
	keepalive time.Duration
}

// New creates a hub that logs through lgr.
func New(lgr zerolog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		logger:    lgr,
		keepalive: keepaliveInterval,
	}
}

// Subscribe registers a new client.
func (h *Hub) Subscribe() *Client {
	c := &Client{events: make(chan Event, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", n).Msg("sse client connected")
	return c
}

// Unsubscribe removes c and closes its channel. Calling it twice is harmless.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.events)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Debug().Int("clients", n).Msg("sse client disconnected")
	}
}

// Broadcast delivers ev to every client without blocking. Clients whose buffer
// is full miss the event. It returns the number of clients that received it.
func (h *Hub) Broadcast(ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients {
		select {
		case c.events <- ev:
			delivered++
		default:
			h.logger.Warn().Str("event", ev.Name).Msg("sse client is slow, dropping event")
		}
	}
	return delivered
}

// Count returns the number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP streams events to one client until the request ends.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	c := h.Subscribe()
	defer h.Unsubscribe(c)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// writeEvent writes ev in text/event-stream framing.
func writeEvent(w http.ResponseWriter, ev Event) error {
	data := []byte("{}")
	if ev.Data != nil {
		var err error
		if data, err = json.Marshal(ev.Data); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}
