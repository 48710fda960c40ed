package notify

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/stut/displayproxy/internal/buttons"
	"github.com/stut/displayproxy/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub streams presses to every connected websocket client.
type Hub struct {
	clock clockwork.Clock
	log   *slog.Logger

	mu      sync.Mutex
	clients map[*clientWriter]struct{}
	closed  bool
}

var _ Publisher = (*Hub)(nil)

func NewHub(clock clockwork.Clock) *Hub {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Hub{
		clock:   clock,
		log:     slog.With("component", "events"),
		clients: map[*clientWriter]struct{}{},
	}
}

// ServeHTTP upgrades the request and keeps the client registered until the
// connection drops or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("Websocket upgrade failed", "error", err)
		return
	}

	cw := newClientWriter(conn, h.clock)
	if !h.register(cw) {
		cw.stop("shutting down")
		return
	}
	h.log.Debug("Events client connected", "remote", r.RemoteAddr)

	// Read pump: only control frames are expected; it ends when the connection does.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister(cw)
	cw.stop("")
	h.log.Debug("Events client disconnected", "remote", r.RemoteAddr)
}

// Publish queues the press for every client without blocking. Clients whose
// buffer is full miss the event.
func (h *Hub) Publish(p buttons.Press) {
	msg := encodePress(p)

	h.mu.Lock()
	defer h.mu.Unlock()
	for cw := range h.clients {
		if !cw.send(msg) {
			metrics.EventsDropped.Inc()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = map[*clientWriter]struct{}{}
	h.mu.Unlock()

	for cw := range clients {
		cw.stop("shutting down")
		metrics.EventClients.Dec()
	}
	return nil
}

func (h *Hub) register(cw *clientWriter) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cw] = struct{}{}
	metrics.EventClients.Inc()
	return true
}

func (h *Hub) unregister(cw *clientWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cw]; ok {
		delete(h.clients, cw)
		metrics.EventClients.Dec()
	}
}
