package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-lab/internal/metrics"
	"github.com/yourusername/value-lab/internal/tracker"
)

// SummaryFunc produces the summary sent to a client when it connects
type SummaryFunc func(ctx context.Context) (*tracker.Summary, error)

// Hub tracks connected clients and fans summaries out to them
type Hub struct {
	logger   *logrus.Entry
	current  SummaryFunc
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]struct{}

	broadcast chan Message
	ctx       context.Context
}

// NewHub creates a hub. allowedOrigins restricts the websocket upgrade; an
// empty list accepts any origin. current may be nil.
func NewHub(current SummaryFunc, allowedOrigins []string, logger *logrus.Logger) *Hub {
	h := &Hub{
		logger:    logger.WithField("component", "stream"),
		current:   current,
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan Message, 64),
		ctx:       context.Background(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// Run fans out broadcasts until ctx is cancelled, then drops every client
func (h *Hub) Run(ctx context.Context) {
	h.mu.Lock()
	h.ctx = ctx
	h.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// PublishSummary queues a summary for every connected client. The message is
// dropped when the broadcast buffer is full.
func (h *Hub) PublishSummary(summary *tracker.Summary) {
	msg := Message{Type: MessageTypeSummary, Payload: summary, Timestamp: time.Now()}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Broadcast buffer full, dropping summary")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers the connection
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := newClient(uuid.New().String(), conn, h)
	ctx := h.register(c)

	if h.current != nil {
		if summary, err := h.current(r.Context()); err == nil {
			c.TrySend(Message{Type: MessageTypeSummary, Payload: summary, Timestamp: time.Now()})
		} else {
			h.logger.WithError(err).Warn("Could not build initial summary")
		}
	}

	go c.writePump(ctx)
	go c.readPump(ctx)
}

func (h *Hub) register(c *Client) context.Context {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	metrics.UpdateStreamClients(len(h.clients))
	h.logger.WithFields(logrus.Fields{"client_id": c.ID, "clients": len(h.clients)}).Info("Client connected")
	return h.ctx
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	metrics.UpdateStreamClients(len(h.clients))
	h.logger.WithFields(logrus.Fields{"client_id": c.ID, "clients": len(h.clients)}).Info("Client disconnected")
}

// fanOut sends to every client; slow clients are disconnected
func (h *Hub) fanOut(msg Message) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.TrySend(msg) {
			h.logger.WithField("client_id", c.ID).Warn("Client buffer full, disconnecting")
			h.unregister(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
	metrics.UpdateStreamClients(0)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
