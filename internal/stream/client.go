package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

// Client is one websocket connection
type Client struct {
	ID          string
	conn        *websocket.Conn
	hub         *Hub
	logger      *logrus.Entry
	connectedAt time.Time

	mu           sync.Mutex
	send         chan Message
	closed       bool
	messagesSent int64
}

func newClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		conn:        conn,
		hub:         hub,
		logger:      hub.logger.WithField("client_id", id),
		connectedAt: time.Now(),
		send:        make(chan Message, sendBufferSize),
	}
}

// TrySend queues a message without blocking. It reports false when the
// buffer is full or the client is gone.
func (c *Client) TrySend(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) stats() ConnectionStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConnectionStats{ClientID: c.ID, ConnectedAt: c.connectedAt, MessagesSent: c.messagesSent}
}

// readPump handles client frames until the connection drops
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}

		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("Unexpected websocket close")
			}
			return
		}

		switch msg.Type {
		case MessageTypeHeartbeat:
			c.TrySend(Message{Type: MessageTypeHeartbeat, Payload: c.stats(), Timestamp: time.Now()})
		default:
			c.TrySend(Message{
				Type:      MessageTypeError,
				Payload:   ErrorPayload{Code: "unknown_message_type", Message: fmt.Sprintf("unknown message type: %s", msg.Type)},
				Timestamp: time.Now(),
			})
		}
	}
}

// writePump drains the send buffer and keeps the connection alive with pings
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.WithError(err).Debug("Websocket write failed")
				return
			}
			c.mu.Lock()
			c.messagesSent++
			c.mu.Unlock()

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
