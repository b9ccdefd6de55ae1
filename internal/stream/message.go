// Package stream pushes portfolio summaries to dashboard clients over websockets.
package stream

import "time"

// Message types sent to clients
const (
	MessageTypeSummary   = "portfolio_summary"
	MessageTypeHeartbeat = "heartbeat"
	MessageTypeError     = "error"
)

// Message is the envelope of every server to client frame
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientMessage is a frame received from a client
type ClientMessage struct {
	Type string `json:"type"`
}

// ErrorPayload describes a rejected client frame
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectionStats is returned in reply to a heartbeat
type ConnectionStats struct {
	ClientID     string    `json:"client_id"`
	ConnectedAt  time.Time `json:"connected_at"`
	MessagesSent int64     `json:"messages_sent"`
}
