// Package realtime holds the session-scoped fan-out core: the registry of
// live connections per session and the coordinator that orders, persists,
// and broadcasts inbound events.
package realtime

import "time"

// Frame event types on the realtime surface.
const (
	EventMessage = "message"
	EventTyping  = "typing"
	EventError   = "error"
)

// Frame is the outbound envelope delivered to connections.
type Frame struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewFrame stamps an outbound frame.
func NewFrame(eventType, sessionID string, data any) Frame {
	return Frame{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

// MessagePayload carries a chat message to every member of a session.
// Reply is nil when no automated answer was produced.
type MessagePayload struct {
	Sender string  `json:"sender"`
	Text   string  `json:"text"`
	Reply  *string `json:"reply"`
}

// TypingPayload notifies members that a peer is typing.
type TypingPayload struct {
	Sender string `json:"sender"`
}

// ErrorPayload reports a processing failure to the originating connection.
type ErrorPayload struct {
	Message string `json:"message"`
}

// MessageEvent is an inbound chat message accepted by the gateway or the
// request surface. Category may be empty; the coordinator resolves it from
// the session record.
type MessageEvent struct {
	SessionID string
	Sender    string
	Text      string
	Category  string
}

// TypingEvent is an inbound typing notification.
type TypingEvent struct {
	SessionID string
	Sender    string
}
