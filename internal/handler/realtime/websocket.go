// Package realtime is the websocket boundary: it terminates connections,
// binds each one to a session and role, and shuttles frames between the
// socket and the dispatch coordinator. All session state lives in the
// registry, none here.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/kaeeraventures/expertchat/internal/model/chat"
	"github.com/kaeeraventures/expertchat/internal/realtime"
)

const writeWait = 10 * time.Second

// Handler upgrades and serves realtime chat connections.
type Handler struct {
	registry    *realtime.Registry
	coordinator *realtime.Coordinator
	upgrader    websocket.Upgrader
}

// New creates the websocket handler.
func New(registry *realtime.Registry, coordinator *realtime.Coordinator) *Handler {
	return &Handler{
		registry:    registry,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the realtime endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

// inboundFrame is the envelope read off the socket. SessionID is ignored;
// the connection is bound to one session for its whole lifetime.
type inboundFrame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type messageData struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type typingData struct {
	Sender string `json:"sender"`
}

// wsConn adapts a gorilla connection to the registry's handle. gorilla
// permits a single concurrent writer, hence the write lock.
type wsConn struct {
	id        string
	sessionID string
	role      string
	sock      *websocket.Conn

	writeMu sync.Mutex
}

func (c *wsConn) ID() string        { return c.id }
func (c *wsConn) SessionID() string { return c.sessionID }
func (c *wsConn) Role() string      { return c.role }

func (c *wsConn) Send(frame realtime.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
	return c.sock.WriteJSON(frame)
}

func validRole(role string) bool {
	return role == chat.SenderUser || role == chat.SenderAdmin
}

// handleWebSocket establishes a connection for ?sessionId=&role=. Missing or
// malformed parameters close the socket before any event reaches the
// coordinator.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	role := r.URL.Query().Get("role")

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	if sessionID == "" || !validRole(role) {
		frame := realtime.NewFrame(realtime.EventError, sessionID, realtime.ErrorPayload{
			Message: "sessionId and role query parameters are required",
		})
		_ = sock.WriteJSON(frame)
		_ = sock.Close()
		return
	}

	client := &wsConn{
		id:        uuid.NewString(),
		sessionID: sessionID,
		role:      role,
		sock:      sock,
	}

	h.registry.Attach(client)
	log.Info().
		Str("conn_id", client.id).
		Str("session_id", sessionID).
		Str("role", role).
		Msg("client connected")

	defer func() {
		h.registry.Detach(client)
		_ = sock.Close()
		log.Info().
			Str("conn_id", client.id).
			Str("session_id", sessionID).
			Msg("client disconnected")
	}()

	h.readLoop(r.Context(), client)
}

func (h *Handler) readLoop(ctx context.Context, client *wsConn) {
	for {
		var frame inboundFrame
		if err := client.sock.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("conn_id", client.id).Msg("read loop ended")
			}
			return
		}

		switch frame.Type {
		case realtime.EventMessage:
			h.handleInboundMessage(ctx, client, frame.Data)
		case realtime.EventTyping:
			var data typingData
			if len(frame.Data) > 0 {
				_ = json.Unmarshal(frame.Data, &data)
			}
			sender := data.Sender
			if sender == "" {
				sender = client.role
			}
			h.coordinator.HandleTyping(realtime.TypingEvent{SessionID: client.sessionID, Sender: sender})
		default:
			log.Debug().Str("type", frame.Type).Str("conn_id", client.id).Msg("ignoring unknown frame type")
		}
	}
}

func (h *Handler) handleInboundMessage(ctx context.Context, client *wsConn, raw json.RawMessage) {
	var data messageData
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			h.sendError(client, "invalid message payload")
			return
		}
	}
	if data.Text == "" {
		h.sendError(client, "text is required")
		return
	}
	sender := data.Sender
	if sender == "" {
		sender = client.role
	}

	event := realtime.MessageEvent{
		SessionID: client.sessionID,
		Sender:    sender,
		Text:      data.Text,
	}
	if _, err := h.coordinator.HandleMessage(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("session_id", client.sessionID).
			Str("conn_id", client.id).
			Msg("failed to process message")
		h.sendError(client, "failed to save message")
	}
}

// sendError reports a failure to the originating connection only.
func (h *Handler) sendError(client *wsConn, message string) {
	frame := realtime.NewFrame(realtime.EventError, client.sessionID, realtime.ErrorPayload{Message: message})
	if err := client.Send(frame); err != nil {
		log.Debug().Err(err).Str("conn_id", client.id).Msg("error frame delivery failed")
	}
}
