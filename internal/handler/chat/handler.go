package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/kaeeraventures/expertchat/internal/realtime"
	chatservice "github.com/kaeeraventures/expertchat/internal/service/chat"
	"github.com/kaeeraventures/expertchat/internal/service/responder"
	"github.com/kaeeraventures/expertchat/pkg/utils"
)

// Handler serves the non-realtime chat API. Submitted messages run through
// the same dispatch pipeline as socket traffic, so dedup and broadcast
// behave identically on both surfaces.
type Handler struct {
	chatSvc     *chatservice.Service
	coordinator *realtime.Coordinator
}

// New creates the chat API handler.
func New(chatSvc *chatservice.Service, coordinator *realtime.Coordinator) *Handler {
	return &Handler{
		chatSvc:     chatSvc,
		coordinator: coordinator,
	}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleSubmit)
	r.Get("/chat/messages", h.handleMessages)
	r.Get("/chat/greeting", h.handleGreeting)
	r.Get("/chat/sessions", h.handleSessions)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserMessage string `json:"userMessage"`
		Category    string `json:"category"`
		SessionID   string `json:"sessionId"`
		Sender      string `json:"sender"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.UserMessage == "" || payload.Sender == "" {
		utils.RespondError(w, http.StatusBadRequest, "userMessage and sender are required")
		return
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = h.chatSvc.NewSessionID()
	}

	reply, err := h.coordinator.HandleMessage(r.Context(), realtime.MessageEvent{
		SessionID: sessionID,
		Sender:    payload.Sender,
		Text:      payload.UserMessage,
		Category:  payload.Category,
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to process message")
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId":  sessionID,
		"aiResponse": reply,
	})
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	messages, err := h.chatSvc.Transcript(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to load transcript")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"messages":  messages,
	})
}

func (h *Handler) handleGreeting(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		utils.RespondError(w, http.StatusBadRequest, "category is required")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"category": category,
		"greeting": responder.Greeting(category),
	})
}

func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatSvc.ListSessions(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list sessions")
		utils.RespondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessions)
}
