package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/kaeeraventures/expertchat/internal/handler/chat"
	realtimehandler "github.com/kaeeraventures/expertchat/internal/handler/realtime"
	middlewarePkg "github.com/kaeeraventures/expertchat/internal/middleware"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatHandler *chathandler.Handler, wsHandler *realtimehandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
