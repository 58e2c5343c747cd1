package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/gaming-portal/live"
	"github.com/Dosada05/gaming-portal/models"
)

type LiveHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewLiveHandler принимает Origin из allowedOrigins; "*" разрешает любой.
func NewLiveHandler(hub *live.Hub, allowedOrigins []string, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: loggerOrDiscard(logger),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeWs обрабатывает GET /ws/{topic}. Клиент получает TABLE_CHANGED
// для каждой записанной в таблицу топика транзакции.
func (h *LiveHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	if !models.IsTopic(topic) {
		notFoundResponse(w, r, "unknown topic")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.Warn("websocket upgrade failed", slog.String("topic", topic), slog.Any("error", err))
		return
	}
	h.hub.Serve(conn, topic)
}
