package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/gaming-portal/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
	logger        *slog.Logger
}

func NewPlayerHandler(ps services.PlayerService, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{playerService: ps, logger: loggerOrDiscard(logger)}
}

// List обрабатывает GET /players.
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	players, err := h.playerService.List(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"players": players})
}

// Delete обрабатывает DELETE /players с телом {"ids": [...]}.
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	var input idsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.playerService.Delete(r.Context(), session, input.IDs); err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlayerHandler) Restore(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	user, err := h.playerService.Restore(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"player": user})
}

// Leaderboard открыт без аутентификации.
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.playerService.Leaderboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"leaderboard": entries})
}

func (h *PlayerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	profile, err := h.playerService.Profile(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"profile": profile})
}
