package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/gaming-portal/services"
)

type MatchHandler struct {
	matchService services.MatchService
	logger       *slog.Logger
}

func NewMatchHandler(ms services.MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{matchService: ms, logger: loggerOrDiscard(logger)}
}

// CreateHandler обрабатывает POST /matches
func (h *MatchHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	var input services.MatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.matchService.Create(r.Context(), session, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusCreated, jsonResponse{"match": match})
}

// UpdateHandler обрабатывает PUT /matches/{matchID}
func (h *MatchHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.MatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.matchService.Edit(r.Context(), session, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"match": match})
}

// DeleteHandler обрабатывает DELETE /matches с телом {"ids": [...]}
func (h *MatchHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	var input idsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.matchService.Delete(r.Context(), session, input.IDs); err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) RestoreHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	match, err := h.matchService.Restore(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"match": match})
}

func (h *MatchHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	matches, err := h.matchService.List(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"matches": matches})
}
