package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/gaming-portal/services"
)

type TeamHandler struct {
	teamService services.TeamService
	logger      *slog.Logger
}

func NewTeamHandler(ts services.TeamService, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{teamService: ts, logger: loggerOrDiscard(logger)}
}

type teamNameInput struct {
	Name string `json:"name"`
}

func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"teams": teams})
}

// CreateTeam обрабатывает POST /teams; создатель сразу становится участником.
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	var input teamNameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	team, err := h.teamService.Create(r.Context(), session, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusCreated, jsonResponse{"team": team})
}

// JoinTeam обрабатывает POST /teams/join
func (h *TeamHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	var input teamNameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	team, err := h.teamService.Join(r.Context(), session, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"team": team})
}
