package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/gaming-portal/services"
)

type GameHandler struct {
	gameService services.GameService
	logger      *slog.Logger
}

func NewGameHandler(gs services.GameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{gameService: gs, logger: loggerOrDiscard(logger)}
}

type createGameInput struct {
	Name string `json:"name"`
}

type playerGamesInput struct {
	Games []string `json:"games"`
}

func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.ListGames(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"games": games})
}

// Create обрабатывает POST /games (только админ).
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	var input createGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	game, err := h.gameService.CreateGame(r.Context(), session, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusCreated, jsonResponse{"game": game})
}

// ListMine обрабатывает GET /me/games.
func (h *GameHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	names, err := h.gameService.ListPlayerGames(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"games": names})
}

// ReplaceMine обрабатывает PUT /me/games: список полностью заменяет текущий.
func (h *GameHandler) ReplaceMine(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	var input playerGamesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	names, err := h.gameService.ReplacePlayerGames(r.Context(), session, input.Games)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"games": names})
}
