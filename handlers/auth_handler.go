package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Dosada05/gaming-portal/middleware"
	"github.com/Dosada05/gaming-portal/services"
)

type AuthHandler struct {
	authService   services.AuthService
	playerService services.PlayerService
	tokens        *middleware.TokenManager
	logger        *slog.Logger
}

func NewAuthHandler(authService services.AuthService, playerService services.PlayerService, tokens *middleware.TokenManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		playerService: playerService,
		tokens:        tokens,
		logger:        loggerOrDiscard(logger),
	}
}

// Register обрабатывает POST /auth/register. Новый аккаунт всегда игрок.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.playerService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	respond(w, r, h.logger, http.StatusCreated, jsonResponse{"user": user})
}

// Login обрабатывает POST /auth/login и выдает bearer токен.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	token, expires, err := h.tokens.Issue(*session)
	if err != nil {
		serverErrorResponse(w, r, h.logger, fmt.Errorf("issue token for user %d: %w", session.UserID, err))
		return
	}

	respond(w, r, h.logger, http.StatusOK, jsonResponse{
		"token":      token,
		"expires_at": expires,
		"user_id":    session.UserID,
		"username":   session.Username,
		"role":       session.Role,
		"dashboard":  session.Dashboard(),
	})
}
