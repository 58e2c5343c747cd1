package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/gaming-portal/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

func WithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

func SessionFromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(models.Session)
	return session, ok
}

func sessionFromClaims(claims jwt.MapClaims) (models.Session, error) {
	// Числа в MapClaims приходят как float64.
	idClaim, ok := claims[jwtClaimUserID].(float64)
	if !ok || idClaim != float64(int(idClaim)) || idClaim <= 0 {
		return models.Session{}, fmt.Errorf("%w: bad '%s' claim", ErrInvalidToken, jwtClaimUserID)
	}

	roleClaim, ok := claims[jwtClaimRole].(string)
	if !ok {
		return models.Session{}, fmt.Errorf("%w: missing '%s' claim", ErrInvalidToken, jwtClaimRole)
	}
	role := models.UserRole(roleClaim)
	switch role {
	case models.RoleAdmin, models.RolePlayer:
	default:
		return models.Session{}, fmt.Errorf("%w: invalid role value in claim: %q", ErrInvalidToken, roleClaim)
	}

	name, _ := claims[jwtClaimName].(string)
	return models.Session{UserID: int(idClaim), Username: name, Role: role}, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
