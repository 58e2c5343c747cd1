package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/gaming-portal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	tm := NewTokenManager("secret", time.Hour)
	in := models.Session{UserID: 42, Username: "neo", Role: models.RolePlayer}

	token, expires, err := tm.Issue(in)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expiry %v is not in the future", expires)
	}

	got, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != in {
		t.Fatalf("session = %+v, want %+v", got, in)
	}
}

func TestTokenRejected(t *testing.T) {
	t.Parallel()
	tm := NewTokenManager("secret", time.Hour)

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(models.Session{UserID: 1, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	foreign, _, err := NewTokenManager("other", time.Hour).Issue(models.Session{UserID: 1, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1, "role": "organizer", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1, "role": "admin",
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", old},
		{"wrong secret", foreign},
		{"unknown role", badRole},
		{"no expiry", noExp},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := tm.Parse(tt.token); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	t.Parallel()
	tm := NewTokenManager("secret", time.Hour)
	adminToken, _, _ := tm.Issue(models.Session{UserID: 1, Username: "root", Role: models.RoleAdmin})
	playerToken, _, _ := tm.Issue(models.Session{UserID: 2, Username: "neo", Role: models.RolePlayer})

	var seen models.Session
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := Authenticate(tm, nil)(RequireRole(models.RoleAdmin)(final))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + adminToken, http.StatusUnauthorized},
		{"player forbidden", "Bearer " + playerToken, http.StatusForbidden},
		{"admin allowed", "Bearer " + adminToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/players", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
	if seen.UserID != 1 || seen.Username != "root" {
		t.Fatalf("session in context = %+v", seen)
	}
}

func TestRequireRoleWithoutSession(t *testing.T) {
	t.Parallel()
	h := RequireRole(models.RolePlayer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me/games", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}
