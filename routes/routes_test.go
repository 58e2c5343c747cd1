package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/gaming-portal/handlers"
	"github.com/Dosada05/gaming-portal/live"
	"github.com/Dosada05/gaming-portal/middleware"
	"github.com/Dosada05/gaming-portal/repositories/memory"
	"github.com/Dosada05/gaming-portal/services"
	"github.com/Dosada05/gaming-portal/utils"
)

func TestMain(m *testing.M) {
	utils.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type api struct {
	t   *testing.T
	srv *httptest.Server
}

func newAPI(t *testing.T) *api {
	t.Helper()
	s := memory.New()
	tx := s.Transactor()
	hub := live.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	auth := services.NewAuthService(s.Users(), nil)
	if err := auth.EnsureAdmin(context.Background(), "root", "rootpw"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	players := services.NewPlayerService(tx, s.Users(), s.Stats(), s.PlayerGames(), s.Teams(), s.Participants(), hub, nil)
	tokens := middleware.NewTokenManager("test-secret", time.Hour)

	h := Handlers{
		Auth:       handlers.NewAuthHandler(auth, players, tokens, nil),
		Player:     handlers.NewPlayerHandler(players, nil),
		Game:       handlers.NewGameHandler(services.NewGameService(tx, s.Games(), s.PlayerGames(), hub, nil), nil),
		Team:       handlers.NewTeamHandler(services.NewTeamService(tx, s.Teams(), hub, nil), nil),
		Tournament: handlers.NewTournamentHandler(services.NewTournamentService(tx, s.Tournaments(), s.Participants(), s.Games(), s.Users(), s.Stats(), hub, nil), nil),
		Match:      handlers.NewMatchHandler(services.NewMatchService(tx, s.Matches(), s.Users(), s.Games(), s.Stats(), hub, nil), nil),
		Backup:     handlers.NewBackupHandler(services.NewBackupService(s.Tables(), nil, nil), nil),
		Live:       handlers.NewLiveHandler(hub, []string{"*"}, nil),
	}
	router := chi.NewRouter()
	SetupRoutes(router, h, tokens, []string{"*"}, nil)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &api{t: t, srv: srv}
}

// do sends body as JSON and decodes the response into out when it is non-nil.
func (a *api) do(method, path, token string, body, out interface{}) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	if err != nil {
		a.t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			a.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (a *api) login(username, password string) (string, string) {
	a.t.Helper()
	var out struct {
		Token     string `json:"token"`
		Dashboard string `json:"dashboard"`
	}
	if code := a.do(http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": password}, &out); code != http.StatusOK {
		a.t.Fatalf("login %s: status %d", username, code)
	}
	return out.Token, out.Dashboard
}

func (a *api) registerPlayer(username string) string {
	a.t.Helper()
	if code := a.do(http.MethodPost, "/auth/register", "", map[string]string{"username": username, "password": "pw1"}, nil); code != http.StatusCreated {
		a.t.Fatalf("register %s: status %d", username, code)
	}
	token, dashboard := a.login(username, "pw1")
	if dashboard != "player" {
		a.t.Fatalf("%s dashboard = %q", username, dashboard)
	}
	return token
}

func TestMatchFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	admin, dashboard := a.login("root", "rootpw")
	if dashboard != "admin" {
		t.Fatalf("admin dashboard = %q", dashboard)
	}
	aliceToken := a.registerPlayer("alice")
	a.registerPlayer("bob")

	if code := a.do(http.MethodPost, "/games", admin, map[string]string{"name": "Chess"}, nil); code != http.StatusCreated {
		t.Fatalf("create game: %d", code)
	}

	var created struct {
		Match struct {
			ID int `json:"id"`
		} `json:"match"`
	}
	input := map[string]string{"player1": "alice", "player2": "bob", "game": "Chess", "winner": "alice", "match_type": "friendly"}
	if code := a.do(http.MethodPost, "/matches", admin, input, &created); code != http.StatusCreated {
		t.Fatalf("create match: %d", code)
	}

	var board struct {
		Leaderboard []struct {
			Username     string `json:"username"`
			MatchesWon   int    `json:"matches_won"`
			TotalMatches int    `json:"total_matches"`
		} `json:"leaderboard"`
	}
	if code := a.do(http.MethodGet, "/leaderboard", "", nil, &board); code != http.StatusOK {
		t.Fatalf("leaderboard: %d", code)
	}
	if len(board.Leaderboard) != 2 || board.Leaderboard[0].Username != "alice" || board.Leaderboard[0].MatchesWon != 1 {
		t.Fatalf("leaderboard = %+v", board.Leaderboard)
	}

	var profile struct {
		Profile struct {
			TotalMatches int `json:"total_matches"`
		} `json:"profile"`
	}
	if code := a.do(http.MethodGet, "/me/profile", aliceToken, nil, &profile); code != http.StatusOK || profile.Profile.TotalMatches != 1 {
		t.Fatalf("profile: %d %+v", code, profile)
	}

	if code := a.do(http.MethodDelete, "/matches", admin, map[string][]int{"ids": {created.Match.ID}}, nil); code != http.StatusNoContent {
		t.Fatalf("delete match: %d", code)
	}
	if code := a.do(http.MethodPost, "/matches/restore", admin, nil, nil); code != http.StatusOK {
		t.Fatalf("restore match: %d", code)
	}
	if code := a.do(http.MethodPost, "/matches/restore", admin, nil, nil); code != http.StatusConflict {
		t.Fatalf("restore from empty trash: %d", code)
	}

	bad := map[string]string{"player1": "alice", "player2": "alice", "game": "Chess", "winner": "alice", "match_type": "friendly"}
	if code := a.do(http.MethodPost, "/matches", admin, bad, nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("self match: %d", code)
	}
}

func TestAccessControl(t *testing.T) {
	a := newAPI(t)
	admin, _ := a.login("root", "rootpw")
	alice := a.registerPlayer("alice")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous admin route", http.MethodGet, "/players", "", http.StatusUnauthorized},
		{"player on admin route", http.MethodGet, "/players", alice, http.StatusForbidden},
		{"admin on admin route", http.MethodGet, "/players", admin, http.StatusOK},
		{"admin on player route", http.MethodGet, "/me/games", admin, http.StatusForbidden},
		{"player on player route", http.MethodGet, "/me/games", alice, http.StatusOK},
		{"garbage token", http.MethodGet, "/me/games", "nope", http.StatusUnauthorized},
		{"public games", http.MethodGet, "/games", "", http.StatusOK},
		{"public teams", http.MethodGet, "/teams", "", http.StatusOK},
		{"unknown live topic", http.MethodGet, "/ws/secrets", "", http.StatusNotFound},
		{"backup without store", http.MethodPost, "/backup", admin, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		if code := a.do(tt.method, tt.path, tt.token, nil, nil); code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, code, tt.want)
		}
	}

	if code := a.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "wrong"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", code)
	}
	if code := a.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "alice", "password": "x"}, nil); code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", code)
	}
}

func TestPlayerFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	admin, _ := a.login("root", "rootpw")
	alice := a.registerPlayer("alice")

	for _, g := range []string{"Chess", "Go"} {
		if code := a.do(http.MethodPost, "/games", admin, map[string]string{"name": g}, nil); code != http.StatusCreated {
			t.Fatalf("create game %s: %d", g, code)
		}
	}

	var games struct {
		Games []string `json:"games"`
	}
	if code := a.do(http.MethodPut, "/me/games", alice, map[string][]string{"games": {"Go", "Chess"}}, &games); code != http.StatusOK {
		t.Fatalf("replace games: %d", code)
	}
	if len(games.Games) != 2 || games.Games[0] != "Chess" {
		t.Fatalf("games = %v", games.Games)
	}

	var tournament struct {
		Tournament struct {
			ID int `json:"id"`
		} `json:"tournament"`
	}
	if code := a.do(http.MethodPost, "/tournaments", admin, map[string]string{"name": "Cup", "game": "Go"}, &tournament); code != http.StatusCreated {
		t.Fatalf("create tournament: %d", code)
	}
	if code := a.do(http.MethodPost, "/tournaments", admin, map[string]string{"name": "Cup", "game": "Chess"}, nil); code != http.StatusConflict {
		t.Fatalf("duplicate tournament: %d", code)
	}

	path := "/me/tournaments/" + strconv.Itoa(tournament.Tournament.ID) + "/register"
	if code := a.do(http.MethodPost, path, alice, nil, nil); code != http.StatusCreated {
		t.Fatalf("register: %d", code)
	}
	if code := a.do(http.MethodPost, path, alice, nil, nil); code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", code)
	}

	var mine struct {
		Tournaments []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"tournaments"`
	}
	if code := a.do(http.MethodGet, "/me/tournaments", alice, nil, &mine); code != http.StatusOK {
		t.Fatalf("my tournaments: %d", code)
	}
	if len(mine.Tournaments) != 1 || mine.Tournaments[0].Status != "Registered" {
		t.Fatalf("my tournaments = %+v", mine.Tournaments)
	}

	winnerPath := "/tournaments/" + strconv.Itoa(tournament.Tournament.ID) + "/winner"
	if code := a.do(http.MethodPut, winnerPath, admin, map[string]string{"winner": "alice"}, nil); code != http.StatusOK {
		t.Fatalf("declare winner: %d", code)
	}

	if code := a.do(http.MethodPost, "/teams", alice, map[string]string{"name": "Red"}, nil); code != http.StatusCreated {
		t.Fatalf("create team: %d", code)
	}
	if code := a.do(http.MethodPost, "/teams/join", alice, map[string]string{"name": "Red"}, nil); code != http.StatusConflict {
		t.Fatalf("rejoin team: %d", code)
	}
}
