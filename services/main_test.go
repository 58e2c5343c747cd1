package services

import (
	"context"
	"os"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories/memory"
	"github.com/Dosada05/gaming-portal/utils"
)

func TestMain(m *testing.M) {
	utils.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []models.TableChange
}

func (n *recordingNotifier) NotifyChange(c models.TableChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
}

func (n *recordingNotifier) topics() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.changes))
	for _, c := range n.changes {
		out = append(out, c.Topic)
	}
	return out
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = nil
}

// testEnv wires every service over one in-memory store.
type testEnv struct {
	store       *memory.Store
	notes       *recordingNotifier
	auth        AuthService
	players     PlayerService
	games       GameService
	teams       TeamService
	tournaments TournamentService
	matches     MatchService
	admin       models.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	n := &recordingNotifier{}
	tx := s.Transactor()

	e := &testEnv{
		store:       s,
		notes:       n,
		auth:        NewAuthService(s.Users(), nil),
		players:     NewPlayerService(tx, s.Users(), s.Stats(), s.PlayerGames(), s.Teams(), s.Participants(), n, nil),
		games:       NewGameService(tx, s.Games(), s.PlayerGames(), n, nil),
		teams:       NewTeamService(tx, s.Teams(), n, nil),
		tournaments: NewTournamentService(tx, s.Tournaments(), s.Participants(), s.Games(), s.Users(), s.Stats(), n, nil),
		matches:     NewMatchService(tx, s.Matches(), s.Users(), s.Games(), s.Stats(), n, nil),
	}

	if err := e.auth.EnsureAdmin(ctx, "root", "rootpw"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	admin, err := e.auth.Login(ctx, LoginInput{Username: "root", Password: "rootpw"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	e.admin = *admin

	for _, g := range []string{"Chess", "Go", "Dota"} {
		if _, err := e.games.CreateGame(ctx, e.admin, g); err != nil {
			t.Fatalf("create game %s: %v", g, err)
		}
	}
	n.reset()
	return e
}

func (e *testEnv) register(t *testing.T, username string) models.Session {
	t.Helper()
	u, err := e.players.Register(context.Background(), RegisterInput{Username: username, Password: username + "-pw"})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return models.Session{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (e *testEnv) stats(t *testing.T, playerID int) models.PlayerStats {
	t.Helper()
	st, err := e.store.Stats().Get(context.Background(), nil, playerID)
	if err != nil {
		t.Fatalf("stats of %d: %v", playerID, err)
	}
	return *st
}

func assertStats(t *testing.T, e *testEnv, who models.Session, won, total int) {
	t.Helper()
	got := e.stats(t, who.UserID)
	if got.MatchesWon != won || got.TotalMatches != total {
		t.Fatalf("%s stats = won %d total %d, want won %d total %d", who.Username, got.MatchesWon, got.TotalMatches, won, total)
	}
}
