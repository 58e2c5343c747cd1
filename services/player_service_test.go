package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

// snapshot renders every exported table as a sorted list of rows.
func snapshot(t *testing.T, e *testEnv) map[string][]string {
	t.Helper()
	out := make(map[string][]string, len(repositories.ExportTables))
	for _, table := range repositories.ExportTables {
		docs, err := e.store.Tables().ScanTable(context.Background(), nil, table)
		if err != nil {
			t.Fatalf("scan %s: %v", table, err)
		}
		rows := make([]string, 0, len(docs))
		for _, d := range docs {
			rows = append(rows, fmt.Sprint(d))
		}
		sort.Strings(rows)
		out[table] = rows
	}
	return out
}

func TestRegisterDuplicateUsernameLeavesUsersUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	e.register(t, "alice")

	before, err := e.store.Users().ListPlayers(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, name := range []string{"alice", "  alice  ", "root"} {
		if _, err := e.players.Register(ctx, RegisterInput{Username: name, Password: "x"}); !errors.Is(err, ErrUsernameTaken) {
			t.Fatalf("register %q: got %v, want ErrUsernameTaken", name, err)
		}
	}
	after, err := e.store.Users().ListPlayers(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("player count changed: %d -> %d", len(before), len(after))
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	for _, in := range []RegisterInput{{Username: "", Password: "pw"}, {Username: "   ", Password: "pw"}, {Username: "eve", Password: ""}} {
		if _, err := e.players.Register(context.Background(), in); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("register %+v: got %v", in, err)
		}
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	u, err := e.store.Users().GetByID(ctx, nil, alice.UserID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Password == "alice-pw" || u.Role != models.RolePlayer {
		t.Fatalf("stored user = %+v", u)
	}
	if _, err := e.auth.Login(ctx, LoginInput{Username: "alice", Password: "alice-pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestDeletePlayerAndRestoreReinstatesRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	if _, err := e.games.ReplacePlayerGames(ctx, alice, []string{"Chess", "Go"}); err != nil {
		t.Fatalf("games: %v", err)
	}
	if _, err := e.games.ReplacePlayerGames(ctx, bob, []string{"Chess"}); err != nil {
		t.Fatalf("games: %v", err)
	}
	team, err := e.teams.Create(ctx, alice, "Red")
	if err != nil {
		t.Fatalf("team: %v", err)
	}
	if _, err := e.teams.Join(ctx, bob, "Red"); err != nil {
		t.Fatalf("join: %v", err)
	}
	cup, err := e.tournaments.Create(ctx, e.admin, TournamentInput{Name: "Cup", Game: "Chess"})
	if err != nil {
		t.Fatalf("tournament: %v", err)
	}
	for _, p := range []models.Session{alice, bob} {
		if err := e.tournaments.Register(ctx, p, cup.ID); err != nil {
			t.Fatalf("register %s: %v", p.Username, err)
		}
	}
	if err := e.store.Stats().Adjust(ctx, nil, alice.UserID, models.StatsDelta{MatchesWon: 3, TotalMatches: 5}); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	before := snapshot(t, e)

	if err := e.players.Delete(ctx, e.admin, []int{alice.UserID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.store.Users().GetByID(ctx, nil, alice.UserID); !errors.Is(err, repositories.ErrUserNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	if _, err := e.store.Stats().Get(ctx, nil, alice.UserID); !errors.Is(err, repositories.ErrStatsNotFound) {
		t.Fatalf("stats still present: %v", err)
	}
	if games, _ := e.store.PlayerGames().ListByPlayer(ctx, nil, alice.UserID); len(games) != 0 {
		t.Fatalf("games still present: %v", games)
	}
	if ok, _ := e.store.Participants().Exists(ctx, nil, cup.ID, alice.UserID); ok {
		t.Fatal("participation still present")
	}
	teams, _ := e.teams.List(ctx)
	if len(teams) != 1 || teams[0].ID != team.ID || teams[0].MemberCount != 1 {
		t.Fatalf("teams after delete = %+v", teams)
	}

	restored, err := e.players.Restore(ctx, e.admin)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.ID != alice.UserID || restored.Username != "alice" {
		t.Fatalf("restored = %+v", restored)
	}
	if after := snapshot(t, e); !reflect.DeepEqual(before, after) {
		t.Fatalf("rows differ after restore\nbefore: %v\nafter:  %v", before, after)
	}
}

func TestDeletePlayerWithMatchesIsBlocked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "alice")
	e.register(t, "bob")
	if _, err := e.games.ReplacePlayerGames(ctx, alice, []string{"Go"}); err != nil {
		t.Fatalf("games: %v", err)
	}
	if _, err := e.matches.Create(ctx, e.admin, friendly("alice", "bob", "bob")); err != nil {
		t.Fatalf("match: %v", err)
	}

	before := snapshot(t, e)
	if err := e.players.Delete(ctx, e.admin, []int{alice.UserID}); !errors.Is(err, ErrPlayerInUse) {
		t.Fatalf("got %v, want ErrPlayerInUse", err)
	}
	if after := snapshot(t, e); !reflect.DeepEqual(before, after) {
		t.Fatal("failed delete changed rows")
	}
	if _, err := e.players.Restore(ctx, e.admin); !errors.Is(err, ErrNothingToRestore) {
		t.Fatalf("trash should be empty: %v", err)
	}
}

func TestDeletePlayerRejectsAdminsAndPlayers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	if err := e.players.Delete(ctx, alice, []int{alice.UserID}); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("player caller: got %v", err)
	}
	if err := e.players.Delete(ctx, e.admin, []int{e.admin.UserID}); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("admin target: got %v", err)
	}
	if err := e.players.Delete(ctx, e.admin, []int{9999}); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("missing target: got %v", err)
	}
}

func TestLeaderboardAndProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	e.register(t, "carol")

	if _, err := e.matches.Create(ctx, e.admin, friendly("bob", "alice", "bob")); err != nil {
		t.Fatalf("match: %v", err)
	}

	board, err := e.players.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	var names []string
	for _, entry := range board {
		names = append(names, entry.Username)
	}
	if want := []string{"bob", "alice", "carol"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("leaderboard order = %v, want %v", names, want)
	}

	profile, err := e.players.Profile(ctx, bob)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Username != "bob" || profile.MatchesWon != 1 || profile.TotalMatches != 1 {
		t.Fatalf("profile = %+v", profile)
	}
	if _, err := e.players.Profile(ctx, e.admin); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("admin profile: got %v", err)
	}

	overview, err := e.players.List(ctx, e.admin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(overview) != 3 {
		t.Fatalf("overview = %+v", overview)
	}
	if _, err := e.players.List(ctx, alice); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("player list: got %v", err)
	}
}

func TestTrashedUsernameStaysReserved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	erin := e.register(t, "erin")
	dave := e.register(t, "dave")

	for _, p := range []models.Session{erin, dave} {
		if err := e.players.Delete(ctx, e.admin, []int{p.UserID}); err != nil {
			t.Fatalf("delete %s: %v", p.Username, err)
		}
	}

	if _, err := e.players.Register(ctx, RegisterInput{Username: "dave", Password: "other"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("register trashed name: got %v, want %v", err, ErrUsernameTaken)
	}
	if err := e.auth.EnsureAdmin(ctx, "erin", "adminpw"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("bootstrap trashed name: got %v, want %v", err, ErrUsernameTaken)
	}

	for _, want := range []models.Session{dave, erin} {
		got, err := e.players.Restore(ctx, e.admin)
		if err != nil {
			t.Fatalf("restore %s: %v", want.Username, err)
		}
		if got.ID != want.UserID || got.Username != want.Username {
			t.Fatalf("restored %d %q, want %d %q", got.ID, got.Username, want.UserID, want.Username)
		}
	}
	if _, err := e.players.Restore(ctx, e.admin); !errors.Is(err, ErrNothingToRestore) {
		t.Fatalf("empty trash: got %v", err)
	}
}
