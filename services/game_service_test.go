package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestReplacePlayerGamesLeavesNoResidue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	got, err := e.games.ReplacePlayerGames(ctx, alice, []string{"Chess", "Go"})
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if want := []string{"Chess", "Go"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("first set = %v, want %v", got, want)
	}

	got, err = e.games.ReplacePlayerGames(ctx, alice, []string{"Go", "Dota", "Go", " "})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	want := []string{"Dota", "Go"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("second set = %v, want %v", got, want)
	}
	stored, err := e.games.ListPlayerGames(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(stored, want) {
		t.Fatalf("stored set = %v, want %v", stored, want)
	}
}

func TestReplacePlayerGamesSkipsTrash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	if _, err := e.games.ReplacePlayerGames(ctx, alice, []string{"Chess"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := e.games.ReplacePlayerGames(ctx, alice, []string{"Go"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := e.players.Delete(ctx, e.admin, []int{alice.UserID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.players.Restore(ctx, e.admin); err != nil {
		t.Fatalf("restore: %v", err)
	}
	// Only the set present at delete time comes back.
	got, err := e.games.ListPlayerGames(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := []string{"Go"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("restored set = %v, want %v", got, want)
	}
}

func TestReplacePlayerGamesUnknownGameRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	if _, err := e.games.ReplacePlayerGames(ctx, alice, []string{"Chess"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := e.games.ReplacePlayerGames(ctx, alice, []string{"Go", "Quake"}); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("got %v, want ErrGameNotFound", err)
	}
	got, _ := e.games.ListPlayerGames(ctx, alice)
	if want := []string{"Chess"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("set after failed replace = %v, want %v", got, want)
	}
}

func TestReplacePlayerGamesRequiresPlayer(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	if _, err := e.games.ReplacePlayerGames(context.Background(), e.admin, []string{"Chess"}); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("got %v", err)
	}
}

func TestCreateGame(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	g, err := e.games.CreateGame(ctx, e.admin, "  Tetris ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Name != "Tetris" || g.ID == 0 {
		t.Fatalf("game = %+v", g)
	}
	if _, err := e.games.CreateGame(ctx, e.admin, "Tetris"); !errors.Is(err, ErrGameNameConflict) {
		t.Fatalf("duplicate: got %v", err)
	}
	if _, err := e.games.CreateGame(ctx, alice, "Pong"); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("player: got %v", err)
	}

	games, err := e.games.ListGames(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, g := range games {
		names = append(names, g.Name)
	}
	if want := []string{"Chess", "Dota", "Go", "Tetris"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("games = %v, want %v", names, want)
	}
}
