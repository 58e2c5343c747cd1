package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type fakeDocumentStore struct {
	mu      sync.Mutex
	docs    map[string][]models.Document
	failFor string
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[string][]models.Document)}
}

func (f *fakeDocumentStore) PutDocument(_ context.Context, collection string, doc models.Document) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if collection == f.failFor {
		return "", errors.New("bucket unavailable")
	}
	f.docs[collection] = append(f.docs[collection], doc)
	return fmt.Sprintf("%s-%d", collection, len(f.docs[collection])), nil
}

func seedForBackup(t *testing.T, e *testEnv) {
	t.Helper()
	ctx := context.Background()
	alice := e.register(t, "alice")
	e.register(t, "bob")
	if _, err := e.games.ReplacePlayerGames(ctx, alice, []string{"Chess", "Go"}); err != nil {
		t.Fatalf("games: %v", err)
	}
	if _, err := e.teams.Create(ctx, alice, "Red"); err != nil {
		t.Fatalf("team: %v", err)
	}
	cup, err := e.tournaments.Create(ctx, e.admin, TournamentInput{Name: "Cup", Game: "Chess"})
	if err != nil {
		t.Fatalf("tournament: %v", err)
	}
	if err := e.tournaments.Register(ctx, alice, cup.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := e.matches.Create(ctx, e.admin, friendly("alice", "bob", "alice")); err != nil {
		t.Fatalf("match: %v", err)
	}
}

func TestBackupExportCountsEveryTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	seedForBackup(t, e)

	store := newFakeDocumentStore()
	report, err := NewBackupService(e.store.Tables(), store, nil).Export(ctx, e.admin)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	want := map[string]int{
		"users":                   3,
		"player_stats":            2,
		"games":                   3,
		"player_games":            2,
		"teams":                   1,
		"team_members":            1,
		"tournaments":             1,
		"tournament_participants": 1,
		"matches":                 1,
	}
	if len(report.Tables) != len(repositories.ExportTables) {
		t.Fatalf("report tables = %+v", report.Tables)
	}
	total := 0
	for i, tr := range report.Tables {
		if tr.Table != repositories.ExportTables[i] {
			t.Fatalf("table %d = %s, want %s", i, tr.Table, repositories.ExportTables[i])
		}
		if tr.Documents != want[tr.Table] {
			t.Errorf("%s: %d documents, want %d", tr.Table, tr.Documents, want[tr.Table])
		}
		if got := len(store.docs[tr.Table]); got != tr.Documents {
			t.Errorf("%s: store holds %d, report says %d", tr.Table, got, tr.Documents)
		}
		total += tr.Documents
	}
	if report.Total != total || report.FinishedAt.Before(report.StartedAt) {
		t.Fatalf("report = %+v", report)
	}

	users := store.docs["users"]
	for _, doc := range users {
		for _, col := range []string{"id", "username", "password", "role", "created_at"} {
			if _, ok := doc[col]; !ok {
				t.Fatalf("users document missing %q: %v", col, doc)
			}
		}
	}
}

func TestBackupExportWritesNewDocumentsEachRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	seedForBackup(t, e)

	store := newFakeDocumentStore()
	svc := NewBackupService(e.store.Tables(), store, nil)
	for i := 0; i < 2; i++ {
		if _, err := svc.Export(ctx, e.admin); err != nil {
			t.Fatalf("export %d: %v", i, err)
		}
	}
	if got := len(store.docs["users"]); got != 6 {
		t.Fatalf("users documents after two runs = %d, want 6", got)
	}
}

func TestBackupExportErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	if _, err := NewBackupService(e.store.Tables(), nil, nil).Export(ctx, e.admin); !errors.Is(err, ErrBackupUnavailable) {
		t.Fatalf("no store: got %v", err)
	}
	if _, err := NewBackupService(e.store.Tables(), newFakeDocumentStore(), nil).Export(ctx, alice); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("player: got %v", err)
	}

	failing := newFakeDocumentStore()
	failing.failFor = "users"
	if _, err := NewBackupService(e.store.Tables(), failing, nil).Export(ctx, e.admin); err == nil {
		t.Fatal("expected store failure to surface")
	}
}
