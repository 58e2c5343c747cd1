// Package memory is an in-process implementation of every repository in
// package repositories. It follows the same constraint semantics as the
// PostgreSQL schema (unique names, foreign keys, check constraints) and the
// same trash behaviour, so services can be exercised without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type trashed[T any] struct {
	backupID  int64
	deletedAt time.Time
	row       T
}

type state struct {
	nextUserID       int
	nextGameID       int
	nextTeamID       int
	nextTournamentID int
	nextMatchID      int
	nextBackupID     int64

	users        map[int]models.User
	stats        map[int]models.PlayerStats
	games        map[int]models.Game
	playerGames  []models.PlayerGame
	teams        map[int]models.Team
	teamMembers  []models.TeamMember
	tournaments  map[int]models.Tournament
	participants []models.TournamentParticipant
	matches      map[int]models.Match

	usersTrash        []trashed[models.User]
	statsTrash        []trashed[models.PlayerStats]
	playerGamesTrash  []trashed[models.PlayerGame]
	teamMembersTrash  []trashed[models.TeamMember]
	tournamentsTrash  []trashed[models.Tournament]
	participantsTrash []trashed[models.TournamentParticipant]
	matchesTrash      []trashed[models.Match]
}

func newState() *state {
	return &state{
		users:       make(map[int]models.User),
		stats:       make(map[int]models.PlayerStats),
		games:       make(map[int]models.Game),
		teams:       make(map[int]models.Team),
		tournaments: make(map[int]models.Tournament),
		matches:     make(map[int]models.Match),
	}
}

func (st *state) clone() *state {
	c := *st
	c.users = cloneMap(st.users)
	c.stats = cloneMap(st.stats)
	c.games = cloneMap(st.games)
	c.teams = cloneMap(st.teams)
	c.tournaments = make(map[int]models.Tournament, len(st.tournaments))
	for id, t := range st.tournaments {
		c.tournaments[id] = cloneTournament(t)
	}
	c.matches = cloneMap(st.matches)
	c.playerGames = append([]models.PlayerGame(nil), st.playerGames...)
	c.teamMembers = append([]models.TeamMember(nil), st.teamMembers...)
	c.participants = append([]models.TournamentParticipant(nil), st.participants...)

	c.usersTrash = append([]trashed[models.User](nil), st.usersTrash...)
	c.statsTrash = append([]trashed[models.PlayerStats](nil), st.statsTrash...)
	c.playerGamesTrash = append([]trashed[models.PlayerGame](nil), st.playerGamesTrash...)
	c.teamMembersTrash = append([]trashed[models.TeamMember](nil), st.teamMembersTrash...)
	c.tournamentsTrash = make([]trashed[models.Tournament], len(st.tournamentsTrash))
	for i, e := range st.tournamentsTrash {
		e.row = cloneTournament(e.row)
		c.tournamentsTrash[i] = e
	}
	c.participantsTrash = append([]trashed[models.TournamentParticipant](nil), st.participantsTrash...)
	c.matchesTrash = append([]trashed[models.Match](nil), st.matchesTrash...)
	return &c
}

func cloneMap[V any](m map[int]V) map[int]V {
	out := make(map[int]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneTournament(t models.Tournament) models.Tournament {
	if t.WinnerID != nil {
		id := *t.WinnerID
		t.WinnerID = &id
	}
	return t
}

func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Store owns the whole in-memory database. Repository views returned by its
// accessors share the same state.
type Store struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	st    *state
	clock func() time.Time
}

func New() *Store {
	return &Store{
		st:    newState(),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) now() time.Time {
	return s.clock()
}

// stamp allocates the trash bookkeeping of one moved row.
func (s *Store) stamp() (int64, time.Time) {
	s.st.nextBackupID++
	return s.st.nextBackupID, s.now()
}

func (s *Store) Users() repositories.UserRepository             { return &userRepository{s} }
func (s *Store) Stats() repositories.StatsRepository            { return &statsRepository{s} }
func (s *Store) Games() repositories.GameRepository             { return &gameRepository{s} }
func (s *Store) PlayerGames() repositories.PlayerGameRepository { return &playerGameRepository{s} }
func (s *Store) Teams() repositories.TeamRepository             { return &teamRepository{s} }
func (s *Store) Tournaments() repositories.TournamentRepository { return &tournamentRepository{s} }
func (s *Store) Participants() repositories.ParticipantRepository {
	return &participantRepository{s}
}
func (s *Store) Matches() repositories.MatchRepository { return &matchRepository{s} }
func (s *Store) Tables() repositories.TableScanner     { return &tableScanner{s} }
func (s *Store) Transactor() repositories.Transactor   { return &transactor{s} }

type transactor struct {
	s *Store
}

// WithinTx serializes transactions and restores the snapshot taken at the
// start when fn fails or panics.
func (t *transactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) (txErr error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.RLock()
	snapshot := t.s.st.clone()
	t.s.mu.RUnlock()

	rollback := func() {
		t.s.mu.Lock()
		t.s.st = snapshot
		t.s.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
		if txErr != nil {
			rollback()
		}
	}()

	txErr = fn(nil)
	return txErr
}
