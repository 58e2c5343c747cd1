package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type gameRepository struct {
	s *Store
}

func (r *gameRepository) Create(_ context.Context, _ repositories.SQLExecutor, game *models.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	for _, g := range st.games {
		if g.Name == game.Name {
			return repositories.ErrGameNameConflict
		}
	}
	st.nextGameID++
	game.ID = st.nextGameID
	st.games[game.ID] = *game
	return nil
}

func (r *gameRepository) FindIDByName(_ context.Context, _ repositories.SQLExecutor, name string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, g := range r.s.st.games {
		if g.Name == name {
			return g.ID, nil
		}
	}
	return 0, repositories.ErrGameNotFound
}

func (r *gameRepository) List(_ context.Context, _ repositories.SQLExecutor) ([]models.Game, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	games := make([]models.Game, 0, len(r.s.st.games))
	for _, g := range r.s.st.games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Name < games[j].Name })
	return games, nil
}

type playerGameRepository struct {
	s *Store
}

func (r *playerGameRepository) ListByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.st.gameNamesOf(playerID), nil
}

func (r *playerGameRepository) Add(_ context.Context, _ repositories.SQLExecutor, playerID, gameID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	if _, ok := st.users[playerID]; !ok {
		return repositories.ErrPlayerGameInvalid
	}
	if _, ok := st.games[gameID]; !ok {
		return repositories.ErrPlayerGameInvalid
	}
	for _, pg := range st.playerGames {
		if pg.PlayerID == playerID && pg.GameID == gameID {
			return repositories.ErrPlayerGameInvalid
		}
	}
	st.playerGames = append(st.playerGames, models.PlayerGame{PlayerID: playerID, GameID: gameID})
	return nil
}

func (r *playerGameRepository) DeleteByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int, policy repositories.TrashPolicy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	kept := st.playerGames[:0]
	for _, pg := range st.playerGames {
		if pg.PlayerID != playerID {
			kept = append(kept, pg)
			continue
		}
		if policy == repositories.MoveToTrash {
			backupID, at := r.s.stamp()
			st.playerGamesTrash = append(st.playerGamesTrash, trashed[models.PlayerGame]{backupID: backupID, deletedAt: at, row: pg})
		}
	}
	st.playerGames = kept
	return nil
}

func (r *playerGameRepository) RestoreForPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	if _, ok := st.users[playerID]; !ok && st.hasTrashedGamesOf(playerID) {
		return repositories.ErrPlayerGameInvalid
	}
	kept := make([]trashed[models.PlayerGame], 0, len(st.playerGamesTrash))
	for _, e := range st.playerGamesTrash {
		if e.row.PlayerID != playerID {
			kept = append(kept, e)
			continue
		}
		if _, ok := st.games[e.row.GameID]; !ok {
			kept = append(kept, e)
			continue
		}
		if !st.hasPlayerGame(e.row.PlayerID, e.row.GameID) {
			st.playerGames = append(st.playerGames, e.row)
		}
	}
	st.playerGamesTrash = kept
	return nil
}

func (st *state) hasPlayerGame(playerID, gameID int) bool {
	for _, pg := range st.playerGames {
		if pg.PlayerID == playerID && pg.GameID == gameID {
			return true
		}
	}
	return false
}

func (st *state) hasTrashedGamesOf(playerID int) bool {
	for _, e := range st.playerGamesTrash {
		if e.row.PlayerID == playerID {
			return true
		}
	}
	return false
}
