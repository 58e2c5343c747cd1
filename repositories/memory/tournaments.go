package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type tournamentRepository struct {
	s *Store
}

func (st *state) checkTournament(t models.Tournament) error {
	for _, other := range st.tournaments {
		if other.Name == t.Name && other.ID != t.ID {
			return repositories.ErrTournamentNameConflict
		}
	}
	if _, ok := st.games[t.GameID]; !ok {
		return repositories.ErrTournamentInvalidRef
	}
	if _, ok := st.users[t.CreatedBy]; !ok {
		return repositories.ErrTournamentInvalidRef
	}
	if t.WinnerID != nil {
		if _, ok := st.users[*t.WinnerID]; !ok {
			return repositories.ErrTournamentInvalidRef
		}
	}
	return nil
}

func (r *tournamentRepository) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	candidate := models.Tournament{Name: t.Name, GameID: t.GameID, CreatedBy: t.CreatedBy}
	if err := st.checkTournament(candidate); err != nil {
		return err
	}
	st.nextTournamentID++
	candidate.ID = st.nextTournamentID
	candidate.CreatedAt = r.s.now()
	st.tournaments[candidate.ID] = candidate

	t.ID = candidate.ID
	t.CreatedAt = candidate.CreatedAt
	t.WinnerID = nil
	return nil
}

func (r *tournamentRepository) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.st.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	t = cloneTournament(t)
	return &t, nil
}

func (r *tournamentRepository) Update(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	current, ok := st.tournaments[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	current.Name = t.Name
	current.GameID = t.GameID
	if err := st.checkTournament(current); err != nil {
		return err
	}
	st.tournaments[t.ID] = current
	return nil
}

func (r *tournamentRepository) SetWinner(_ context.Context, _ repositories.SQLExecutor, id int, winnerID *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	current, ok := st.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	current.WinnerID = winnerID
	current = cloneTournament(current)
	if err := st.checkTournament(current); err != nil {
		return err
	}
	st.tournaments[id] = current
	return nil
}

func (r *tournamentRepository) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	t, ok := st.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	for _, p := range st.participants {
		if p.TournamentID == id {
			return fmt.Errorf("failed to delete tournament %d: participants still reference it", id)
		}
	}
	backupID, at := r.s.stamp()
	st.tournamentsTrash = append(st.tournamentsTrash, trashed[models.Tournament]{backupID: backupID, deletedAt: at, row: t})
	delete(st.tournaments, id)
	return nil
}

func (r *tournamentRepository) RestoreLatest(_ context.Context, _ repositories.SQLExecutor) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	if len(st.tournamentsTrash) == 0 {
		return nil, repositories.ErrNothingToRestore
	}
	last := cloneTournament(st.tournamentsTrash[len(st.tournamentsTrash)-1].row)
	if _, exists := st.tournaments[last.ID]; exists {
		return nil, repositories.ErrTournamentNameConflict
	}
	if err := st.checkTournament(last); err != nil {
		return nil, err
	}
	st.tournamentsTrash = st.tournamentsTrash[:len(st.tournamentsTrash)-1]
	st.tournaments[last.ID] = last
	out := cloneTournament(last)
	return &out, nil
}

func (r *tournamentRepository) PeekLatest(_ context.Context, _ repositories.SQLExecutor) (*models.Tournament, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	trash := r.s.st.tournamentsTrash
	if len(trash) == 0 {
		return nil, repositories.ErrNothingToRestore
	}
	last := cloneTournament(trash[len(trash)-1].row)
	return &last, nil
}

func (r *tournamentRepository) List(_ context.Context, _ repositories.SQLExecutor) ([]models.TournamentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := r.s.st
	ordered := make([]models.Tournament, 0, len(st.tournaments))
	for _, t := range st.tournaments {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID > ordered[j].ID
	})

	views := make([]models.TournamentView, 0, len(ordered))
	for _, t := range ordered {
		v := models.TournamentView{
			ID:        t.ID,
			Name:      t.Name,
			Game:      st.games[t.GameID].Name,
			CreatedBy: st.users[t.CreatedBy].Username,
		}
		if t.WinnerID != nil {
			if w, ok := st.users[*t.WinnerID]; ok {
				name := w.Username
				v.Winner = &name
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (r *tournamentRepository) ListForPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) ([]models.PlayerTournament, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := r.s.st
	items := make([]models.PlayerTournament, 0)
	for _, t := range st.tournaments {
		if !st.hasPlayerGame(playerID, t.GameID) {
			continue
		}
		status := models.StatusAvailable
		if st.isParticipant(t.ID, playerID) {
			status = models.StatusRegistered
		}
		items = append(items, models.PlayerTournament{
			TournamentID: t.ID,
			Name:         t.Name,
			Game:         st.games[t.GameID].Name,
			Status:       status,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

type participantRepository struct {
	s *Store
}

func (st *state) isParticipant(tournamentID, playerID int) bool {
	for _, p := range st.participants {
		if p.TournamentID == tournamentID && p.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (r *participantRepository) Register(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	if st.isParticipant(tournamentID, playerID) {
		return repositories.ErrAlreadyRegistered
	}
	if _, ok := st.tournaments[tournamentID]; !ok {
		return repositories.ErrParticipantInvalidRef
	}
	if _, ok := st.users[playerID]; !ok {
		return repositories.ErrParticipantInvalidRef
	}
	st.participants = append(st.participants, models.TournamentParticipant{
		TournamentID: tournamentID,
		PlayerID:     playerID,
		RegisteredAt: r.s.now(),
	})
	return nil
}

func (r *participantRepository) Exists(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID int) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.st.isParticipant(tournamentID, playerID), nil
}

func (r *participantRepository) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	r.moveToTrash(func(p models.TournamentParticipant) bool { return p.TournamentID == tournamentID })
	return nil
}

func (r *participantRepository) DeleteByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) error {
	r.moveToTrash(func(p models.TournamentParticipant) bool { return p.PlayerID == playerID })
	return nil
}

func (r *participantRepository) moveToTrash(match func(models.TournamentParticipant) bool) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	kept := st.participants[:0]
	for _, p := range st.participants {
		if !match(p) {
			kept = append(kept, p)
			continue
		}
		backupID, at := r.s.stamp()
		st.participantsTrash = append(st.participantsTrash, trashed[models.TournamentParticipant]{backupID: backupID, deletedAt: at, row: p})
	}
	st.participants = kept
}

func (r *participantRepository) RestoreForTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	return r.restore(func(p models.TournamentParticipant) bool { return p.TournamentID == tournamentID })
}

func (r *participantRepository) RestoreForPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) error {
	return r.restore(func(p models.TournamentParticipant) bool { return p.PlayerID == playerID })
}

// restore reinserts trashed rows selected by match when both parents exist.
func (r *participantRepository) restore(match func(models.TournamentParticipant) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	kept := make([]trashed[models.TournamentParticipant], 0, len(st.participantsTrash))
	for _, e := range st.participantsTrash {
		_, userOK := st.users[e.row.PlayerID]
		_, tournamentOK := st.tournaments[e.row.TournamentID]
		if !match(e.row) || !userOK || !tournamentOK {
			kept = append(kept, e)
			continue
		}
		if !st.isParticipant(e.row.TournamentID, e.row.PlayerID) {
			st.participants = append(st.participants, e.row)
		}
	}
	st.participantsTrash = kept
	return nil
}
