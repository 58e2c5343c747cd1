package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type matchRepository struct {
	s *Store
}

// checkMatch mirrors the foreign keys and CHECK constraints of the matches table.
func (st *state) checkMatch(m models.Match) error {
	if _, ok := st.games[m.GameID]; !ok {
		return repositories.ErrMatchInvalidRef
	}
	for _, id := range []int{m.Player1ID, m.Player2ID, m.WinnerID} {
		if _, ok := st.users[id]; !ok {
			return repositories.ErrMatchInvalidRef
		}
	}
	if m.Player1ID == m.Player2ID {
		return repositories.ErrMatchConstraint
	}
	if m.WinnerID != m.Player1ID && m.WinnerID != m.Player2ID {
		return repositories.ErrMatchConstraint
	}
	if m.MatchType != models.MatchFriendly && m.MatchType != models.MatchTournament {
		return repositories.ErrMatchConstraint
	}
	return nil
}

func (r *matchRepository) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	if err := st.checkMatch(*m); err != nil {
		return err
	}
	st.nextMatchID++
	m.ID = st.nextMatchID
	m.CreatedAt = r.s.now()
	st.matches[m.ID] = *m
	return nil
}

func (r *matchRepository) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.st.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r *matchRepository) Update(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	current, ok := st.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	current.GameID = m.GameID
	current.Player1ID = m.Player1ID
	current.Player2ID = m.Player2ID
	current.WinnerID = m.WinnerID
	current.MatchType = m.MatchType
	if err := st.checkMatch(current); err != nil {
		return err
	}
	st.matches[m.ID] = current
	return nil
}

func (r *matchRepository) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	m, ok := st.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	backupID, at := r.s.stamp()
	st.matchesTrash = append(st.matchesTrash, trashed[models.Match]{backupID: backupID, deletedAt: at, row: m})
	delete(st.matches, id)
	return nil
}

func (r *matchRepository) RestoreLatest(_ context.Context, _ repositories.SQLExecutor) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	if len(st.matchesTrash) == 0 {
		return nil, repositories.ErrNothingToRestore
	}
	last := st.matchesTrash[len(st.matchesTrash)-1].row
	if _, exists := st.matches[last.ID]; exists {
		return nil, repositories.ErrMatchConstraint
	}
	if err := st.checkMatch(last); err != nil {
		return nil, err
	}
	st.matchesTrash = st.matchesTrash[:len(st.matchesTrash)-1]
	st.matches[last.ID] = last
	return &last, nil
}

func (r *matchRepository) PeekLatest(_ context.Context, _ repositories.SQLExecutor) (*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	trash := r.s.st.matchesTrash
	if len(trash) == 0 {
		return nil, repositories.ErrNothingToRestore
	}
	last := trash[len(trash)-1].row
	return &last, nil
}

func (r *matchRepository) List(_ context.Context, _ repositories.SQLExecutor) ([]models.MatchView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := r.s.st
	ordered := make([]models.Match, 0, len(st.matches))
	for _, m := range st.matches {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID > ordered[j].ID
	})

	views := make([]models.MatchView, 0, len(ordered))
	for _, m := range ordered {
		views = append(views, models.MatchView{
			ID:        m.ID,
			Game:      st.games[m.GameID].Name,
			Player1:   st.users[m.Player1ID].Username,
			Player2:   st.users[m.Player2ID].Username,
			Winner:    st.users[m.WinnerID].Username,
			MatchType: m.MatchType,
		})
	}
	return views, nil
}
