package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	for _, u := range st.users {
		if u.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	for _, t := range st.usersTrash {
		if t.row.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	st.nextUserID++
	user.ID = st.nextUserID
	user.CreatedAt = r.s.now()
	st.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.st.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(_ context.Context, _ repositories.SQLExecutor, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.st.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepository) FindPlayerID(_ context.Context, _ repositories.SQLExecutor, username string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.st.users {
		if u.Username == username && u.Role == models.RolePlayer {
			return u.ID, nil
		}
	}
	return 0, repositories.ErrUserNotFound
}

func (r *userRepository) ListPlayers(_ context.Context, _ repositories.SQLExecutor) ([]models.PlayerOverview, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := r.s.st
	players := make([]models.PlayerOverview, 0)
	for _, id := range sortedIDs(st.users) {
		u := st.users[id]
		if u.Role != models.RolePlayer {
			continue
		}
		p := models.PlayerOverview{
			ID:       u.ID,
			Username: u.Username,
			Games:    st.gameNamesOf(u.ID),
			Teams:    st.teamNamesOf(u.ID),
		}
		if s, ok := st.stats[u.ID]; ok {
			p.TournamentsWon = s.TournamentsWon
			p.MatchesWon = s.MatchesWon
			p.TotalMatches = s.TotalMatches
		}
		players = append(players, p)
	}
	return players, nil
}

func (st *state) gameNamesOf(playerID int) []string {
	names := make([]string, 0)
	for _, pg := range st.playerGames {
		if pg.PlayerID != playerID {
			continue
		}
		if g, ok := st.games[pg.GameID]; ok {
			names = append(names, g.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (st *state) teamNamesOf(playerID int) []string {
	names := make([]string, 0)
	for _, m := range st.teamMembers {
		if m.PlayerID != playerID {
			continue
		}
		if t, ok := st.teams[m.TeamID]; ok {
			names = append(names, t.Name)
		}
	}
	sort.Strings(names)
	return names
}

// userReferenced reports whether any row still points at the user, which
// the schema's foreign keys would refuse to orphan.
func (st *state) userReferenced(id int) bool {
	if _, ok := st.stats[id]; ok {
		return true
	}
	for _, pg := range st.playerGames {
		if pg.PlayerID == id {
			return true
		}
	}
	for _, m := range st.teamMembers {
		if m.PlayerID == id {
			return true
		}
	}
	for _, p := range st.participants {
		if p.PlayerID == id {
			return true
		}
	}
	for _, t := range st.tournaments {
		if t.CreatedBy == id || (t.WinnerID != nil && *t.WinnerID == id) {
			return true
		}
	}
	for _, m := range st.matches {
		if m.Player1ID == id || m.Player2ID == id || m.WinnerID == id {
			return true
		}
	}
	return false
}

func (r *userRepository) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	u, ok := st.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	if st.userReferenced(id) {
		return repositories.ErrUserInUse
	}
	backupID, at := r.s.stamp()
	st.usersTrash = append(st.usersTrash, trashed[models.User]{backupID: backupID, deletedAt: at, row: u})
	delete(st.users, id)
	return nil
}

func (r *userRepository) RestoreLatest(_ context.Context, _ repositories.SQLExecutor) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	if len(st.usersTrash) == 0 {
		return nil, repositories.ErrNothingToRestore
	}
	last := st.usersTrash[len(st.usersTrash)-1].row
	for _, u := range st.users {
		if u.Username == last.Username || u.ID == last.ID {
			return nil, repositories.ErrUserUsernameConflict
		}
	}
	st.usersTrash = st.usersTrash[:len(st.usersTrash)-1]
	st.users[last.ID] = last
	return &last, nil
}
