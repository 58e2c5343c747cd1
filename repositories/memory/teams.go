package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type teamRepository struct {
	s *Store
}

func (r *teamRepository) Create(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	for _, t := range st.teams {
		if t.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	st.nextTeamID++
	team.ID = st.nextTeamID
	team.CreatedAt = r.s.now()
	stored := *team
	stored.MemberCount = 0
	st.teams[team.ID] = stored
	return nil
}

func (r *teamRepository) FindIDByName(_ context.Context, _ repositories.SQLExecutor, name string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.st.teams {
		if t.Name == name {
			return t.ID, nil
		}
	}
	return 0, repositories.ErrTeamNotFound
}

func (r *teamRepository) List(_ context.Context, _ repositories.SQLExecutor) ([]models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := r.s.st
	counts := make(map[int]int, len(st.teams))
	for _, m := range st.teamMembers {
		counts[m.TeamID]++
	}
	teams := make([]models.Team, 0, len(st.teams))
	for _, t := range st.teams {
		t.MemberCount = counts[t.ID]
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (r *teamRepository) AddMember(_ context.Context, _ repositories.SQLExecutor, teamID, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	for _, m := range st.teamMembers {
		if m.TeamID == teamID && m.PlayerID == playerID {
			return repositories.ErrTeamMemberConflict
		}
	}
	if _, ok := st.teams[teamID]; !ok {
		return repositories.ErrTeamMemberInvalid
	}
	if _, ok := st.users[playerID]; !ok {
		return repositories.ErrTeamMemberInvalid
	}
	st.teamMembers = append(st.teamMembers, models.TeamMember{TeamID: teamID, PlayerID: playerID, JoinedAt: r.s.now()})
	return nil
}

func (r *teamRepository) DeleteMembershipsByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	kept := st.teamMembers[:0]
	for _, m := range st.teamMembers {
		if m.PlayerID != playerID {
			kept = append(kept, m)
			continue
		}
		backupID, at := r.s.stamp()
		st.teamMembersTrash = append(st.teamMembersTrash, trashed[models.TeamMember]{backupID: backupID, deletedAt: at, row: m})
	}
	st.teamMembers = kept
	return nil
}

func (r *teamRepository) RestoreMembershipsForPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	kept := make([]trashed[models.TeamMember], 0, len(st.teamMembersTrash))
	var restored []models.TeamMember
	for _, e := range st.teamMembersTrash {
		if e.row.PlayerID != playerID {
			kept = append(kept, e)
			continue
		}
		if _, ok := st.teams[e.row.TeamID]; !ok {
			kept = append(kept, e)
			continue
		}
		restored = append(restored, e.row)
	}
	if len(restored) > 0 {
		if _, ok := st.users[playerID]; !ok {
			return repositories.ErrTeamMemberInvalid
		}
	}
	for _, m := range restored {
		if !st.isTeamMember(m.TeamID, m.PlayerID) {
			st.teamMembers = append(st.teamMembers, m)
		}
	}
	st.teamMembersTrash = kept
	return nil
}

func (st *state) isTeamMember(teamID, playerID int) bool {
	for _, m := range st.teamMembers {
		if m.TeamID == teamID && m.PlayerID == playerID {
			return true
		}
	}
	return false
}
