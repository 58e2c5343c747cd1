package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type statsRepository struct {
	s *Store
}

func (r *statsRepository) Create(_ context.Context, _ repositories.SQLExecutor, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	if _, ok := st.users[playerID]; !ok {
		return repositories.ErrStatsPlayerInvalid
	}
	if _, ok := st.stats[playerID]; ok {
		return repositories.ErrStatsPlayerInvalid
	}
	st.stats[playerID] = models.PlayerStats{PlayerID: playerID}
	return nil
}

func (r *statsRepository) Get(_ context.Context, _ repositories.SQLExecutor, playerID int) (*models.PlayerStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.st.stats[playerID]
	if !ok {
		return nil, repositories.ErrStatsNotFound
	}
	return &s, nil
}

func (r *statsRepository) Adjust(_ context.Context, _ repositories.SQLExecutor, playerID int, delta models.StatsDelta) error {
	if delta.IsZero() {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.st.stats[playerID]
	if !ok {
		return repositories.ErrStatsNotFound
	}
	s.TournamentsWon += delta.TournamentsWon
	s.MatchesWon += delta.MatchesWon
	s.TotalMatches += delta.TotalMatches
	r.s.st.stats[playerID] = s
	return nil
}

func (r *statsRepository) Delete(_ context.Context, _ repositories.SQLExecutor, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	s, ok := st.stats[playerID]
	if !ok {
		return nil
	}
	backupID, at := r.s.stamp()
	st.statsTrash = append(st.statsTrash, trashed[models.PlayerStats]{backupID: backupID, deletedAt: at, row: s})
	delete(st.stats, playerID)
	return nil
}

func (r *statsRepository) RestoreForPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	var newest *models.PlayerStats
	kept := make([]trashed[models.PlayerStats], 0, len(st.statsTrash))
	for _, e := range st.statsTrash {
		if e.row.PlayerID != playerID {
			kept = append(kept, e)
			continue
		}
		row := e.row
		newest = &row
	}
	if newest == nil {
		return nil
	}
	if _, ok := st.users[playerID]; !ok {
		return repositories.ErrStatsPlayerInvalid
	}
	st.statsTrash = kept
	if _, exists := st.stats[playerID]; !exists {
		st.stats[playerID] = *newest
	}
	return nil
}

func (r *statsRepository) Leaderboard(_ context.Context, _ repositories.SQLExecutor) ([]models.LeaderboardEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := r.s.st
	entries := make([]models.LeaderboardEntry, 0)
	for id, s := range st.stats {
		u, ok := st.users[id]
		if !ok || u.Role != models.RolePlayer {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			Username:       u.Username,
			TournamentsWon: s.TournamentsWon,
			MatchesWon:     s.MatchesWon,
			TotalMatches:   s.TotalMatches,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TournamentsWon != b.TournamentsWon {
			return a.TournamentsWon > b.TournamentsWon
		}
		if a.MatchesWon != b.MatchesWon {
			return a.MatchesWon > b.MatchesWon
		}
		return a.Username < b.Username
	})
	return entries, nil
}

func (r *statsRepository) Profile(_ context.Context, _ repositories.SQLExecutor, playerID int) (*models.PlayerProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := r.s.st
	u, okUser := st.users[playerID]
	s, okStats := st.stats[playerID]
	if !okUser || !okStats {
		return nil, repositories.ErrStatsNotFound
	}
	return &models.PlayerProfile{
		PlayerID:       u.ID,
		Username:       u.Username,
		TournamentsWon: s.TournamentsWon,
		MatchesWon:     s.MatchesWon,
		TotalMatches:   s.TotalMatches,
	}, nil
}
