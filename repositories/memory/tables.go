package memory

import (
	"context"
	"fmt"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type tableScanner struct {
	s *Store
}

// ScanTable renders rows with the same column names and value types the
// PostgreSQL driver returns: int64 for integers, string for text,
// time.Time for timestamps and nil for NULL.
func (t *tableScanner) ScanTable(_ context.Context, _ repositories.SQLExecutor, table string) ([]models.Document, error) {
	if !repositories.IsExportTable(table) {
		return nil, fmt.Errorf("%w: %q", repositories.ErrUnknownTable, table)
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	st := t.s.st
	docs := make([]models.Document, 0)
	switch table {
	case "users":
		for _, id := range sortedIDs(st.users) {
			u := st.users[id]
			docs = append(docs, models.Document{
				"id":         int64(u.ID),
				"username":   u.Username,
				"password":   u.Password,
				"role":       string(u.Role),
				"created_at": u.CreatedAt,
			})
		}
	case "games":
		for _, id := range sortedIDs(st.games) {
			g := st.games[id]
			docs = append(docs, models.Document{"id": int64(g.ID), "name": g.Name})
		}
	case "player_games":
		for _, pg := range st.playerGames {
			docs = append(docs, models.Document{"player_id": int64(pg.PlayerID), "game_id": int64(pg.GameID)})
		}
	case "teams":
		for _, id := range sortedIDs(st.teams) {
			tm := st.teams[id]
			docs = append(docs, models.Document{"id": int64(tm.ID), "name": tm.Name, "created_at": tm.CreatedAt})
		}
	case "team_members":
		for _, m := range st.teamMembers {
			docs = append(docs, models.Document{
				"team_id":   int64(m.TeamID),
				"player_id": int64(m.PlayerID),
				"joined_at": m.JoinedAt,
			})
		}
	case "tournaments":
		for _, id := range sortedIDs(st.tournaments) {
			tr := st.tournaments[id]
			var winner any
			if tr.WinnerID != nil {
				winner = int64(*tr.WinnerID)
			}
			docs = append(docs, models.Document{
				"id":         int64(tr.ID),
				"name":       tr.Name,
				"game_id":    int64(tr.GameID),
				"created_by": int64(tr.CreatedBy),
				"created_at": tr.CreatedAt,
				"winner_id":  winner,
			})
		}
	case "tournament_participants":
		for _, p := range st.participants {
			docs = append(docs, models.Document{
				"tournament_id": int64(p.TournamentID),
				"player_id":     int64(p.PlayerID),
				"registered_at": p.RegisteredAt,
			})
		}
	case "matches":
		for _, id := range sortedIDs(st.matches) {
			m := st.matches[id]
			docs = append(docs, models.Document{
				"id":         int64(m.ID),
				"game_id":    int64(m.GameID),
				"player1_id": int64(m.Player1ID),
				"player2_id": int64(m.Player2ID),
				"winner_id":  int64(m.WinnerID),
				"match_type": string(m.MatchType),
				"created_at": m.CreatedAt,
			})
		}
	case "player_stats":
		for _, id := range sortedIDs(st.stats) {
			s := st.stats[id]
			docs = append(docs, models.Document{
				"player_id":       int64(s.PlayerID),
				"tournaments_won": int64(s.TournamentsWon),
				"matches_won":     int64(s.MatchesWon),
				"total_matches":   int64(s.TotalMatches),
			})
		}
	}
	return docs, nil
}
