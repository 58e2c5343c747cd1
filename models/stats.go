package models

// PlayerStats is the denormalized aggregate row kept 1:1 with a player.
type PlayerStats struct {
	PlayerID       int `json:"player_id" db:"player_id"`
	TournamentsWon int `json:"tournaments_won" db:"tournaments_won"`
	MatchesWon     int `json:"matches_won" db:"matches_won"`
	TotalMatches   int `json:"total_matches" db:"total_matches"`
}

// StatsDelta is applied to a PlayerStats row as a single relative update.
type StatsDelta struct {
	TournamentsWon int
	MatchesWon     int
	TotalMatches   int
}

func (d StatsDelta) IsZero() bool {
	return d.TournamentsWon == 0 && d.MatchesWon == 0 && d.TotalMatches == 0
}

type LeaderboardEntry struct {
	Username       string `json:"username"`
	TournamentsWon int    `json:"tournaments_won"`
	MatchesWon     int    `json:"matches_won"`
	TotalMatches   int    `json:"total_matches"`
}

type PlayerProfile struct {
	PlayerID       int    `json:"player_id"`
	Username       string `json:"username"`
	TournamentsWon int    `json:"tournaments_won"`
	MatchesWon     int    `json:"matches_won"`
	TotalMatches   int    `json:"total_matches"`
}

// PlayerOverview is the admin listing row: one per player with its
// affinity set and team names folded in.
type PlayerOverview struct {
	ID             int      `json:"id"`
	Username       string   `json:"username"`
	Games          []string `json:"games"`
	Teams          []string `json:"teams"`
	TournamentsWon int      `json:"tournaments_won"`
	MatchesWon     int      `json:"matches_won"`
	TotalMatches   int      `json:"total_matches"`
}
