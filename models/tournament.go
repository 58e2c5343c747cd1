package models

import "time"

type Tournament struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	GameID    int       `json:"game_id" db:"game_id"`
	CreatedBy int       `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	WinnerID  *int      `json:"winner_id,omitempty" db:"winner_id"`
}

type TournamentParticipant struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// TournamentView is the admin listing row.
type TournamentView struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Game      string  `json:"game"`
	CreatedBy string  `json:"created_by"`
	Winner    *string `json:"winner,omitempty"`
}

type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "Registered"
	StatusAvailable  RegistrationStatus = "Available"
)

// PlayerTournament is a tournament visible to a player through the
// player's game affinity set.
type PlayerTournament struct {
	TournamentID int                `json:"tournament_id"`
	Name         string             `json:"name"`
	Game         string             `json:"game"`
	Status       RegistrationStatus `json:"status"`
}
