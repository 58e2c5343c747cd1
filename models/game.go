package models

type Game struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type PlayerGame struct {
	PlayerID int `json:"player_id" db:"player_id"`
	GameID   int `json:"game_id" db:"game_id"`
}
