package models

import (
	"strings"
	"time"
)

type MatchType string

const (
	MatchFriendly   MatchType = "friendly"
	MatchTournament MatchType = "tournament"
)

// ParseMatchType accepts any letter case ("Friendly", "TOURNAMENT").
func ParseMatchType(s string) (MatchType, bool) {
	switch t := MatchType(strings.ToLower(strings.TrimSpace(s))); t {
	case MatchFriendly, MatchTournament:
		return t, true
	default:
		return "", false
	}
}

type Match struct {
	ID        int       `json:"id" db:"id"`
	GameID    int       `json:"game_id" db:"game_id"`
	Player1ID int       `json:"player1_id" db:"player1_id"`
	Player2ID int       `json:"player2_id" db:"player2_id"`
	WinnerID  int       `json:"winner_id" db:"winner_id"`
	MatchType MatchType `json:"match_type" db:"match_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LoserID returns the participant that is not the winner.
func (m Match) LoserID() int {
	if m.WinnerID == m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}

// Participants returns both player ids in player1, player2 order.
func (m Match) Participants() [2]int {
	return [2]int{m.Player1ID, m.Player2ID}
}

type MatchView struct {
	ID        int       `json:"id"`
	Game      string    `json:"game"`
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Winner    string    `json:"winner"`
	MatchType MatchType `json:"match_type"`
}
