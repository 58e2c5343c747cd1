package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	MemberCount int `json:"member_count" db:"-"`
}

type TeamMember struct {
	TeamID   int       `json:"team_id" db:"team_id"`
	PlayerID int       `json:"player_id" db:"player_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
