package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RolePlayer UserRole = "player"
)

// User is a row of the users table. Password holds the stored credential:
// a bcrypt hash for accounts created by this service, or a legacy
// plaintext value for rows that predate it.
type User struct {
	ID        int       `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Session identifies the authenticated caller of a core operation.
type Session struct {
	UserID   int      `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) IsPlayer() bool {
	return s.Role == RolePlayer
}

// Dashboard names the view a client should open for this session.
func (s Session) Dashboard() string {
	if s.IsAdmin() {
		return "admin"
	}
	return "player"
}
