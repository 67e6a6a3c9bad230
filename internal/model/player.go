package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is the session identity used when joining worlds
type Player struct {
	ID        PlayerID  `json:"id"`
	Username  string    `json:"username"`
	IsGuest   bool      `json:"is_guest"` // true for unregistered players
	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`
}

// RegisteredPlayer extends Player with authentication data
// Stored separately so the password hash never travels with a session
type RegisteredPlayer struct {
	PlayerID     PlayerID  `json:"player_id"`
	Login        string    `json:"login"` // immutable
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
