package model

import "time"

// WorldID uniquely identifies a world
type WorldID string

// World is a named space players join. Each player explores it in their own session.
type World struct {
	ID        WorldID   `json:"id"`
	Name      string    `json:"name"`
	CreatedBy PlayerID  `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
