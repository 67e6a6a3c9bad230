package response

import (
	"time"

	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/auth"
	"github.com/mcoot/fogwalk/internal/services/world"
)

// Player represents a player in API responses
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsGuest  bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:       string(p.ID),
		Username: p.Username,
		IsGuest:  p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// World represents a world in API responses
type World struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	PlayerCount *int      `json:"player_count,omitempty"`
}

// WorldFromModel converts a model.World
func WorldFromModel(w *model.World) World {
	return World{
		ID:        string(w.ID),
		Name:      w.Name,
		CreatedBy: string(w.CreatedBy),
		CreatedAt: w.CreatedAt,
	}
}

// WorldFromSummary converts a world.Summary, including its player count
func WorldFromSummary(s *world.Summary) World {
	out := WorldFromModel(&s.World)
	count := s.PlayerCount
	out.PlayerCount = &count
	return out
}

// WorldList is the response for listing worlds
type WorldList struct {
	Worlds []World `json:"worlds"`
}

// WorldListFromModel converts a slice of worlds
func WorldListFromModel(worlds []*model.World) WorldList {
	out := WorldList{Worlds: make([]World, len(worlds))}
	for i, w := range worlds {
		out.Worlds[i] = WorldFromModel(w)
	}
	return out
}

// LegalMoves lists the directions a player may step in
type LegalMoves struct {
	Directions []string `json:"directions"`
	StepsLeft  int      `json:"steps_left"`
}

// LegalMovesFromModel converts directions to their names
func LegalMovesFromModel(dirs []model.Direction, stepsLeft int) LegalMoves {
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = d.String()
	}
	return LegalMoves{Directions: names, StepsLeft: stepsLeft}
}

// JoinResponse is the response after joining a world
type JoinResponse struct {
	Player *model.PlayerSnapshot `json:"player"`
	Map    *model.MapWindow      `json:"map"`
}
