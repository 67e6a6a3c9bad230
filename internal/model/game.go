package model

import "time"

// TurnPhase describes where a player is in the roll/move/end-turn cycle
type TurnPhase string

const (
	TurnPhaseIdle      TurnPhase = "idle"      // No active roll
	TurnPhaseMoving    TurnPhase = "moving"    // Roll active, steps remaining
	TurnPhaseExhausted TurnPhase = "exhausted" // Roll active, awaiting end-turn
)

// PlayerTurnState is the mutable per-player movement state
type PlayerTurnState struct {
	Position Coordinate `json:"position"`

	// Dice of the current turn; zero when idle or skipping
	Die1             int `json:"die1"`
	Die2             int `json:"die2"`
	CurrentRollTotal int `json:"current_roll_total"`
	StepsTaken       int `json:"steps_taken"`

	// Path walked this turn, starting with the position at turn start
	Path []Coordinate `json:"path"`

	// Carried across turns until consumed
	PendingBonusSteps int `json:"pending_bonus_steps"`
	PendingSkipTurns  int `json:"pending_skip_turns"`

	TurnNumber int `json:"turn_number"`
}

// NewPlayerTurnState creates an idle state at the given position
func NewPlayerTurnState(position Coordinate) *PlayerTurnState {
	return &PlayerTurnState{Position: position}
}

// Phase derives the turn phase from the counters
func (s *PlayerTurnState) Phase() TurnPhase {
	switch {
	case s.CurrentRollTotal <= 0:
		return TurnPhaseIdle
	case s.StepsTaken >= s.CurrentRollTotal:
		return TurnPhaseExhausted
	default:
		return TurnPhaseMoving
	}
}

// StepsLeft returns the remaining movement budget of the current turn
func (s *PlayerTurnState) StepsLeft() int {
	if s.CurrentRollTotal <= s.StepsTaken {
		return 0
	}
	return s.CurrentRollTotal - s.StepsTaken
}

// CanMove reports whether a move may be attempted at all
func (s *PlayerTurnState) CanMove() bool {
	return s.CurrentRollTotal > 0 && s.StepsTaken < s.CurrentRollTotal && s.PendingSkipTurns == 0
}

// Visited reports whether c is already on this turn's path
func (s *PlayerTurnState) Visited(c Coordinate) bool {
	for _, p := range s.Path {
		if p == c {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to other goroutines
func (s *PlayerTurnState) Clone() PlayerTurnState {
	out := *s
	out.Path = append([]Coordinate(nil), s.Path...)
	return out
}

// GameSession is the persisted form of one player's game in one world
type GameSession struct {
	WorldID  WorldID  `json:"world_id"`
	PlayerID PlayerID `json:"player_id"`
	Username string   `json:"username"`
	Locale   string   `json:"locale"`

	Turn PlayerTurnState `json:"turn"`

	// Every generated cell; cells never regenerate once stored
	Cells []Cell `json:"cells"`
	// Every coordinate the player has ever observed
	Explored []Coordinate `json:"explored"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
