package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// World errors
	ErrWorldNotFound     = errors.New("world not found")
	ErrWorldNameRequired = errors.New("world name is required")
	ErrNotWorldOwner     = errors.New("only the world's creator can do that")
	ErrNotJoined         = errors.New("player has not joined this world")
	ErrSessionNotFound   = errors.New("game session not found")

	// Turn transition errors
	ErrNoActiveRoll     = errors.New("no active roll")
	ErrNoStepsLeft      = errors.New("no steps left this turn")
	ErrSkipPending      = errors.New("movement blocked: a skipped turn is pending")
	ErrAlreadyVisited   = errors.New("cell already visited this turn")
	ErrTurnInProgress   = errors.New("a turn is already in progress")
	ErrStepsRemaining   = errors.New("steps remaining: cannot end turn yet")
	ErrInvalidDirection = errors.New("invalid direction")

	// Autoplay errors
	ErrUnknownStrategy = errors.New("unknown autoplay strategy")

	// Board errors
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidWindow     = errors.New("window size must be a positive odd number no larger than 101")
)

var invalidTransitions = []error{
	ErrNoActiveRoll,
	ErrNoStepsLeft,
	ErrSkipPending,
	ErrAlreadyVisited,
	ErrTurnInProgress,
	ErrStepsRemaining,
	ErrInvalidDirection,
}

// IsInvalidTransition reports whether err is a rejected roll/move/end-turn.
// These leave the state untouched and are never fatal.
func IsInvalidTransition(err error) bool {
	for _, target := range invalidTransitions {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
