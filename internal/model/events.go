package model

import "time"

// CommandType identifies a command a consumer may issue
type CommandType string

const (
	CommandJoin    CommandType = "player:join"
	CommandRoll    CommandType = "player:roll"
	CommandMove    CommandType = "player:move"
	CommandEndTurn CommandType = "player:end-turn"
)

// UpdateType identifies an update pushed to consumers
type UpdateType string

const (
	UpdatePlayer         UpdateType = "player:update"
	UpdateMap            UpdateType = "map:update"
	UpdateDiceRolled     UpdateType = "dice:rolled"
	UpdateEventTriggered UpdateType = "event:triggered"
	UpdateError          UpdateType = "error"
)

// Update is one message on the update bus.
// Payload is one of the *Payload / snapshot types below, matching Type.
type Update struct {
	Type      UpdateType `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	WorldID   WorldID    `json:"world_id"`
	PlayerID  PlayerID   `json:"player_id"`
	Payload   any        `json:"payload"`
}

// PlayerSnapshot is the point-in-time view of a player's state
type PlayerSnapshot struct {
	PlayerID      PlayerID     `json:"player_id"`
	Username      string       `json:"username"`
	WorldID       WorldID      `json:"world_id"`
	Position      Coordinate   `json:"position"`
	Phase         TurnPhase    `json:"phase"`
	TurnNumber    int          `json:"turn_number"`
	Die1          int          `json:"die1"`
	Die2          int          `json:"die2"`
	CurrentRoll   int          `json:"current_roll"`
	StepsTaken    int          `json:"steps_taken"`
	StepsLeft     int          `json:"steps_left"`
	PathTaken     []Coordinate `json:"path_taken"`
	BonusSteps    int          `json:"bonus_steps"`
	TurnsToSkip   int          `json:"turns_to_skip"`
	VisibleCells  []string     `json:"visible_cells"`
	ExploredCells []string     `json:"explored_cells"`
	CellCount     int          `json:"cell_count"`
}

// MapWindow is the square of cells a renderer needs around the player
type MapWindow struct {
	Center   Coordinate   `json:"center"`
	Size     int          `json:"size"`
	Cells    [][]Cell     `json:"cells"` // Cells[row][col], row 0 is the smallest y
	Position Coordinate   `json:"position"`
	Path     []Coordinate `json:"path"`
}

// DiceRolledPayload is published after StartTurn
type DiceRolledPayload struct {
	Die1         int  `json:"die1"`
	Die2         int  `json:"die2"`
	Total        int  `json:"total"`
	StepsLeft    int  `json:"steps_left"`
	BonusApplied int  `json:"bonus_applied"`
	TurnsToSkip  int  `json:"turns_to_skip"`
	Skipped      bool `json:"skipped"`
}

// EventTriggeredPayload is published when a move lands on a non-empty event
type EventTriggeredPayload struct {
	Message  string     `json:"message"`
	Position Coordinate `json:"position"`
	Kind     EventKind  `json:"kind"`
}

// ErrorPayload is published when a command is rejected or fails
type ErrorPayload struct {
	Command CommandType `json:"command,omitempty"`
	Message string      `json:"message"`
}
