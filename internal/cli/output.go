package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return NewOutputTo(format, os.Stdout)
}

// NewOutputTo creates an Output writing to w
func NewOutputTo(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case World:
		o.printWorld(v)
	case WorldList:
		o.printWorldList(v)
	case JoinResult:
		o.printJoinResult(v)
	case PlayerState:
		o.printPlayerState(v)
	case MapWindow:
		o.printMap(v)
	case LegalMoves:
		o.printLegalMoves(v)
	case RollResult:
		o.printRollResult(v)
	case MoveResult:
		o.printMoveResult(v)
	case TurnReport:
		o.printTurnReport(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsGuest  bool   `json:"is_guest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// World response type
type World struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	PlayerCount *int      `json:"player_count,omitempty"`
}

// WorldList response type
type WorldList struct {
	Worlds []World `json:"worlds"`
}

// Coordinate is a cell position
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// CellEvent is the event on a cell
type CellEvent struct {
	Kind  string `json:"kind"`
	Value int    `json:"value,omitempty"`
}

// Cell is one map cell with its fog flags
type Cell struct {
	Coord    Coordinate `json:"coord"`
	Event    CellEvent  `json:"event"`
	Visible  bool       `json:"visible"`
	Explored bool       `json:"explored"`
}

// MapWindow response type
type MapWindow struct {
	Center   Coordinate   `json:"center"`
	Size     int          `json:"size"`
	Cells    [][]Cell     `json:"cells"`
	Position Coordinate   `json:"position"`
	Path     []Coordinate `json:"path"`
}

// PlayerState is a player snapshot
type PlayerState struct {
	PlayerID      string       `json:"player_id"`
	Username      string       `json:"username"`
	WorldID       string       `json:"world_id"`
	Position      Coordinate   `json:"position"`
	Phase         string       `json:"phase"`
	TurnNumber    int          `json:"turn_number"`
	Die1          int          `json:"die1"`
	Die2          int          `json:"die2"`
	CurrentRoll   int          `json:"current_roll"`
	StepsTaken    int          `json:"steps_taken"`
	StepsLeft     int          `json:"steps_left"`
	PathTaken     []Coordinate `json:"path_taken"`
	BonusSteps    int          `json:"bonus_steps"`
	TurnsToSkip   int          `json:"turns_to_skip"`
	ExploredCells []string     `json:"explored_cells"`
	CellCount     int          `json:"cell_count"`
}

// JoinResult response type
type JoinResult struct {
	Player *PlayerState `json:"player"`
	Map    *MapWindow   `json:"map"`
}

// LegalMoves response type
type LegalMoves struct {
	Directions []string `json:"directions"`
	StepsLeft  int      `json:"steps_left"`
}

// RollResult response type
type RollResult struct {
	Die1         int          `json:"die1"`
	Die2         int          `json:"die2"`
	Total        int          `json:"total"`
	StepsLeft    int          `json:"steps_left"`
	BonusApplied int          `json:"bonus_applied"`
	Skipped      bool         `json:"skipped"`
	Message      string       `json:"message"`
	Player       *PlayerState `json:"player"`
}

// MoveResult response type
type MoveResult struct {
	From      Coordinate   `json:"from"`
	To        Coordinate   `json:"to"`
	Event     CellEvent    `json:"event"`
	Triggered bool         `json:"triggered"`
	Message   string       `json:"message"`
	StepsLeft int          `json:"steps_left"`
	Player    *PlayerState `json:"player"`
}

// TurnAction is one step of an autoplayed turn
type TurnAction struct {
	Type      string     `json:"type"`
	Direction string     `json:"direction,omitempty"`
	Position  Coordinate `json:"position"`
	Message   string     `json:"message,omitempty"`
}

// TurnReport response type
type TurnReport struct {
	Strategy string       `json:"strategy"`
	Actions  []TurnAction `json:"actions"`
	Player   *PlayerState `json:"player"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Username, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func (o *Output) printWorld(w World) {
	fmt.Fprintf(o.w, "World: %s (%s)\n", w.Name, w.ID)
	if w.CreatedBy != "" {
		fmt.Fprintf(o.w, "Created by: %s\n", w.CreatedBy)
	}
	if w.PlayerCount != nil {
		fmt.Fprintf(o.w, "Players: %d\n", *w.PlayerCount)
	}
}

func (o *Output) printWorldList(l WorldList) {
	if len(l.Worlds) == 0 {
		fmt.Fprintln(o.w, "No worlds")
		return
	}
	for _, w := range l.Worlds {
		fmt.Fprintf(o.w, "  %s  %s\n", w.ID, w.Name)
	}
}

func (o *Output) printJoinResult(j JoinResult) {
	if j.Player != nil {
		o.printPlayerState(*j.Player)
	}
	if j.Map != nil {
		fmt.Fprintln(o.w)
		o.printMap(*j.Map)
	}
}

func (o *Output) printPlayerState(p PlayerState) {
	fmt.Fprintf(o.w, "Player: %s at %s\n", p.Username, p.Position)
	fmt.Fprintf(o.w, "Turn: %d (%s)\n", p.TurnNumber, p.Phase)
	if p.CurrentRoll > 0 {
		fmt.Fprintf(o.w, "Dice: %d + %d = %d\n", p.Die1, p.Die2, p.CurrentRoll)
		fmt.Fprintf(o.w, "Steps: %d taken, %d left\n", p.StepsTaken, p.StepsLeft)
	}
	if p.BonusSteps != 0 {
		fmt.Fprintf(o.w, "Next roll: %+d steps\n", p.BonusSteps)
	}
	if p.TurnsToSkip > 0 {
		fmt.Fprintf(o.w, "Turns to skip: %d\n", p.TurnsToSkip)
	}
	fmt.Fprintf(o.w, "Explored: %d cells\n", len(p.ExploredCells))
}

func (o *Output) printMap(m MapWindow) {
	fmt.Fprint(o.w, RenderMap(m))
	fmt.Fprintln(o.w, mapLegend)
}

func (o *Output) printLegalMoves(l LegalMoves) {
	if len(l.Directions) == 0 {
		fmt.Fprintln(o.w, "No legal moves")
		return
	}
	fmt.Fprintf(o.w, "Moves: %s (%d steps left)\n", strings.Join(l.Directions, ", "), l.StepsLeft)
}

func (o *Output) printRollResult(r RollResult) {
	fmt.Fprintln(o.w, r.Message)
	if r.BonusApplied != 0 {
		fmt.Fprintf(o.w, "Carried over: %+d\n", r.BonusApplied)
	}
}

func (o *Output) printMoveResult(m MoveResult) {
	fmt.Fprintf(o.w, "%s -> %s: %s\n", m.From, m.To, m.Message)
	fmt.Fprintf(o.w, "Steps left: %d\n", m.StepsLeft)
}

func (o *Output) printTurnReport(r TurnReport) {
	fmt.Fprintf(o.w, "Strategy: %s\n", r.Strategy)
	for _, a := range r.Actions {
		switch a.Type {
		case "move":
			fmt.Fprintf(o.w, "  move %-5s -> %s  %s\n", a.Direction, a.Position, a.Message)
		default:
			fmt.Fprintf(o.w, "  %s  %s\n", a.Type, a.Message)
		}
	}
	if r.Player != nil {
		fmt.Fprintf(o.w, "Now at %s\n", r.Player.Position)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
