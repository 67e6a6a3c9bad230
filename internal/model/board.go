package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate identifies a cell on the unbounded lattice
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Origin is the starting coordinate of every session
var Origin = Coordinate{}

// Key returns the canonical "x,y" encoding used for map keys in JSON and Redis
func (c Coordinate) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Step returns the neighbouring coordinate in the given direction
func (c Coordinate) Step(d Direction) Coordinate {
	dx, dy := d.Vector()
	return Coordinate{X: c.X + dx, Y: c.Y + dy}
}

// Distance returns the Manhattan distance between two coordinates
func (c Coordinate) Distance(o Coordinate) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// ParseCoordinate parses a key produced by Coordinate.Key
func ParseCoordinate(key string) (Coordinate, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, key)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, key)
	}
	return Coordinate{X: x, Y: y}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Direction is one of the four unit moves
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
)

var directionNames = [...]string{"UP", "DOWN", "LEFT", "RIGHT"}

// Directions returns all directions in wire order
func Directions() []Direction {
	return []Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}
}

// Valid reports whether d is one of the four known directions
func (d Direction) Valid() bool {
	return d >= DirectionUp && d <= DirectionRight
}

// Vector returns the unit vector for the direction. Y grows downwards.
func (d Direction) Vector() (dx, dy int) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	case DirectionRight:
		return 1, 0
	default:
		return 0, 0
	}
}

func (d Direction) String() string {
	if !d.Valid() {
		return "Direction(" + strconv.Itoa(int(d)) + ")"
	}
	return directionNames[d]
}

// ParseDirection accepts a direction name (any case) or its numeric wire value
func ParseDirection(s string) (Direction, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range directionNames {
		if s == name {
			return Direction(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Direction(n).Valid() {
		return Direction(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// EventKind identifies the variant of a CellEvent
type EventKind string

const (
	EventEmpty       EventKind = "EMPTY"
	EventBonusSteps  EventKind = "BONUS_STEPS"
	EventDebuffSteps EventKind = "DEBUFF_STEPS"
	EventEnemy       EventKind = "ENEMY"
)

// Display colors for each event kind
const (
	ColorEmpty  = 0xCCCCCC
	ColorBonus  = 0x00FF00
	ColorDebuff = 0xFF0000
	ColorEnemy  = 0xFF00FF
)

// CellEvent is the event attached to a cell.
// Value holds the step amount for BonusSteps/DebuffSteps and the turns to skip for Enemy.
type CellEvent struct {
	Kind  EventKind `json:"kind"`
	Value int       `json:"value,omitempty"`
}

// EmptyEvent returns the no-op event
func EmptyEvent() CellEvent {
	return CellEvent{Kind: EventEmpty}
}

// BonusStepsEvent returns an event granting amount extra steps next turn
func BonusStepsEvent(amount int) CellEvent {
	return CellEvent{Kind: EventBonusSteps, Value: amount}
}

// DebuffStepsEvent returns an event adding amount (normally negative) steps next turn
func DebuffStepsEvent(amount int) CellEvent {
	return CellEvent{Kind: EventDebuffSteps, Value: amount}
}

// EnemyEvent returns an event that skips the given number of turns
func EnemyEvent(turnsToSkip int) CellEvent {
	return CellEvent{Kind: EventEnemy, Value: turnsToSkip}
}

// Color returns the display color for the event
func (e CellEvent) Color() int {
	switch e.Kind {
	case EventBonusSteps:
		return ColorBonus
	case EventDebuffSteps:
		return ColorDebuff
	case EventEnemy:
		return ColorEnemy
	default:
		return ColorEmpty
	}
}

// Known reports whether the kind is one of the built-in variants
func (k EventKind) Known() bool {
	switch k {
	case EventEmpty, EventBonusSteps, EventDebuffSteps, EventEnemy:
		return true
	}
	return false
}

// Cell is one generated lattice coordinate plus its fog-of-war flags
type Cell struct {
	Coord    Coordinate `json:"coord"`
	Event    CellEvent  `json:"event"`
	Visible  bool       `json:"visible"`
	Explored bool       `json:"explored"`
}
