// Package turn implements the roll/move/end-turn state machine for one player.
package turn

import (
	"github.com/mcoot/fogwalk/internal/dependencies/random"
	"github.com/mcoot/fogwalk/internal/i18n"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/board"
	"github.com/mcoot/fogwalk/internal/services/events"
	"github.com/mcoot/fogwalk/internal/services/fog"
)

// DieSides is the number of faces on each of the two dice
const DieSides = 6

// MinimumRoll is the smallest movement budget a real turn can have
const MinimumRoll = 1

// StartResult describes the outcome of StartTurn
type StartResult struct {
	Skipped      bool
	Die1         int
	Die2         int
	Total        int
	BonusApplied int
	Message      i18n.Message
}

// MoveResult describes a successful move.
// Message is the destination event's description, Triggered is false for empty cells.
type MoveResult struct {
	From      model.Coordinate
	To        model.Coordinate
	Event     model.CellEvent
	Triggered bool
	Message   i18n.Message
	StepsLeft int
}

// Machine applies turn transitions to a player state, the board and the fog tracker.
// It is single-writer: callers serialize access.
type Machine struct {
	state  *model.PlayerTurnState
	board  *board.Board
	fog    *fog.Tracker
	random random.Random
	radius int
}

// New creates a machine over existing session parts
func New(state *model.PlayerTurnState, b *board.Board, tracker *fog.Tracker, rnd random.Random, radius int) *Machine {
	return &Machine{
		state:  state,
		board:  b,
		fog:    tracker,
		random: rnd,
		radius: radius,
	}
}

// State returns the live state. Callers must not mutate it.
func (m *Machine) State() *model.PlayerTurnState {
	return m.state
}

// Reveal recomputes visibility around the current position. Called at session start.
func (m *Machine) Reveal() {
	m.board.GetCell(m.state.Position)
	m.fog.UpdateVisibility(m.state.Position, m.radius, m.board)
}

// StartTurn consumes a pending skip or rolls the dice.
// It is rejected while a roll is still active, even an exhausted one, until EndTurn.
func (m *Machine) StartTurn() (StartResult, error) {
	s := m.state
	if s.CurrentRollTotal > 0 {
		return StartResult{}, model.ErrTurnInProgress
	}

	s.TurnNumber++

	if s.PendingSkipTurns > 0 {
		s.PendingSkipTurns--
		s.CurrentRollTotal = 0
		s.Die1, s.Die2 = 0, 0
		s.StepsTaken = 0
		s.Path = nil
		return StartResult{
			Skipped: true,
			Message: i18n.NewMessage(i18n.KeyTurnSkipped),
		}, nil
	}

	die1 := random.RollDie(m.random, DieSides)
	die2 := random.RollDie(m.random, DieSides)
	bonus := s.PendingBonusSteps

	total := die1 + die2 + bonus
	if total < MinimumRoll {
		total = MinimumRoll
	}

	s.Die1, s.Die2 = die1, die2
	s.CurrentRollTotal = total
	s.PendingBonusSteps = 0
	s.StepsTaken = 0
	s.Path = []model.Coordinate{s.Position}

	return StartResult{
		Die1:         die1,
		Die2:         die2,
		Total:        total,
		BonusApplied: bonus,
		Message:      i18n.NewMessage(i18n.KeyDiceRolled, die1, die2, total),
	}, nil
}

// Move steps one cell in dir, applies the destination's event and updates the fog
func (m *Machine) Move(dir model.Direction) (MoveResult, error) {
	s := m.state
	switch {
	case !dir.Valid():
		return MoveResult{}, model.ErrInvalidDirection
	case s.CurrentRollTotal <= 0:
		return MoveResult{}, model.ErrNoActiveRoll
	case s.PendingSkipTurns > 0:
		return MoveResult{}, model.ErrSkipPending
	case s.StepsTaken >= s.CurrentRollTotal:
		return MoveResult{}, model.ErrNoStepsLeft
	}

	from := s.Position
	to := from.Step(dir)
	if s.Visited(to) {
		return MoveResult{}, model.ErrAlreadyVisited
	}

	s.Position = to
	s.StepsTaken++
	s.Path = append(s.Path, to)

	cell := m.board.GetCell(to)
	outcome := events.InteractWith(cell.Event, s)

	m.fog.UpdateVisibility(to, m.radius, m.board)

	return MoveResult{
		From:      from,
		To:        to,
		Event:     cell.Event,
		Triggered: outcome.Triggered(),
		Message:   outcome.Message,
		StepsLeft: s.StepsLeft(),
	}, nil
}

// EndTurn returns to idle. Ending with steps left is only allowed when no further
// move is possible: a skip is pending or every neighbour is already on the path.
func (m *Machine) EndTurn() error {
	s := m.state
	if s.CurrentRollTotal <= 0 {
		return model.ErrNoActiveRoll
	}
	if s.StepsTaken < s.CurrentRollTotal && m.hasLegalMove() {
		return model.ErrStepsRemaining
	}

	s.Die1, s.Die2 = 0, 0
	s.CurrentRollTotal = 0
	s.StepsTaken = 0
	s.Path = nil
	return nil
}

// LegalMoves returns the directions Move would currently accept
func (m *Machine) LegalMoves() []model.Direction {
	s := m.state
	if !s.CanMove() {
		return nil
	}
	var out []model.Direction
	for _, d := range model.Directions() {
		if !s.Visited(s.Position.Step(d)) {
			out = append(out, d)
		}
	}
	return out
}

func (m *Machine) hasLegalMove() bool {
	return len(m.LegalMoves()) > 0
}
