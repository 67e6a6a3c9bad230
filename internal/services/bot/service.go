// Package bot plays turns on a player's behalf.
package bot

import (
	"context"
	"log/slog"

	"github.com/mcoot/fogwalk/internal/dependencies/random"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/game"
)

// MaxMovesPerTurn is a safety limit for the move loop
const MaxMovesPerTurn = 1000

// ActionType represents the type of action the bot took
type ActionType string

const (
	ActionRoll    ActionType = "roll"
	ActionSkip    ActionType = "skip"
	ActionMove    ActionType = "move"
	ActionEndTurn ActionType = "end_turn"
)

// Action represents a single command issued during PlayTurn
type Action struct {
	Type      ActionType       `json:"type"`
	Direction string           `json:"direction,omitempty"`
	Position  model.Coordinate `json:"position"`
	Message   string           `json:"message,omitempty"`
}

// TurnReport is the outcome of PlayTurn
type TurnReport struct {
	Strategy string                `json:"strategy"`
	Actions  []Action              `json:"actions"`
	Player   *model.PlayerSnapshot `json:"player"`
}

// DefaultStrategies returns the built-in strategies keyed by name
func DefaultStrategies(rnd random.Random, radius int) map[string]Strategy {
	return map[string]Strategy{
		model.AutoplayStrategyRandom:   NewRandomStrategy(rnd),
		model.AutoplayStrategyExplorer: NewExplorerStrategy(radius),
	}
}

// Service autoplays turns through the game controller, so every step is
// validated and published like a human command
type Service struct {
	gameController game.ControllerInterface
	strategies     map[string]Strategy
	logger         *slog.Logger
}

// NewService creates a new bot Service
func NewService(gameController game.ControllerInterface, strategies map[string]Strategy, logger *slog.Logger) *Service {
	return &Service{
		gameController: gameController,
		strategies:     strategies,
		logger:         logger.With(slog.String("component", "bot-service")),
	}
}

// PlayTurn finishes the player's current turn, or plays a whole new one when idle:
// roll, walk until no step is possible, end the turn. A skipped turn is just consumed.
// An empty strategy name uses the explorer.
func (s *Service) PlayTurn(ctx context.Context, worldID model.WorldID, playerID model.PlayerID, strategyName string) (*TurnReport, error) {
	if strategyName == "" {
		strategyName = model.AutoplayStrategyExplorer
	}
	strategy, ok := s.strategies[strategyName]
	if !ok {
		return nil, model.ErrUnknownStrategy
	}

	player, err := s.gameController.State(ctx, worldID, playerID)
	if err != nil {
		return nil, err
	}

	report := &TurnReport{Strategy: strategyName}

	if player.Phase == model.TurnPhaseIdle {
		rolled, err := s.gameController.Roll(ctx, worldID, playerID)
		if err != nil {
			return nil, err
		}
		player = rolled.Player
		if rolled.Skipped {
			report.Actions = append(report.Actions, Action{Type: ActionSkip, Position: player.Position, Message: rolled.Message})
			report.Player = player
			return report, nil
		}
		report.Actions = append(report.Actions, Action{Type: ActionRoll, Position: player.Position, Message: rolled.Message})
	}

	for range MaxMovesPerTurn {
		legal, err := s.gameController.LegalMoves(ctx, worldID, playerID)
		if err != nil {
			return nil, err
		}
		if len(legal) == 0 {
			break
		}

		dir := strategy.ChooseDirection(player, legal)
		moved, err := s.gameController.Move(ctx, worldID, playerID, dir)
		if err != nil {
			return nil, err
		}
		player = moved.Player
		report.Actions = append(report.Actions, Action{
			Type:      ActionMove,
			Direction: dir.String(),
			Position:  moved.To,
			Message:   moved.Message,
		})
	}

	player, err = s.gameController.EndTurn(ctx, worldID, playerID)
	if err != nil {
		return nil, err
	}
	report.Actions = append(report.Actions, Action{Type: ActionEndTurn, Position: player.Position})
	report.Player = player

	s.logger.Debug("autoplayed turn",
		slog.String("world_id", string(worldID)),
		slog.String("player_id", string(playerID)),
		slog.String("strategy", strategyName),
		slog.Int("actions", len(report.Actions)),
	)
	return report, nil
}

// HasStrategy reports whether name is a registered strategy
func (s *Service) HasStrategy(name string) bool {
	_, ok := s.strategies[name]
	return ok
}
