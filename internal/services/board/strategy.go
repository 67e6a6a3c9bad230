package board

import (
	"github.com/mcoot/fogwalk/internal/dependencies/random"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/events"
)

// Default generation parameters
const (
	BonusModulus  = 7
	DebuffModulus = 5
	EnemyModulus  = 11

	// A cell matching a modulus rule only gets the event when a draw exceeds its gate
	BonusGate  = 0.3
	DebuffGate = 0.3
	EnemyGate  = 0.5

	BonusAmount  = 2
	DebuffAmount = -2
	EnemySkips   = 1
)

// Strategy decides which event a newly generated cell carries
type Strategy interface {
	Generate(c model.Coordinate) model.CellEvent
}

// StrategyFunc adapts a function to Strategy
type StrategyFunc func(c model.Coordinate) model.CellEvent

// Generate calls f(c)
func (f StrategyFunc) Generate(c model.Coordinate) model.CellEvent {
	return f(c)
}

// DefaultStrategy places events on a fixed arithmetic pattern gated by random draws
type DefaultStrategy struct {
	registry *events.Registry
	random   random.Random
}

// NewDefaultStrategy creates the default generation strategy
func NewDefaultStrategy(registry *events.Registry, rnd random.Random) *DefaultStrategy {
	return &DefaultStrategy{
		registry: registry,
		random:   rnd,
	}
}

// Generate returns the event for c. Draws are only taken when a modulus rule matches.
func (s *DefaultStrategy) Generate(c model.Coordinate) model.CellEvent {
	switch {
	case c == model.Origin:
		return s.registry.Create(model.EventEmpty)
	case (c.X+c.Y)%BonusModulus == 0 && s.random.Float64() > BonusGate:
		return s.registry.Create(model.EventBonusSteps, BonusAmount)
	case (c.X+c.Y)%DebuffModulus == 0 && s.random.Float64() > DebuffGate:
		return s.registry.Create(model.EventDebuffSteps, DebuffAmount)
	case c.X > 0 && c.Y > 0 && (c.X*c.Y)%EnemyModulus == 0 && s.random.Float64() > EnemyGate:
		return s.registry.Create(model.EventEnemy, EnemySkips)
	default:
		return s.registry.Create(model.EventEmpty)
	}
}

// Uniform returns a strategy that always produces event. Useful for tests and sandbox worlds.
func Uniform(event model.CellEvent) Strategy {
	return StrategyFunc(func(model.Coordinate) model.CellEvent {
		return event
	})
}
