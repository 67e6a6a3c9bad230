package events

import (
	"log/slog"
	"sync"

	"github.com/mcoot/fogwalk/internal/model"
)

// Default values used by the built-in creators when no value is supplied
const (
	DefaultBonusSteps  = 1
	DefaultDebuffSteps = -1
	DefaultEnemySkips  = 1
)

// Creator builds an event of one kind. values holds the optional amount.
type Creator func(values ...int) model.CellEvent

// Registry maps event kinds to creators.
// New kinds can be registered at runtime without touching the dispatch in Create.
type Registry struct {
	mu       sync.RWMutex
	creators map[model.EventKind]Creator
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. Create falls back to Empty for every kind
// until creators are registered.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		creators: make(map[model.EventKind]Creator),
		logger:   logger,
	}
}

// NewDefaultRegistry creates a registry populated with the four built-in kinds
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(model.EventEmpty, func(...int) model.CellEvent {
		return model.EmptyEvent()
	})
	r.Register(model.EventBonusSteps, func(values ...int) model.CellEvent {
		return model.BonusStepsEvent(valueOr(values, DefaultBonusSteps))
	})
	r.Register(model.EventDebuffSteps, func(values ...int) model.CellEvent {
		return model.DebuffStepsEvent(valueOr(values, DefaultDebuffSteps))
	})
	r.Register(model.EventEnemy, func(values ...int) model.CellEvent {
		return model.EnemyEvent(valueOr(values, DefaultEnemySkips))
	})
	return r
}

// Register adds or replaces the creator for a kind
func (r *Registry) Register(kind model.EventKind, creator Creator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creators[kind] = creator
}

// Registered reports whether a creator exists for kind
func (r *Registry) Registered(kind model.EventKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.creators[kind]
	return ok
}

// Create resolves kind to an event. Unregistered kinds degrade to Empty.
func (r *Registry) Create(kind model.EventKind, values ...int) model.CellEvent {
	r.mu.RLock()
	creator, ok := r.creators[kind]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("unregistered cell event kind, using empty",
			slog.String("kind", string(kind)),
		)
		return model.EmptyEvent()
	}
	return creator(values...)
}

func valueOr(values []int, fallback int) int {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}
