package events

import (
	"github.com/mcoot/fogwalk/internal/i18n"
	"github.com/mcoot/fogwalk/internal/model"
)

// Effect is the change an event makes to a player's pending counters
type Effect struct {
	BonusSteps int
	SkipTurns  int
}

// Apply adds the effect to the target state
func (e Effect) Apply(target *model.PlayerTurnState) {
	target.PendingBonusSteps += e.BonusSteps
	target.PendingSkipTurns += e.SkipTurns
}

// Outcome is the result of interacting with an event
type Outcome struct {
	Effect  Effect
	Message i18n.Message
}

// Triggered reports whether the event had any effect
func (o Outcome) Triggered() bool {
	return o.Effect != Effect{}
}

// Interact computes the effect of event without touching any state.
// Unknown kinds behave like Empty.
func Interact(event model.CellEvent) Outcome {
	switch event.Kind {
	case model.EventBonusSteps:
		return Outcome{
			Effect:  Effect{BonusSteps: event.Value},
			Message: i18n.NewMessage(i18n.KeyBonusSteps, event.Value),
		}
	case model.EventDebuffSteps:
		return Outcome{
			Effect:  Effect{BonusSteps: event.Value},
			Message: i18n.NewMessage(i18n.KeyDebuffSteps, event.Value),
		}
	case model.EventEnemy:
		return Outcome{
			Effect:  Effect{SkipTurns: event.Value},
			Message: i18n.NewMessage(i18n.KeyEnemy),
		}
	default:
		return Outcome{Message: i18n.NewMessage(i18n.KeyEmptyCell)}
	}
}

// InteractWith applies event to target exactly once and returns the outcome
func InteractWith(event model.CellEvent, target *model.PlayerTurnState) Outcome {
	outcome := Interact(event)
	outcome.Effect.Apply(target)
	return outcome
}
