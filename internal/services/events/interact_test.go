package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/fogwalk/internal/i18n"
	"github.com/mcoot/fogwalk/internal/model"
)

func TestInteract(t *testing.T) {
	tests := []struct {
		name      string
		event     model.CellEvent
		effect    Effect
		key       string
		triggered bool
	}{
		{"empty", model.EmptyEvent(), Effect{}, i18n.KeyEmptyCell, false},
		{"bonus", model.BonusStepsEvent(2), Effect{BonusSteps: 2}, i18n.KeyBonusSteps, true},
		{"debuff", model.DebuffStepsEvent(-2), Effect{BonusSteps: -2}, i18n.KeyDebuffSteps, true},
		{"enemy", model.EnemyEvent(1), Effect{SkipTurns: 1}, i18n.KeyEnemy, true},
		{"unknown kind", model.CellEvent{Kind: "PORTAL", Value: 9}, Effect{}, i18n.KeyEmptyCell, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Interact(tt.event)
			assert.Equal(t, tt.effect, outcome.Effect)
			assert.Equal(t, tt.key, outcome.Message.Key)
			assert.Equal(t, tt.triggered, outcome.Triggered())
		})
	}
}

func TestInteractDoesNotMutate(t *testing.T) {
	state := model.NewPlayerTurnState(model.Origin)

	_ = Interact(model.BonusStepsEvent(2))

	assert.Equal(t, 0, state.PendingBonusSteps)
}

func TestInteractWithAccumulates(t *testing.T) {
	state := model.NewPlayerTurnState(model.Origin)

	InteractWith(model.BonusStepsEvent(2), state)
	InteractWith(model.DebuffStepsEvent(-2), state)
	InteractWith(model.BonusStepsEvent(2), state)
	InteractWith(model.EnemyEvent(1), state)
	InteractWith(model.EnemyEvent(2), state)

	assert.Equal(t, 2, state.PendingBonusSteps)
	assert.Equal(t, 3, state.PendingSkipTurns)
}

func TestInteractMessageRenders(t *testing.T) {
	l := i18n.New("en")

	outcome := Interact(model.BonusStepsEvent(2))
	assert.Equal(t, "Bonus! +2 steps next turn.", l.Render("en", outcome.Message))
}

func TestEventColors(t *testing.T) {
	assert.Equal(t, 0xCCCCCC, model.EmptyEvent().Color())
	assert.Equal(t, 0x00FF00, model.BonusStepsEvent(2).Color())
	assert.Equal(t, 0xFF0000, model.DebuffStepsEvent(-2).Color())
	assert.Equal(t, 0xFF00FF, model.EnemyEvent(1).Color())
}
