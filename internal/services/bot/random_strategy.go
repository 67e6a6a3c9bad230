package bot

import (
	"github.com/mcoot/fogwalk/internal/dependencies/random"
	"github.com/mcoot/fogwalk/internal/model"
)

// RandomStrategy walks in a uniformly random legal direction
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseDirection picks one of the legal directions at random
func (s *RandomStrategy) ChooseDirection(player *model.PlayerSnapshot, legal []model.Direction) model.Direction {
	return legal[s.random.Intn(len(legal))]
}
