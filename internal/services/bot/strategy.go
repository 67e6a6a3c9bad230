package bot

import "github.com/mcoot/fogwalk/internal/model"

// Strategy chooses the next step of an autoplayed turn.
// legal is never empty and holds the directions the game would accept.
type Strategy interface {
	ChooseDirection(player *model.PlayerSnapshot, legal []model.Direction) model.Direction
}
