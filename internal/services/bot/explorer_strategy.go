package bot

import "github.com/mcoot/fogwalk/internal/model"

// ExplorerStrategy heads for the fog: it picks the step that would reveal the
// most never-seen coordinates. Ties go to the earliest legal direction.
type ExplorerStrategy struct {
	radius int
}

// NewExplorerStrategy creates an ExplorerStrategy for the given vision radius
func NewExplorerStrategy(radius int) *ExplorerStrategy {
	return &ExplorerStrategy{radius: radius}
}

// ChooseDirection returns the legal direction with the highest reveal count
func (s *ExplorerStrategy) ChooseDirection(player *model.PlayerSnapshot, legal []model.Direction) model.Direction {
	explored := make(map[string]struct{}, len(player.ExploredCells))
	for _, key := range player.ExploredCells {
		explored[key] = struct{}{}
	}

	best := legal[0]
	bestScore := -1
	for _, d := range legal {
		score := s.unexploredAround(player.Position.Step(d), explored)
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

func (s *ExplorerStrategy) unexploredAround(center model.Coordinate, explored map[string]struct{}) int {
	count := 0
	for dy := -s.radius; dy <= s.radius; dy++ {
		span := s.radius - abs(dy)
		for dx := -span; dx <= span; dx++ {
			c := model.Coordinate{X: center.X + dx, Y: center.Y + dy}
			if _, ok := explored[c.Key()]; !ok {
				count++
			}
		}
	}
	return count
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
