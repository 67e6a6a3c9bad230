// Package fog tracks which coordinates a player currently sees and which they have ever seen.
package fog

import (
	"sort"

	"github.com/mcoot/fogwalk/internal/model"
)

// DefaultRadius is the visibility radius around the player
const DefaultRadius = 3

// DefaultScale keeps the visible area a pure diamond
const DefaultScale = 1.0

// CellLookup gives the tracker access to cells that already exist.
// *board.Board satisfies it.
type CellLookup interface {
	Peek(c model.Coordinate) (*model.Cell, bool)
}

// Tracker maintains the visible and explored coordinate sets.
// visible is always a subset of explored.
type Tracker struct {
	scale    float64
	visible  map[model.Coordinate]struct{}
	explored map[model.Coordinate]struct{}
}

// New creates a tracker. scale values below 1 are raised to 1.
func New(scale float64) *Tracker {
	if scale < 1 {
		scale = 1
	}
	return &Tracker{
		scale:    scale,
		visible:  make(map[model.Coordinate]struct{}),
		explored: make(map[model.Coordinate]struct{}),
	}
}

// Threshold returns the Manhattan distance limit for a radius
func (t *Tracker) Threshold(radius int) int {
	if radius < 0 {
		return 0
	}
	return int(float64(radius) * t.scale)
}

// UpdateVisibility replaces the visible set with every coordinate within the
// threshold of center and adds them to the explored set. Cells in cells that
// left the visible set have Visible cleared; cells inside it are marked
// visible and explored.
func (t *Tracker) UpdateVisibility(center model.Coordinate, radius int, cells CellLookup) {
	limit := t.Threshold(radius)
	next := make(map[model.Coordinate]struct{}, 2*limit*(limit+1)+1)

	for dy := -limit; dy <= limit; dy++ {
		span := limit - abs(dy)
		for dx := -span; dx <= span; dx++ {
			c := model.Coordinate{X: center.X + dx, Y: center.Y + dy}
			next[c] = struct{}{}
			t.explored[c] = struct{}{}
		}
	}

	if cells != nil {
		for c := range t.visible {
			if _, still := next[c]; still {
				continue
			}
			if cell, ok := cells.Peek(c); ok {
				cell.Visible = false
			}
		}
		for c := range next {
			if cell, ok := cells.Peek(c); ok {
				cell.Visible = true
				cell.Explored = true
			}
		}
	}

	t.visible = next
}

// Annotate copies the tracker's flags onto a cell, typically one generated after the last update
func (t *Tracker) Annotate(cell *model.Cell) {
	cell.Visible = t.IsVisible(cell.Coord)
	cell.Explored = t.IsExplored(cell.Coord)
}

// IsVisible reports whether c is currently observed
func (t *Tracker) IsVisible(c model.Coordinate) bool {
	_, ok := t.visible[c]
	return ok
}

// IsExplored reports whether c has ever been observed
func (t *Tracker) IsExplored(c model.Coordinate) bool {
	_, ok := t.explored[c]
	return ok
}

// Visible returns the visible coordinates ordered by y then x
func (t *Tracker) Visible() []model.Coordinate {
	return sortedKeys(t.visible)
}

// Explored returns the explored coordinates ordered by y then x
func (t *Tracker) Explored() []model.Coordinate {
	return sortedKeys(t.explored)
}

// ExploredCount returns the size of the explored set
func (t *Tracker) ExploredCount() int {
	return len(t.explored)
}

// Restore adds previously explored coordinates. The visible set is left empty until
// the next UpdateVisibility.
func (t *Tracker) Restore(explored []model.Coordinate) {
	for _, c := range explored {
		t.explored[c] = struct{}{}
	}
}

// Keys encodes coordinates as "x,y" strings
func Keys(coords []model.Coordinate) []string {
	out := make([]string, len(coords))
	for i, c := range coords {
		out[i] = c.Key()
	}
	return out
}

func sortedKeys(set map[model.Coordinate]struct{}) []model.Coordinate {
	out := make([]model.Coordinate, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
