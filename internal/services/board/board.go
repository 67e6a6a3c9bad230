// Package board holds the lazily generated, permanently cached cells of one session.
//
// A Board is not safe for concurrent use. The game controller owns each board and
// serializes access through its session lock.
package board

import (
	"sort"

	"github.com/mcoot/fogwalk/internal/model"
)

const (
	// DefaultWindowSize is the side of the square window sent to renderers
	DefaultWindowSize = 21
	// MaxWindowSize bounds how many cells a single window may generate
	MaxWindowSize = 101
)

// Board is a sparse map from coordinate to generated cell
type Board struct {
	cells    map[model.Coordinate]*model.Cell
	strategy Strategy
}

// New creates an empty board using strategy for generation
func New(strategy Strategy) *Board {
	return &Board{
		cells:    make(map[model.Coordinate]*model.Cell),
		strategy: strategy,
	}
}

// GetCell returns the cell at c, generating and caching it on first access.
// A cached cell is never regenerated.
func (b *Board) GetCell(c model.Coordinate) *model.Cell {
	if cell, ok := b.cells[c]; ok {
		return cell
	}
	cell := &model.Cell{
		Coord: c,
		Event: b.strategy.Generate(c),
	}
	b.cells[c] = cell
	return cell
}

// Peek returns the cell at c only if it has already been generated
func (b *Board) Peek(c model.Coordinate) (*model.Cell, bool) {
	cell, ok := b.cells[c]
	return cell, ok
}

// SetStrategy replaces the generation strategy for cells not yet generated
func (b *Board) SetStrategy(strategy Strategy) {
	b.strategy = strategy
}

// Len returns the number of generated cells
func (b *Board) Len() int {
	return len(b.cells)
}

// Window materializes the size×size square centred on center.
// Rows run from the smallest y to the largest, columns from the smallest x.
func (b *Board) Window(center model.Coordinate, size int) ([][]*model.Cell, error) {
	if size <= 0 || size > MaxWindowSize || size%2 == 0 {
		return nil, model.ErrInvalidWindow
	}
	half := size / 2
	rows := make([][]*model.Cell, size)
	for row := 0; row < size; row++ {
		rows[row] = make([]*model.Cell, size)
		for col := 0; col < size; col++ {
			c := model.Coordinate{X: center.X - half + col, Y: center.Y - half + row}
			rows[row][col] = b.GetCell(c)
		}
	}
	return rows, nil
}

// Cells returns a copy of every generated cell ordered by y then x
func (b *Board) Cells() []model.Cell {
	out := make([]model.Cell, 0, len(b.cells))
	for _, cell := range b.cells {
		out = append(out, *cell)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coord.Y != out[j].Coord.Y {
			return out[i].Coord.Y < out[j].Coord.Y
		}
		return out[i].Coord.X < out[j].Coord.X
	})
	return out
}

// Restore loads previously generated cells. Cells already on the board are kept as they are.
// Visibility flags are cleared; the fog tracker owns them.
func (b *Board) Restore(cells []model.Cell) {
	for _, cell := range cells {
		if _, ok := b.cells[cell.Coord]; ok {
			continue
		}
		b.cells[cell.Coord] = &model.Cell{
			Coord: cell.Coord,
			Event: cell.Event,
		}
	}
}
