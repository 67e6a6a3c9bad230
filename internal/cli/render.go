package cli

import (
	"fmt"
	"strings"
)

// Map symbols
const (
	symbolPlayer     = '@'
	symbolPath       = '*'
	symbolFog        = '#'
	symbolEmpty      = '.'
	symbolRemembered = ','
	symbolBonus      = '+'
	symbolDebuff     = '-'
	symbolEnemy      = '!'
	symbolUnknown    = '?'
)

const mapLegend = "@ you  * path  # fog  . empty  , remembered  + bonus  - debuff  ! enemy"

// RenderMap draws a map window as text, one row per line, smallest y on top
func RenderMap(m MapWindow) string {
	path := make(map[Coordinate]struct{}, len(m.Path))
	for _, c := range m.Path {
		path[c] = struct{}{}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Center %s, %dx%d\n", m.Center, m.Size, m.Size)
	for _, row := range m.Cells {
		for i, cell := range row {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteRune(cellSymbol(cell, m.Position, path))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cellSymbol(cell Cell, position Coordinate, path map[Coordinate]struct{}) rune {
	if cell.Coord == position {
		return symbolPlayer
	}
	if !cell.Explored {
		return symbolFog
	}
	if _, ok := path[cell.Coord]; ok {
		return symbolPath
	}

	switch cell.Event.Kind {
	case "", "EMPTY":
		if cell.Visible {
			return symbolEmpty
		}
		return symbolRemembered
	case "BONUS_STEPS":
		return symbolBonus
	case "DEBUFF_STEPS":
		return symbolDebuff
	case "ENEMY":
		return symbolEnemy
	default:
		return symbolUnknown
	}
}
