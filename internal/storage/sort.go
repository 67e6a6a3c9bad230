package storage

import (
	"cmp"
	"slices"

	"github.com/mcoot/fogwalk/internal/model"
)

// SortWorlds orders worlds oldest first, ties broken by ID
func SortWorlds(worlds []*model.World) {
	slices.SortFunc(worlds, func(a, b *model.World) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
