package level

import (
	"slices"

	"github.com/tatianab/relic-rush/internal/models"
)

// Projection is the read-only view of a level that a player may see.
type Projection struct {
	ShowFullMap     bool
	ShowItems       bool
	ShowVillain     bool
	DiscoveredRooms []string // sorted, always a subset of the level's rooms
}

// CanRender reports whether a room may be drawn.
func (p Projection) CanRender(room string) bool {
	if p.ShowFullMap {
		return true
	}
	_, found := slices.BinarySearch(p.DiscoveredRooms, room)
	return found
}

// VisibilityPolicy derives a projection from a level and a state without
// mutating either.
type VisibilityPolicy interface {
	Project(l *Level, state *models.GameState) Projection
}

// FullReveal shows the map, the items and the villain.
type FullReveal struct{}

func (FullReveal) Project(l *Level, _ *models.GameState) Projection {
	return Projection{
		ShowFullMap:     true,
		ShowItems:       true,
		ShowVillain:     true,
		DiscoveredRooms: l.graph.RoomNames(),
	}
}

// MapOnlyReveal shows the layout but hides items and the villain.
type MapOnlyReveal struct{}

func (MapOnlyReveal) Project(l *Level, _ *models.GameState) Projection {
	return Projection{
		ShowFullMap:     true,
		DiscoveredRooms: l.graph.RoomNames(),
	}
}

// FogOfWar shows only rooms the player has been in.
type FogOfWar struct{}

func (FogOfWar) Project(l *Level, state *models.GameState) Projection {
	var discovered []string
	state.VisitedRooms.Each(func(room string) {
		if l.graph.Has(room) {
			discovered = append(discovered, room)
		}
	})
	if loc := state.Player.Location; l.graph.Has(loc) && !state.VisitedRooms.Has(loc) {
		discovered = append(discovered, loc)
	}
	slices.Sort(discovered)
	return Projection{DiscoveredRooms: discovered}
}
