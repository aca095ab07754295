package models

import (
	"maps"
	"slices"
)

// Coord is the display position of a room. It carries no connectivity.
type Coord struct {
	X int
	Y int
}

// Room is an immutable node of the level graph.
type Room struct {
	name    string
	exits   map[string]string
	item    Item
	hasItem bool
}

// NewRoom builds a room. The exits map is copied.
func NewRoom(name string, exits map[string]string, item *Item) *Room {
	r := &Room{
		name:  name,
		exits: maps.Clone(exits),
	}
	if r.exits == nil {
		r.exits = map[string]string{}
	}
	if item != nil {
		r.item = *item
		r.hasItem = true
	}
	return r
}

func (r *Room) Name() string {
	return r.name
}

// Exits returns a copy of the direction -> room mapping.
func (r *Room) Exits() map[string]string {
	return maps.Clone(r.exits)
}

// Exit returns the room reached by leaving in direction.
func (r *Room) Exit(direction string) (string, bool) {
	target, ok := r.exits[direction]
	return target, ok
}

// Directions returns the declared exit directions in sorted order.
func (r *Room) Directions() []string {
	return slices.Sorted(maps.Keys(r.exits))
}

// Item returns the item placed in the room, if any.
func (r *Room) Item() (Item, bool) {
	return r.item, r.hasItem
}

// HasVillain reports whether the room holds the villain.
func (r *Room) HasVillain() bool {
	return r.hasItem && r.item.Kind == ItemVillain
}

// Enter runs the entry hook of the room's item against state.
func (r *Room) Enter(state *GameState) {
	if r.hasItem {
		r.item.OnEnter(state)
	}
}

// MapGraph is the static room graph of a level.
type MapGraph struct {
	rooms  map[string]*Room
	coords map[string]Coord
}

// NewMapGraph indexes rooms by name. The coords map is copied.
func NewMapGraph(rooms []*Room, coords map[string]Coord) *MapGraph {
	g := &MapGraph{
		rooms:  make(map[string]*Room, len(rooms)),
		coords: maps.Clone(coords),
	}
	for _, r := range rooms {
		g.rooms[r.name] = r
	}
	return g
}

// Room looks up a room by name.
func (g *MapGraph) Room(name string) (*Room, bool) {
	r, ok := g.rooms[name]
	return r, ok
}

// Has reports whether name is a room of the graph.
func (g *MapGraph) Has(name string) bool {
	_, ok := g.rooms[name]
	return ok
}

// Neighbors returns the direction -> room mapping of a room. Exits say
// nothing about spatial adjacency.
func (g *MapGraph) Neighbors(name string) map[string]string {
	r, ok := g.rooms[name]
	if !ok {
		return nil
	}
	return r.Exits()
}

// Move returns the destination of leaving room in direction.
func (g *MapGraph) Move(room, direction string) (string, bool) {
	r, ok := g.rooms[room]
	if !ok {
		return "", false
	}
	return r.Exit(direction)
}

// Coords returns the display position of a room.
func (g *MapGraph) Coords(name string) (Coord, bool) {
	c, ok := g.coords[name]
	return c, ok
}

// RoomNames returns every room name in sorted order.
func (g *MapGraph) RoomNames() []string {
	return slices.Sorted(maps.Keys(g.rooms))
}

// Len returns the number of rooms.
func (g *MapGraph) Len() int {
	return len(g.rooms)
}
