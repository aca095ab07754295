package engine

import (
	"context"

	"github.com/tatianab/relic-rush/internal/level"
	"github.com/tatianab/relic-rush/internal/models"
)

// recentEvents is how many log entries the UI projection carries.
const recentEvents = 10

// RoomView is one room as the player is allowed to see it.
type RoomView struct {
	Name    string
	X, Y    int
	Exits   map[string]string
	Item    string // empty when there is no item or it is hidden
	Villain bool   // set only when the villain is visible
	Current bool
	Visited bool
}

// LevelView is the visibility-filtered projection of a level and a state.
type LevelView struct {
	LevelID     string
	LevelName   string
	Difficulty  string
	ShowFullMap bool
	Rooms       []RoomView // sorted by name, hidden rooms omitted
	Location    string
	Exits       []string

	Status    models.Status
	Message   string
	MoveCount int
	Inventory []string
	Events    []string
	Required  int
	Collected int
}

// LevelSummary describes a playable level for selection screens.
type LevelSummary struct {
	ID           string
	Name         string
	Version      int
	Difficulty   string
	Rooms        int
	Relics       int
	OptimalMoves int
}

// LevelView projects state onto the level through its visibility policy.
// It never mutates state.
func (e *Engine) LevelView(ctx context.Context, levelID string, state *models.GameState) (LevelView, error) {
	lvl, err := e.Level(ctx, levelID)
	if err != nil {
		return LevelView{}, err
	}
	if state == nil || state.Player == nil {
		return LevelView{}, invalidLocation(levelID, "")
	}
	proj := lvl.Project(state)
	required := lvl.RequiredItems()

	view := LevelView{
		LevelID:     lvl.ID(),
		LevelName:   lvl.Name(),
		Difficulty:  lvl.Difficulty().String(),
		ShowFullMap: proj.ShowFullMap,
		Location:    state.Player.Location,
		Status:      state.Status,
		Message:     state.Message,
		MoveCount:   state.MoveCount,
		Inventory:   state.Inventory(),
		Events:      state.RecentEvents(recentEvents),
		Required:    len(required),
		Collected:   state.CountCollected(required),
	}
	if room, ok := lvl.Map().Room(state.Player.Location); ok {
		view.Exits = room.Directions()
	}

	for _, name := range lvl.Map().RoomNames() {
		if !proj.CanRender(name) {
			continue
		}
		room, _ := lvl.Map().Room(name)
		rv := RoomView{
			Name:    name,
			Exits:   room.Exits(),
			Current: name == state.Player.Location,
			Visited: state.VisitedRooms.Has(name),
		}
		if c, ok := lvl.Map().Coords(name); ok {
			rv.X, rv.Y = c.X, c.Y
		}
		if item, ok := room.Item(); ok {
			switch {
			case item.Kind == models.ItemVillain && proj.ShowVillain:
				rv.Item = item.Name
				rv.Villain = true
			case item.Kind == models.ItemRelic && proj.ShowItems:
				rv.Item = item.Name
			}
		}
		view.Rooms = append(view.Rooms, rv)
	}
	return view, nil
}

// Levels lists every level that builds. Definitions that fail validation
// are logged and skipped.
func (e *Engine) Levels(ctx context.Context) ([]LevelSummary, error) {
	defs, err := e.levels.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LevelSummary, 0, len(defs))
	for _, def := range defs {
		lvl, err := e.Level(ctx, def.ID)
		if err != nil {
			e.logger.Printf("skipping level %q: %v", def.ID, err)
			continue
		}
		out = append(out, summarize(lvl))
	}
	return out, nil
}

func summarize(lvl *level.Level) LevelSummary {
	relics := 0
	for _, name := range lvl.Map().RoomNames() {
		room, _ := lvl.Map().Room(name)
		if item, ok := room.Item(); ok && item.Kind == models.ItemRelic {
			relics++
		}
	}
	return LevelSummary{
		ID:           lvl.ID(),
		Name:         lvl.Name(),
		Version:      lvl.Version(),
		Difficulty:   lvl.Difficulty().String(),
		Rooms:        lvl.Map().Len(),
		Relics:       relics,
		OptimalMoves: lvl.OptimalMoves(),
	}
}
