package level

import (
	"maps"
	"slices"

	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/models"
)

// New validates a raw definition, proves it solvable and builds the Level.
// It is the only way to obtain a Level. Failures carry
// apperrors.CodeValidation.
func New(def models.LevelDefinition) (*Level, error) {
	if err := validateDefinition(def); err != nil {
		return nil, err
	}

	difficulty, _ := ParseDifficulty(def.Difficulty)
	rooms := make([]*models.Room, 0, len(def.Rooms))
	for _, name := range slices.Sorted(maps.Keys(def.Rooms)) {
		raw := def.Rooms[name]
		var item *models.Item
		if raw.Item != nil {
			kind, _ := models.ParseItemKind(raw.Item.Type)
			item = &models.Item{Kind: kind, Name: raw.Item.Name}
		}
		rooms = append(rooms, models.NewRoom(name, raw.Exits, item))
	}
	coords := make(map[string]models.Coord, len(def.Coords))
	for name, xy := range def.Coords {
		if len(xy) == 2 {
			coords[name] = models.Coord{X: xy[0], Y: xy[1]}
		}
	}
	graph := models.NewMapGraph(rooms, coords)

	rules := NewStandardRules(def.Rules.RequiredItems)
	solution, err := Solve(graph, def.StartRoom, rules.RequiredItems())
	if err != nil {
		return nil, apperrors.WithMetadata(
			apperrors.CodeValidation,
			"level "+def.ID+" is not solvable",
			map[string]string{"level_id": def.ID},
		)
	}

	version := def.Version
	if version <= 0 {
		version = 1
	}
	return &Level{
		id:           def.ID,
		name:         def.Name,
		version:      version,
		difficulty:   difficulty,
		startRoom:    def.StartRoom,
		graph:        graph,
		rules:        rules,
		visibility:   difficulty.Visibility(),
		scoring:      difficulty.Scoring(),
		optimalMoves: solution.Moves,
		optimalPath:  solution.Path,
	}, nil
}
