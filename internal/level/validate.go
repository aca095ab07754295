package level

import (
	"fmt"
	"maps"
	"slices"

	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/models"
)

// maxRequiredItems bounds the solver's item bitmask.
const maxRequiredItems = 64

func invalid(def models.LevelDefinition, format string, args ...any) error {
	return apperrors.WithMetadata(
		apperrors.CodeValidation,
		fmt.Sprintf(format, args...),
		map[string]string{"level_id": def.ID},
	)
}

// validateDefinition runs the structural checks in order and stops at the
// first violation.
func validateDefinition(def models.LevelDefinition) error {
	var missing []string
	if def.ID == "" {
		missing = append(missing, "id")
	}
	if def.Name == "" {
		missing = append(missing, "name")
	}
	if def.Difficulty == "" {
		missing = append(missing, "difficulty")
	}
	if def.StartRoom == "" {
		missing = append(missing, "start_room")
	}
	if len(def.Rooms) == 0 {
		missing = append(missing, "rooms")
	}
	if def.Coords == nil {
		missing = append(missing, "coords")
	}
	if def.Rules == nil {
		missing = append(missing, "rules")
	}
	if len(missing) > 0 {
		return invalid(def, "missing required keys: %v", missing)
	}

	if _, ok := def.Rooms[def.StartRoom]; !ok {
		return invalid(def, "start room %q does not exist", def.StartRoom)
	}

	names := slices.Sorted(maps.Keys(def.Rooms))
	for _, name := range names {
		room := def.Rooms[name]
		for _, dir := range slices.Sorted(maps.Keys(room.Exits)) {
			if target := room.Exits[dir]; !hasRoom(def, target) {
				return invalid(def, "room %q has invalid exit %s to %q", name, dir, target)
			}
		}
	}

	for _, name := range names {
		if xy, ok := def.Coords[name]; !ok || len(xy) != 2 {
			return invalid(def, "room %q missing coordinates", name)
		}
	}

	villains := 0
	for _, name := range names {
		if item := def.Rooms[name].Item; item != nil && item.Type == string(models.ItemVillain) {
			villains++
		}
	}
	if villains != 1 {
		return invalid(def, "level must contain exactly one villain, found %d", villains)
	}

	if _, err := ParseDifficulty(def.Difficulty); err != nil {
		return invalid(def, "%v", err)
	}
	for _, name := range names {
		item := def.Rooms[name].Item
		if item == nil {
			continue
		}
		if _, ok := models.ParseItemKind(item.Type); !ok {
			return invalid(def, "room %q has unknown item type %q", name, item.Type)
		}
		if item.Name == "" {
			return invalid(def, "room %q has an unnamed item", name)
		}
	}
	if n := len(uniqueSorted(def.Rules.RequiredItems)); n > maxRequiredItems {
		return invalid(def, "too many required items: %d (max %d)", n, maxRequiredItems)
	}
	return nil
}

func hasRoom(def models.LevelDefinition, name string) bool {
	_, ok := def.Rooms[name]
	return ok
}

func uniqueSorted(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	return slices.Compact(out)
}
