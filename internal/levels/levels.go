// Package levels ships the built-in level definitions.
package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tatianab/relic-rush/internal/models"
)

// DefaultLevelID is the level offered first on the selection screen.
const DefaultLevelID = "level_1"

//go:embed data/*.yaml
var builtin embed.FS

// Builtin returns the embedded level definitions sorted by id. The
// definitions are raw: they are validated when a level is built.
func Builtin() ([]models.LevelDefinition, error) {
	sub, err := fs.Sub(builtin, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads every *.yaml file at the root of fsys as a level definition.
func Load(fsys fs.FS) ([]models.LevelDefinition, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read level dir: %w", err)
	}
	var defs []models.LevelDefinition
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read level %s: %w", entry.Name(), err)
		}
		def, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse level %s: %w", entry.Name(), err)
		}
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b models.LevelDefinition) int {
		return strings.Compare(a.ID, b.ID)
	})
	return defs, nil
}

// Parse decodes a single YAML level definition.
func Parse(data []byte) (models.LevelDefinition, error) {
	var def models.LevelDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return models.LevelDefinition{}, err
	}
	return def, nil
}

func isYAML(name string) bool {
	ext := path.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
