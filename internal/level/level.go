// Package level builds immutable, validated levels and holds the rule,
// visibility and scoring policies that read them.
package level

import (
	"slices"

	"github.com/tatianab/relic-rush/internal/models"
)

// Level is the immutable configuration of one playable scenario. It is
// built once by New and may be shared by any number of sessions.
type Level struct {
	id           string
	name         string
	version      int
	difficulty   Difficulty
	startRoom    string
	graph        *models.MapGraph
	rules        Rules
	visibility   VisibilityPolicy
	scoring      ScoreStrategy
	optimalMoves int
	optimalPath  []string
}

func (l *Level) ID() string                   { return l.id }
func (l *Level) Name() string                 { return l.name }
func (l *Level) Version() int                 { return l.version }
func (l *Level) Difficulty() Difficulty       { return l.difficulty }
func (l *Level) StartRoom() string            { return l.startRoom }
func (l *Level) Map() *models.MapGraph        { return l.graph }
func (l *Level) Rules() Rules                 { return l.rules }
func (l *Level) Visibility() VisibilityPolicy { return l.visibility }
func (l *Level) Scoring() ScoreStrategy       { return l.scoring }

// OptimalMoves is the proven minimum number of moves that wins the level.
func (l *Level) OptimalMoves() int { return l.optimalMoves }

// OptimalPath returns one winning sequence of directions of OptimalMoves length.
func (l *Level) OptimalPath() []string { return slices.Clone(l.optimalPath) }

// RequiredItems returns the sorted names of the items needed to win.
func (l *Level) RequiredItems() []string { return l.rules.RequiredItems() }

// Project returns what state may see of the level.
func (l *Level) Project(state *models.GameState) Projection {
	return l.visibility.Project(l, state)
}

// Score scores state with the level's strategy.
func (l *Level) Score(state *models.GameState) int {
	return l.scoring.Calculate(state, l)
}
