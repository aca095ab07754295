package level

import (
	"slices"

	"github.com/tatianab/relic-rush/internal/models"
)

const (
	winMessage  = "You defeated the villain!"
	lossMessage = "You found the villain too soon."
)

// Rules evaluates win and loss after a move. Implementations are stateless.
type Rules interface {
	// Check runs once per move, after the entered room's item hook.
	Check(state *models.GameState, entered *models.Room)
	RequiredItems() []string
}

// StandardRules ends the game in the villain's room: a win when every
// required item has been collected, a loss otherwise.
type StandardRules struct {
	required []string
}

// NewStandardRules builds the ruleset for a set of required item names.
func NewStandardRules(required []string) StandardRules {
	return StandardRules{required: uniqueSorted(required)}
}

// Check implements Rules. A state that already ended is left untouched.
func (r StandardRules) Check(state *models.GameState, entered *models.Room) {
	if state.Status.Terminal() || entered == nil || !entered.HasVillain() {
		return
	}
	if state.HasAll(r.required) {
		state.Status = models.StatusCompleted
		state.Message = winMessage
	} else {
		state.Status = models.StatusGameOver
		state.Message = lossMessage
	}
	state.Log(state.Message)
}

// RequiredItems returns a sorted copy of the required item names.
func (r StandardRules) RequiredItems() []string {
	return slices.Clone(r.required)
}
