package level

import "github.com/tatianab/relic-rush/internal/models"

const (
	WinBase               = 1000
	MaxProgressScore      = 500
	MaxEfficiencyScore    = 1000
	OveragePenaltyPercent = 50
)

// ScoreStrategy turns a finished or unfinished state into a score. Results
// feed leaderboards, so implementations are pure and use integer math only.
type ScoreStrategy interface {
	Calculate(state *models.GameState, l *Level) int
}

// StandardScore rewards progress always, and a win plus move efficiency
// scaled by the difficulty multiplier on completion.
type StandardScore struct{}

func (StandardScore) Calculate(state *models.GameState, l *Level) int {
	required := l.rules.RequiredItems()
	progress := 0
	if len(required) > 0 {
		progress = MaxProgressScore * state.CountCollected(required) / len(required)
	}
	if state.Status != models.StatusCompleted {
		return progress
	}

	efficiency := MaxEfficiencyScore
	if state.MoveCount > 0 {
		efficiency = min(MaxEfficiencyScore*l.optimalMoves/state.MoveCount, MaxEfficiencyScore)
	}
	return WinBase + progress + efficiency*l.difficulty.MultiplierPercent()/100
}

// PenalizedScore starts from StandardScore and takes off up to half of it
// for moves beyond the optimum. It never changes win or loss.
type PenalizedScore struct {
	Base StandardScore
}

func (p PenalizedScore) Calculate(state *models.GameState, l *Level) int {
	base := p.Base.Calculate(state, l)
	if state.Status != models.StatusCompleted || l.optimalMoves <= 0 || state.MoveCount <= l.optimalMoves {
		return base
	}
	over := min(state.MoveCount-l.optimalMoves, l.optimalMoves)
	penalty := base * over * OveragePenaltyPercent / (l.optimalMoves * 100)
	return max(base-penalty, 0)
}
