package level

import "fmt"

// Difficulty is the tier of a level. It selects policies, not rules.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty maps a raw difficulty label to its tier.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(raw)
	if _, ok := policyTable[d]; !ok {
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
	return d, nil
}

// policies are the strategies a difficulty tier selects.
type policies struct {
	visibility    VisibilityPolicy
	scoring       ScoreStrategy
	multiplierPct int
}

var policyTable = map[Difficulty]policies{
	Easy:   {visibility: FullReveal{}, scoring: StandardScore{}, multiplierPct: 75},
	Medium: {visibility: MapOnlyReveal{}, scoring: StandardScore{}, multiplierPct: 100},
	Hard:   {visibility: FogOfWar{}, scoring: PenalizedScore{}, multiplierPct: 125},
}

// Visibility returns the visibility policy of the tier.
func (d Difficulty) Visibility() VisibilityPolicy {
	return policyTable[d].visibility
}

// Scoring returns the score strategy of the tier.
func (d Difficulty) Scoring() ScoreStrategy {
	return policyTable[d].scoring
}

// MultiplierPercent returns the efficiency multiplier as a percentage.
func (d Difficulty) MultiplierPercent() int {
	return policyTable[d].multiplierPct
}

func (d Difficulty) String() string {
	return string(d)
}
