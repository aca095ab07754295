package level

import (
	"slices"
	"testing"
	"time"

	"github.com/tatianab/relic-rush/internal/models"
)

func mustLevel(t *testing.T, def models.LevelDefinition) *Level {
	t.Helper()
	l, err := New(def)
	if err != nil {
		t.Fatalf("New(%s) error = %v", def.ID, err)
	}
	return l
}

func TestRulesVillainWithoutRelicIsGameOver(t *testing.T) {
	l := mustLevel(t, twoRoomDefinition("medium"))
	state := models.NewGameState("Start", time.Now())

	state.Player.Location = "End"
	state.MoveCount++
	end, _ := l.Map().Room("End")
	end.Enter(state)
	l.Rules().Check(state, end)

	if state.Status != models.StatusGameOver {
		t.Fatalf("status = %q, want %q", state.Status, models.StatusGameOver)
	}
	if state.Message != lossMessage {
		t.Fatalf("message = %q, want %q", state.Message, lossMessage)
	}
	if !state.EncounteredVillain {
		t.Fatal("expected the villain hook to have run")
	}
}

func TestRulesCollectThenVillainIsCompleted(t *testing.T) {
	l := mustLevel(t, twoRoomDefinition("medium"))
	state := replay(t, l, []string{"East"})

	if state.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want %q", state.Status, models.StatusCompleted)
	}
	if state.Message != winMessage {
		t.Fatalf("message = %q, want %q", state.Message, winMessage)
	}
	if score := l.Score(state); score < WinBase {
		t.Fatalf("score = %d, want at least %d", score, WinBase)
	}
}

func TestRulesCheckIsIdempotentOnTerminalState(t *testing.T) {
	l := mustLevel(t, twoRoomDefinition("medium"))
	end, _ := l.Map().Room("End")

	for _, withRelic := range []bool{true, false} {
		state := models.NewGameState("Start", time.Now())
		if withRelic {
			state.CollectedItems.Put("X")
		}
		state.Player.Location = "End"

		l.Rules().Check(state, end)
		status, message, events := state.Status, state.Message, len(state.EventLog)

		// A state that changed after the terminal transition must still not
		// flip its outcome.
		if withRelic {
			state.CollectedItems.Remove("X")
		} else {
			state.CollectedItems.Put("X")
		}
		l.Rules().Check(state, end)

		if state.Status != status || state.Message != message || len(state.EventLog) != events {
			t.Fatalf("second Check changed state: %q/%q/%d -> %q/%q/%d",
				status, message, events, state.Status, state.Message, len(state.EventLog))
		}
	}
}

func TestRulesIgnoreNonVillainRooms(t *testing.T) {
	l := mustLevel(t, twoRoomDefinition("medium"))
	start, _ := l.Map().Room("Start")
	state := models.NewGameState("Start", time.Now())

	l.Rules().Check(state, start)

	if state.Status != models.StatusInProgress || state.Message != "" {
		t.Fatalf("non-villain room changed status to %q (%q)", state.Status, state.Message)
	}
}

func TestVisibilityByDifficulty(t *testing.T) {
	tests := []struct {
		difficulty string
		want       Projection
	}{
		{"easy", Projection{ShowFullMap: true, ShowItems: true, ShowVillain: true, DiscoveredRooms: []string{"End", "Start"}}},
		{"medium", Projection{ShowFullMap: true, DiscoveredRooms: []string{"End", "Start"}}},
		{"hard", Projection{DiscoveredRooms: []string{"Start"}}},
	}

	for _, tt := range tests {
		t.Run(tt.difficulty, func(t *testing.T) {
			l := mustLevel(t, twoRoomDefinition(tt.difficulty))
			state := models.NewGameState("Start", time.Now())

			got := l.Project(state)
			if got.ShowFullMap != tt.want.ShowFullMap || got.ShowItems != tt.want.ShowItems || got.ShowVillain != tt.want.ShowVillain {
				t.Fatalf("Project() flags = %+v, want %+v", got, tt.want)
			}
			if !slices.Equal(got.DiscoveredRooms, tt.want.DiscoveredRooms) {
				t.Fatalf("DiscoveredRooms = %v, want %v", got.DiscoveredRooms, tt.want.DiscoveredRooms)
			}
		})
	}
}

func TestFogOfWarStaysInsideLevel(t *testing.T) {
	l := mustLevel(t, twoRoomDefinition("hard"))
	state := models.NewGameState("Start", time.Now())
	state.Visit("Somewhere Else")
	state.Player.Location = "End"
	before := state.Visited()

	got := l.Project(state)

	if !slices.Equal(got.DiscoveredRooms, []string{"End", "Start"}) {
		t.Fatalf("DiscoveredRooms = %v, want [End Start]", got.DiscoveredRooms)
	}
	if !slices.Equal(state.Visited(), before) {
		t.Fatal("Project() mutated the visited set")
	}
	if !got.CanRender("End") || got.CanRender("Somewhere Else") {
		t.Fatalf("CanRender mismatch for %+v", got)
	}
}

func completedState(moves int, collected ...string) *models.GameState {
	state := models.NewGameState("Start", time.Now())
	for _, name := range collected {
		state.CollectedItems.Put(name)
	}
	state.MoveCount = moves
	state.Status = models.StatusCompleted
	return state
}

func TestStandardScore(t *testing.T) {
	l := mustLevel(t, relicRushDefinition()) // medium, optimal 8, six relics
	all := l.RequiredItems()

	tests := []struct {
		name  string
		state *models.GameState
		want  int
	}{
		{"optimal win", completedState(8, all...), 1000 + 500 + 1000},
		{"slow win", completedState(16, all...), 1000 + 500 + 500},
		{"in progress half", func() *models.GameState {
			s := completedState(3, all[:3]...)
			s.Status = models.StatusInProgress
			return s
		}(), 250},
		{"game over one relic", func() *models.GameState {
			s := completedState(5, all[0])
			s.Status = models.StatusGameOver
			return s
		}(), 83},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Score(tt.state); got != tt.want {
				t.Fatalf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreMultiplierByDifficulty(t *testing.T) {
	want := map[string]int{
		"easy":   1000 + 500 + 750,
		"medium": 1000 + 500 + 1000,
		"hard":   1000 + 500 + 1250,
	}
	for difficulty, score := range want {
		l := mustLevel(t, twoRoomDefinition(difficulty))
		if got := l.Score(completedState(1, "X")); got != score {
			t.Errorf("%s: Score() = %d, want %d", difficulty, got, score)
		}
	}
}

func TestScoreIgnoresNonRequiredRelics(t *testing.T) {
	l := mustLevel(t, twoRoomDefinition("medium"))
	state := completedState(3, "Bonus Gem")
	state.Status = models.StatusInProgress

	if got := l.Score(state); got != 0 {
		t.Fatalf("Score() = %d, want 0", got)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	l := mustLevel(t, relicRushDefinition())
	state := completedState(13, l.RequiredItems()...)
	first := l.Score(state)
	for i := 0; i < 100; i++ {
		if got := l.Score(state); got != first {
			t.Fatalf("Score() = %d on call %d, first call gave %d", got, i, first)
		}
	}
}

func TestCompletedAlwaysBeatsUnfinished(t *testing.T) {
	for _, difficulty := range []string{"easy", "medium", "hard"} {
		def := relicRushDefinition()
		def.Difficulty = difficulty
		l := mustLevel(t, def)
		required := l.RequiredItems()

		for n := 0; n <= len(required); n++ {
			best := 0
			for _, status := range []models.Status{models.StatusInProgress, models.StatusGameOver} {
				s := completedState(1, required[:n]...)
				s.Status = status
				best = max(best, l.Score(s))
			}
			for _, moves := range []int{8, 9, 16, 40, 1000} {
				if got := l.Score(completedState(moves, required...)); got <= best {
					t.Fatalf("%s: completed in %d moves scored %d, unfinished with %d relics scored %d",
						difficulty, moves, got, n, best)
				}
			}
		}
	}
}

func TestPenalizedScoreNeverExceedsStandard(t *testing.T) {
	def := relicRushDefinition()
	def.Difficulty = "hard"
	l := mustLevel(t, def)
	standard := StandardScore{}
	penalized := PenalizedScore{}

	for _, moves := range []int{8, 9, 12, 16, 17, 100} {
		state := completedState(moves, l.RequiredItems()...)
		base := standard.Calculate(state, l)
		got := penalized.Calculate(state, l)

		switch {
		case moves <= l.OptimalMoves() && got != base:
			t.Errorf("moves=%d: penalized = %d, want exactly %d", moves, got, base)
		case moves > l.OptimalMoves() && got > base:
			t.Errorf("moves=%d: penalized = %d exceeds baseline %d", moves, got, base)
		}
	}

	// 12 moves is 4 over an optimum of 8: half the ratio, a quarter off.
	state := completedState(12, l.RequiredItems()...)
	base := standard.Calculate(state, l)
	if got, want := penalized.Calculate(state, l), base-base/4; got != want {
		t.Errorf("moves=12: penalized = %d, want %d", got, want)
	}
	// Unfinished runs are never penalized.
	lost := completedState(30, l.RequiredItems()[:2]...)
	lost.Status = models.StatusGameOver
	if penalized.Calculate(lost, l) != standard.Calculate(lost, l) {
		t.Error("penalty applied to an unfinished run")
	}
}
