package level

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/models"
)

// twoRoomDefinition is the smallest winnable level: "Start" holds the
// required relic X and its East exit leads to the villain in "End".
func twoRoomDefinition(difficulty string) models.LevelDefinition {
	return models.LevelDefinition{
		ID:         "two_rooms",
		Name:       "Two Rooms",
		Difficulty: difficulty,
		StartRoom:  "Start",
		Rooms: map[string]models.RoomDefinition{
			"Start": {
				Exits: map[string]string{"East": "End"},
				Item:  &models.ItemDefinition{Type: "relic", Name: "X"},
			},
			"End": {
				Exits: map[string]string{"West": "Start"},
				Item:  &models.ItemDefinition{Type: "villain", Name: "Villain"},
			},
		},
		Coords: map[string][]int{"Start": {0, 0}, "End": {1, 0}},
		Rules:  &models.RulesDefinition{RequiredItems: []string{"X"}},
	}
}

func relicRushDefinition() models.LevelDefinition {
	relic := func(name string) *models.ItemDefinition {
		return &models.ItemDefinition{Type: "relic", Name: name}
	}
	return models.LevelDefinition{
		ID:         "level_1",
		Name:       "Relic Rush",
		Difficulty: "medium",
		StartRoom:  "Space Room",
		Rooms: map[string]models.RoomDefinition{
			"Space Room":        {Exits: map[string]string{"South": "Reality Room", "East": "Avengers Campus"}, Item: relic("Blue Stone")},
			"Avengers Campus":   {Exits: map[string]string{"South": "Power Room", "East": "Mind Room", "West": "Space Room"}},
			"Mind Room":         {Exits: map[string]string{"South": "Time Room", "West": "Avengers Campus"}, Item: relic("Yellow Stone")},
			"Reality Room":      {Exits: map[string]string{"North": "Space Room", "South": "Soul Room", "East": "Power Room"}, Item: relic("Red Stone")},
			"Power Room":        {Exits: map[string]string{"North": "Avengers Campus", "East": "Time Room", "West": "Reality Room"}, Item: relic("Purple Stone")},
			"Time Room":         {Exits: map[string]string{"North": "Mind Room", "South": "Avengers Compound", "West": "Power Room"}, Item: relic("Green Stone")},
			"Soul Room":         {Exits: map[string]string{"North": "Reality Room"}, Item: relic("Orange Stone")},
			"Avengers Compound": {Exits: map[string]string{"North": "Time Room"}, Item: &models.ItemDefinition{Type: "villain", Name: "Villain"}},
		},
		Coords: map[string][]int{
			"Space Room": {1, 0}, "Avengers Campus": {2, 0}, "Mind Room": {3, 0},
			"Reality Room": {1, 1}, "Power Room": {2, 1}, "Time Room": {3, 1},
			"Soul Room": {1, 2}, "Avengers Compound": {3, 2},
		},
		Rules: &models.RulesDefinition{RequiredItems: []string{
			"Blue Stone", "Yellow Stone", "Red Stone", "Purple Stone", "Green Stone", "Orange Stone",
		}},
	}
}

// replay plays path from the start room the way the engine does and
// returns the final state.
func replay(t *testing.T, l *Level, path []string) *models.GameState {
	t.Helper()
	state := models.NewGameState(l.StartRoom(), time.Now())
	start, _ := l.Map().Room(l.StartRoom())
	start.Enter(state)
	for i, dir := range path {
		if state.Status.Terminal() {
			t.Fatalf("game ended after %d of %d moves", i, len(path))
		}
		next, ok := l.Map().Move(state.Player.Location, dir)
		if !ok {
			t.Fatalf("move %d: no exit %s from %s", i, dir, state.Player.Location)
		}
		state.Player.Location = next
		state.MoveCount++
		state.Visit(next)
		room, _ := l.Map().Room(next)
		room.Enter(state)
		l.Rules().Check(state, room)
	}
	return state
}

func TestNewBuildsSolvableLevel(t *testing.T) {
	l, err := New(relicRushDefinition())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := l.OptimalMoves(); got != 8 {
		t.Fatalf("OptimalMoves() = %d, want 8", got)
	}
	path := l.OptimalPath()
	if len(path) != l.OptimalMoves() {
		t.Fatalf("len(OptimalPath()) = %d, want %d", len(path), l.OptimalMoves())
	}
	state := replay(t, l, path)
	if state.Status != models.StatusCompleted {
		t.Fatalf("replaying %v ended with %q, want completed", path, state.Status)
	}
	if l.Difficulty() != Medium {
		t.Fatalf("Difficulty() = %q", l.Difficulty())
	}
	if len(l.RequiredItems()) != 6 {
		t.Fatalf("RequiredItems() = %v", l.RequiredItems())
	}
}

func TestNewTwoRoomLevel(t *testing.T) {
	l, err := New(twoRoomDefinition("easy"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if l.OptimalMoves() != 1 {
		t.Fatalf("OptimalMoves() = %d, want 1", l.OptimalMoves())
	}
	if path := l.OptimalPath(); len(path) != 1 || path[0] != "East" {
		t.Fatalf("OptimalPath() = %v, want [East]", path)
	}
	if l.Version() != 1 {
		t.Fatalf("Version() = %d, want 1 when unset", l.Version())
	}

	def := twoRoomDefinition("easy")
	def.Version = 3
	if l, err = New(def); err != nil || l.Version() != 3 {
		t.Fatalf("New(version 3) = %v, %v", l, err)
	}
}

func TestNewValidationOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.LevelDefinition)
		want   string
	}{
		{
			name:   "missing name",
			mutate: func(d *models.LevelDefinition) { d.Name = "" },
			want:   "missing required keys",
		},
		{
			name:   "missing rules",
			mutate: func(d *models.LevelDefinition) { d.Rules = nil },
			want:   "missing required keys",
		},
		{
			name: "missing keys win over unknown start room",
			mutate: func(d *models.LevelDefinition) {
				d.Coords = nil
				d.StartRoom = "Nowhere"
			},
			want: "missing required keys",
		},
		{
			name:   "unknown start room",
			mutate: func(d *models.LevelDefinition) { d.StartRoom = "Nowhere" },
			want:   "start room",
		},
		{
			name: "dangling exit",
			mutate: func(d *models.LevelDefinition) {
				d.Rooms["End"] = models.RoomDefinition{
					Exits: map[string]string{"North": "Attic"},
					Item:  d.Rooms["End"].Item,
				}
			},
			want: "invalid exit",
		},
		{
			name: "dangling exit wins over missing coordinates",
			mutate: func(d *models.LevelDefinition) {
				d.Rooms["End"] = models.RoomDefinition{
					Exits: map[string]string{"North": "Attic"},
					Item:  d.Rooms["End"].Item,
				}
				delete(d.Coords, "Start")
			},
			want: "invalid exit",
		},
		{
			name:   "missing coordinates",
			mutate: func(d *models.LevelDefinition) { delete(d.Coords, "End") },
			want:   "missing coordinates",
		},
		{
			name: "no villain",
			mutate: func(d *models.LevelDefinition) {
				d.Rooms["End"] = models.RoomDefinition{Exits: map[string]string{"West": "Start"}}
			},
			want: "exactly one villain",
		},
		{
			name: "two villains",
			mutate: func(d *models.LevelDefinition) {
				d.Rooms["Start"] = models.RoomDefinition{
					Exits: map[string]string{"East": "End"},
					Item:  &models.ItemDefinition{Type: "villain", Name: "Henchman"},
				}
			},
			want: "exactly one villain",
		},
		{
			name:   "unknown difficulty",
			mutate: func(d *models.LevelDefinition) { d.Difficulty = "nightmare" },
			want:   "unknown difficulty",
		},
		{
			name: "unknown item type",
			mutate: func(d *models.LevelDefinition) {
				d.Rooms["Start"] = models.RoomDefinition{
					Exits: map[string]string{"East": "End"},
					Item:  &models.ItemDefinition{Type: "potion", Name: "X"},
				}
			},
			want: "unknown item type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := twoRoomDefinition("medium")
			tt.mutate(&def)
			l, err := New(def)
			if err == nil {
				t.Fatalf("New() = %v, want error", l)
			}
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Fatalf("New() error code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeValidation)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("New() error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestNewRejectsUnsolvableLevels(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.LevelDefinition)
	}{
		{
			name: "villain unreachable",
			mutate: func(d *models.LevelDefinition) {
				d.Rooms["Start"] = models.RoomDefinition{Item: d.Rooms["Start"].Item}
			},
		},
		{
			name: "required item does not exist",
			mutate: func(d *models.LevelDefinition) {
				d.Rules.RequiredItems = append(d.Rules.RequiredItems, "Ghost Stone")
			},
		},
		{
			name: "required item only reachable through the villain",
			mutate: func(d *models.LevelDefinition) {
				d.Rooms["Start"] = models.RoomDefinition{Exits: map[string]string{"East": "End"}}
				d.Rooms["End"] = models.RoomDefinition{
					Exits: map[string]string{"West": "Start", "East": "Vault"},
					Item:  d.Rooms["End"].Item,
				}
				d.Rooms["Vault"] = models.RoomDefinition{
					Exits: map[string]string{"West": "End"},
					Item:  &models.ItemDefinition{Type: "relic", Name: "X"},
				}
				d.Coords["Vault"] = []int{2, 0}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := twoRoomDefinition("hard")
			def.Rules = &models.RulesDefinition{RequiredItems: []string{"X"}}
			tt.mutate(&def)
			l, err := New(def)
			if err == nil {
				t.Fatalf("New() = level with %d optimal moves, want error", l.OptimalMoves())
			}
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Fatalf("New() error code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeValidation)
			}
			if !strings.Contains(err.Error(), "not solvable") {
				t.Fatalf("New() error = %q, want unsolvable", err)
			}
		})
	}
}

func TestSolveNeedsAtLeastOneMove(t *testing.T) {
	// The villain sits in the start room: the player must leave and come
	// back before the rules are ever evaluated.
	def := models.LevelDefinition{
		ID: "lair", Name: "Lair", Difficulty: "easy", StartRoom: "Lair",
		Rooms: map[string]models.RoomDefinition{
			"Lair": {Exits: map[string]string{"Out": "Hall"}, Item: &models.ItemDefinition{Type: "villain", Name: "Boss"}},
			"Hall": {Exits: map[string]string{"In": "Lair"}},
		},
		Coords: map[string][]int{"Lair": {0, 0}, "Hall": {0, 1}},
		Rules:  &models.RulesDefinition{},
	}
	l, err := New(def)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if l.OptimalMoves() != 2 {
		t.Fatalf("OptimalMoves() = %d, want 2", l.OptimalMoves())
	}
	if got := strings.Join(l.OptimalPath(), ","); got != "Out,In" {
		t.Fatalf("OptimalPath() = %s, want Out,In", got)
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	first, err := New(relicRushDefinition())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := New(relicRushDefinition())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if strings.Join(again.OptimalPath(), ",") != strings.Join(first.OptimalPath(), ",") {
			t.Fatalf("OptimalPath() changed between builds: %v vs %v", again.OptimalPath(), first.OptimalPath())
		}
	}
}
