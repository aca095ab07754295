package levels

import (
	"testing"
	"testing/fstest"

	"github.com/tatianab/relic-rush/internal/level"
)

func TestBuiltinLevelsBuild(t *testing.T) {
	defs, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}

	want := map[string]int{
		"level_1":          8,
		"sunken_vault":     6,
		"training_grounds": 6,
	}
	if len(defs) != len(want) {
		t.Fatalf("Builtin() returned %d levels, want %d", len(defs), len(want))
	}
	for _, def := range defs {
		l, err := level.New(def)
		if err != nil {
			t.Fatalf("level.New(%s) error = %v", def.ID, err)
		}
		if got := l.OptimalMoves(); got != want[def.ID] {
			t.Errorf("%s: OptimalMoves() = %d, want %d", def.ID, got, want[def.ID])
		}
	}
}

func TestBuiltinIncludesDefault(t *testing.T) {
	defs, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	for _, def := range defs {
		if def.ID == DefaultLevelID {
			if def.Name != "Relic Rush" || def.StartRoom != "Space Room" {
				t.Fatalf("default level = %q starting in %q", def.Name, def.StartRoom)
			}
			return
		}
	}
	t.Fatalf("default level %q not found", DefaultLevelID)
}

func TestLoadSkipsNonYAMLAndSorts(t *testing.T) {
	fsys := fstest.MapFS{
		"b.yaml":     {Data: []byte("id: b\nname: B\n")},
		"a.yml":      {Data: []byte("id: a\nname: A\n")},
		"notes.txt":  {Data: []byte("not a level")},
		"sub/c.yaml": {Data: []byte("id: c\n")},
	}
	defs, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(defs) != 2 || defs[0].ID != "a" || defs[1].ID != "b" {
		t.Fatalf("Load() = %+v, want a then b", defs)
	}
}

func TestLoadReportsBadYAML(t *testing.T) {
	fsys := fstest.MapFS{"broken.yaml": {Data: []byte("id: [unterminated")}}
	if _, err := Load(fsys); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}
