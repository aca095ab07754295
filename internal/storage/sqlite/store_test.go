package sqlite

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "saves", "relic.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("Open() error = nil, want missing path error")
	}
}

func TestOpenIsRepeatable(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "relic.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("Open() pass %d error = %v", i, err)
		}
		store.Close()
	}
}

func TestSessionUpsertGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	started := time.Date(2026, 1, 25, 10, 30, 0, 0, time.UTC)

	state := models.NewGameState("Space Room", started)
	state.CollectedItems.Put("Blue Stone")
	state.Player.Inventory.Put("Blue Stone")
	state.Log("Started Relic Rush")
	state.Log("Collected Blue Stone")
	session := models.ActiveSession{UserID: "tony@example.com", LevelID: "level_1", State: state, CreatedAt: started, UpdatedAt: started}
	if err := store.Upsert(ctx, session); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	state.Player.Location = "Reality Room"
	state.MoveCount = 1
	session.UpdatedAt = started.Add(time.Minute)
	if err := store.Upsert(ctx, session); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	got, err := store.Get(ctx, "tony@example.com")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil")
	}
	if got.State.Player.Location != "Reality Room" || got.State.MoveCount != 1 {
		t.Fatalf("state = %+v, want the second write", got.State)
	}
	if !got.CreatedAt.Equal(started) || !got.UpdatedAt.Equal(started.Add(time.Minute)) {
		t.Fatalf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}
	if !slices.Equal(got.State.EventLog, state.EventLog) || !slices.Equal(got.State.Inventory(), []string{"Blue Stone"}) {
		t.Fatalf("restored state = %+v", got.State)
	}

	if err := store.Delete(ctx, "tony@example.com"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, err := store.Get(ctx, "tony@example.com"); err != nil || got != nil {
		t.Fatalf("Get() after delete = %+v, %v", got, err)
	}
}

func TestCorruptSessionIsInvalidState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	if _, err := store.sqlDB.ExecContext(ctx,
		`INSERT INTO active_sessions (user_id, level_id, state_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		"tony@example.com", "level_1", "{not json", 0, 0,
	); err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	got, err := store.Get(ctx, "tony@example.com")
	if !apperrors.HasCode(err, apperrors.CodeInvalidState) {
		t.Fatalf("Get() error = %v, want %s", err, apperrors.CodeInvalidState)
	}
	if got != nil {
		t.Fatalf("Get() = %+v, want nil", got)
	}
}

func TestHistoryOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	runs := []models.CompletedRun{
		{ID: "b", UserID: "u", LevelID: "l", Status: models.StatusCompleted, Score: 2000, Moves: 10, FinishedAt: base.Add(time.Minute)},
		{ID: "a", UserID: "u", LevelID: "l", Status: models.StatusCompleted, Score: 2000, Moves: 10, FinishedAt: base.Add(time.Minute)},
		{ID: "c", UserID: "v", LevelID: "l", Status: models.StatusCompleted, Score: 2500, Moves: 8, FinishedAt: base.Add(2 * time.Minute)},
		{ID: "d", UserID: "u", LevelID: "l", Status: models.StatusGameOver, Score: 83, Moves: 3, FinishedAt: base.Add(3 * time.Minute),
			Snapshot: models.RunSnapshot{FinalRoom: "Avengers Compound", Inventory: []string{"Red Stone"}, EncounteredVillain: true, OptimalMoves: 8}},
	}
	for _, run := range runs {
		if err := store.Add(ctx, run); err != nil {
			t.Fatalf("Add(%s) error = %v", run.ID, err)
		}
	}

	top, err := store.TopScores(ctx, "l", 3)
	if err != nil {
		t.Fatalf("TopScores() error = %v", err)
	}
	var ids []string
	for _, run := range top {
		ids = append(ids, run.ID)
	}
	if !slices.Equal(ids, []string{"c", "a", "b"}) {
		t.Fatalf("TopScores() = %v", ids)
	}
	if all, _ := store.TopScores(ctx, "l", 0); len(all) != 4 {
		t.Fatalf("TopScores(no limit) returned %d runs", len(all))
	}

	mine, err := store.ByUser(ctx, "u")
	if err != nil {
		t.Fatalf("ByUser() error = %v", err)
	}
	if len(mine) != 3 || mine[0].ID != "d" {
		t.Fatalf("ByUser() = %+v", mine)
	}
	snap := mine[0].Snapshot
	if mine[0].Status != models.StatusGameOver || snap.FinalRoom != "Avengers Compound" || !snap.EncounteredVillain || snap.OptimalMoves != 8 {
		t.Fatalf("run = %+v", mine[0])
	}

	if err := store.Add(ctx, runs[0]); err == nil {
		t.Fatal("Add() accepted a duplicate run id")
	}
}

func TestAccounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	created := time.Date(2026, 1, 25, 8, 0, 0, 0, time.UTC)
	account := models.Account{Email: "tony@example.com", DisplayName: "Tony", PasswordHash: "hash", CreatedAt: created}

	if err := store.Create(ctx, account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, account); !apperrors.HasCode(err, apperrors.CodeAccountExists) {
		t.Fatalf("second Create() error = %v", err)
	}
	got, err := store.GetByEmail(ctx, "tony@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetByEmail() = %+v, %v", got, err)
	}
	if got.DisplayName != "Tony" || got.PasswordHash != "hash" || !got.CreatedAt.Equal(created) {
		t.Fatalf("account = %+v", got)
	}
	if got, err := store.GetByEmail(ctx, "nobody@example.com"); err != nil || got != nil {
		t.Fatalf("GetByEmail(unknown) = %+v, %v", got, err)
	}
}
