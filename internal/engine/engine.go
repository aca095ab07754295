// Package engine runs game sessions: it starts, restores and finalizes
// runs and applies player actions against immutable levels.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/cases"

	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/level"
	"github.com/tatianab/relic-rush/internal/models"
)

const (
	msgAlreadyEnded = "Game already ended."
	msgWallBump     = "You bumped into a wall."
	msgNothingHere  = "Nothing to pick up."

	// DefaultLeaderboardSize is used when a leaderboard query has no limit.
	DefaultLeaderboardSize = 10
)

// LevelSource supplies raw level definitions. It is read-only.
type LevelSource interface {
	Get(ctx context.Context, levelID string) (models.LevelDefinition, bool, error)
	List(ctx context.Context) ([]models.LevelDefinition, error)
}

// SessionStore keeps at most one active session per user. Upsert must
// overwrite by user id atomically.
type SessionStore interface {
	Upsert(ctx context.Context, session models.ActiveSession) error
	Get(ctx context.Context, userID string) (*models.ActiveSession, error)
	Delete(ctx context.Context, userID string) error
}

// HistoryStore is the append-only log of completed runs.
type HistoryStore interface {
	Add(ctx context.Context, run models.CompletedRun) error
	// ByUser returns a user's runs, newest first.
	ByUser(ctx context.Context, userID string) ([]models.CompletedRun, error)
	// TopScores returns a level's runs ordered by score, highest first.
	TopScores(ctx context.Context, levelID string, limit int) ([]models.CompletedRun, error)
}

// Engine is the game controller. It holds no per-session state: callers
// pass the current GameState in and receive the updated one back.
type Engine struct {
	levels   LevelSource
	sessions SessionStore
	history  HistoryStore

	logger *log.Logger
	now    func() time.Time
	newID  func() string

	mu    sync.RWMutex
	cache map[string]*level.Level
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator overrides how completed-run ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

func NewEngine(levels LevelSource, sessions SessionStore, history HistoryStore, opts ...Option) *Engine {
	e := &Engine{
		levels:   levels,
		sessions: sessions,
		history:  history,
		logger:   log.Default(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return ulid.Make().String() },
		cache:    make(map[string]*level.Level),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Level returns the built level for levelID, building and caching it on
// first use. Unknown ids fail with apperrors.CodeNotFound.
func (e *Engine) Level(ctx context.Context, levelID string) (*level.Level, error) {
	e.mu.RLock()
	lvl, ok := e.cache[levelID]
	e.mu.RUnlock()
	if ok {
		return lvl, nil
	}

	def, found, err := e.levels.Get(ctx, levelID)
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", levelID, err)
	}
	if !found {
		return nil, apperrors.WithMetadata(apperrors.CodeNotFound,
			fmt.Sprintf("unknown level id: %s", levelID),
			map[string]string{"level_id": levelID})
	}
	lvl, err = level.New(def)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if cached, ok := e.cache[levelID]; ok {
		return cached, nil
	}
	e.cache[levelID] = lvl
	return lvl, nil
}

// HasActiveRun reports whether the user has a resumable run.
func (e *Engine) HasActiveRun(ctx context.Context, userID string) (bool, error) {
	session, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get active session: %w", err)
	}
	return session != nil, nil
}

// RestoreRun returns the user's active run, or nil when there is none.
func (e *Engine) RestoreRun(ctx context.Context, userID string) (*models.ActiveSession, error) {
	session, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

// StartRun begins a new run on levelID, overwriting any active run. The
// start room's item takes effect immediately.
func (e *Engine) StartRun(ctx context.Context, userID, levelID string) (*models.GameState, error) {
	lvl, err := e.Level(ctx, levelID)
	if err != nil {
		return nil, err
	}
	return e.start(ctx, userID, lvl)
}

func (e *Engine) start(ctx context.Context, userID string, lvl *level.Level) (*models.GameState, error) {
	state := models.NewGameState(lvl.StartRoom(), e.now())
	state.Log(fmt.Sprintf("Started %s", lvl.Name()))
	if room, ok := lvl.Map().Room(lvl.StartRoom()); ok {
		room.Enter(state)
	}
	state.Message = fmt.Sprintf("Started %s", lvl.Name())

	if err := e.save(ctx, userID, lvl.ID(), state); err != nil {
		return nil, err
	}
	e.logger.Printf("run started: user=%s level=%s", userID, lvl.ID())
	return state, nil
}

// RestartRun discards the active run and starts a fresh one.
func (e *Engine) RestartRun(ctx context.Context, userID, levelID string) (*models.GameState, error) {
	lvl, err := e.Level(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete active session: %w", err)
	}
	return e.start(ctx, userID, lvl)
}

// AbandonRun deletes the active run. Abandoned runs leave no history.
func (e *Engine) AbandonRun(ctx context.Context, userID string) error {
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete active session: %w", err)
	}
	e.logger.Printf("run abandoned: user=%s", userID)
	return nil
}

// Move applies a movement action to the user's active run and returns the
// updated state. The stored session is the source of truth; state is the
// caller's last known copy and is only used to refuse actions on a run the
// caller has already seen end. It is never modified. A wall bump or an
// action on a finished run returns the updated state together with a
// recoverable error (apperrors.CodeInvalidAction, apperrors.CodeTerminalState).
// Without an active run on levelID the move fails with apperrors.CodeNotFound.
func (e *Engine) Move(ctx context.Context, userID, levelID string, state *models.GameState, direction string) (*models.GameState, error) {
	lvl, next, err := e.prepare(ctx, userID, levelID, state)
	if err != nil {
		return next, err
	}

	from := next.Player.Location
	dir := resolveDirection(lvl, from, direction)
	dest, ok := lvl.Map().Move(from, dir)
	if !ok {
		next.Message = msgWallBump
		next.Log("Bumped into a wall")
		next.Touch(e.now())
		if err := e.save(ctx, userID, levelID, next); err != nil {
			return nil, err
		}
		return next, apperrors.WithMetadata(apperrors.CodeInvalidAction,
			fmt.Sprintf("no exit %q from %s", direction, from),
			map[string]string{"room": from, "direction": direction})
	}

	next.Player.Location = dest
	next.MoveCount++
	next.Visit(dest)
	moved := fmt.Sprintf("Moved %s to %s", dir, dest)
	next.Message = moved
	next.Log(moved)

	room, _ := lvl.Map().Room(dest)
	room.Enter(next)
	lvl.Rules().Check(next, room)
	next.Touch(e.now())

	if err := e.persistOrFinalize(ctx, userID, lvl, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Pickup is an explicit pickup action. Relics are collected on entry, so
// there is never anything left to pick up; the action is still persisted.
func (e *Engine) Pickup(ctx context.Context, userID, levelID string, state *models.GameState) (*models.GameState, error) {
	_, next, err := e.prepare(ctx, userID, levelID, state)
	if err != nil {
		return next, err
	}

	next.Message = msgNothingHere
	next.Log("Nothing to pick up")
	next.Touch(e.now())
	if err := e.save(ctx, userID, levelID, next); err != nil {
		return nil, err
	}
	return next, apperrors.New(apperrors.CodeInvalidAction, "nothing to pick up")
}

// CanAct reports whether gameplay actions should be enabled.
func (e *Engine) CanAct(state *models.GameState) bool {
	return state != nil && !state.Status.Terminal()
}

// AvailableExits lists the directions leading out of the current room.
func (e *Engine) AvailableExits(ctx context.Context, levelID string, state *models.GameState) ([]string, error) {
	lvl, err := e.Level(ctx, levelID)
	if err != nil {
		return nil, err
	}
	room, ok := lvl.Map().Room(state.Player.Location)
	if !ok {
		return nil, invalidLocation(levelID, state.Player.Location)
	}
	return room.Directions(), nil
}

// Leaderboard returns the best runs on a level.
func (e *Engine) Leaderboard(ctx context.Context, levelID string, limit int) ([]models.CompletedRun, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	runs, err := e.history.TopScores(ctx, levelID, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	return runs, nil
}

// History returns a user's completed runs, newest first.
func (e *Engine) History(ctx context.Context, userID string) ([]models.CompletedRun, error) {
	runs, err := e.history.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("history by user: %w", err)
	}
	return runs, nil
}

// prepare resolves the level and loads a private copy of the user's active
// run. When the caller's copy has already ended, it returns that copy with
// the "already ended" message and apperrors.CodeTerminalState.
func (e *Engine) prepare(ctx context.Context, userID, levelID string, state *models.GameState) (*level.Level, *models.GameState, error) {
	lvl, err := e.Level(ctx, levelID)
	if err != nil {
		return nil, nil, err
	}
	if state != nil && state.Player != nil && state.Status.Terminal() {
		ended := state.Clone()
		ended.Message = msgAlreadyEnded
		return nil, ended, apperrors.New(apperrors.CodeTerminalState, "run already ended")
	}

	session, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get active session: %w", err)
	}
	if session == nil {
		return nil, nil, apperrors.WithMetadata(apperrors.CodeNotFound,
			"no active run",
			map[string]string{"user_id": userID, "level_id": levelID})
	}
	if session.LevelID != levelID {
		return nil, nil, apperrors.WithMetadata(apperrors.CodeInvalidState,
			fmt.Sprintf("active run is on level %s, not %s", session.LevelID, levelID),
			map[string]string{"user_id": userID, "level_id": levelID, "active_level_id": session.LevelID})
	}
	if session.State == nil || session.State.Player == nil {
		return nil, nil, apperrors.New(apperrors.CodeInvalidState, "active run has no game state")
	}
	if !lvl.Map().Has(session.State.Player.Location) {
		return nil, nil, invalidLocation(levelID, session.State.Player.Location)
	}

	next := session.State.Clone()
	if next.Status.Terminal() {
		next.Message = msgAlreadyEnded
		return nil, next, apperrors.New(apperrors.CodeTerminalState, "run already ended")
	}
	return lvl, next, nil
}

// resolveDirection matches raw input against the room's exits, first
// exactly and then under Unicode case folding ("north" -> "North").
func resolveDirection(lvl *level.Level, roomName, raw string) string {
	raw = strings.TrimSpace(raw)
	room, ok := lvl.Map().Room(roomName)
	if !ok {
		return raw
	}
	if _, ok := room.Exit(raw); ok {
		return raw
	}
	fold := cases.Fold()
	want := fold.String(raw)
	for _, dir := range room.Directions() {
		if fold.String(dir) == want {
			return dir
		}
	}
	return raw
}

func (e *Engine) save(ctx context.Context, userID, levelID string, state *models.GameState) error {
	session := models.ActiveSession{
		UserID:    userID,
		LevelID:   levelID,
		State:     state,
		CreatedAt: state.StartedAt,
		UpdatedAt: state.UpdatedAt,
	}
	if err := e.sessions.Upsert(ctx, session); err != nil {
		return fmt.Errorf("save active session: %w", err)
	}
	return nil
}

// persistOrFinalize saves a running state, or scores a finished one,
// removes the active session and records the run in history. The session
// goes first: a failure in between loses the record but can never let the
// same run be finalized twice.
func (e *Engine) persistOrFinalize(ctx context.Context, userID string, lvl *level.Level, state *models.GameState) error {
	if !state.Status.Terminal() {
		return e.save(ctx, userID, lvl.ID(), state)
	}

	run := models.CompletedRun{
		ID:             e.newID(),
		UserID:         userID,
		LevelID:        lvl.ID(),
		Status:         state.Status,
		Score:          lvl.Score(state),
		Moves:          state.MoveCount,
		ItemsCollected: state.CollectedItems.Size(),
		FinishedAt:     e.now(),
		Snapshot: models.RunSnapshot{
			FinalRoom:          state.Player.Location,
			Inventory:          state.Inventory(),
			EncounteredVillain: state.EncounteredVillain,
			OptimalMoves:       lvl.OptimalMoves(),
			LevelVersion:       lvl.Version(),
		},
	}
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete active session: %w", err)
	}
	if err := e.history.Add(ctx, run); err != nil {
		return fmt.Errorf("record completed run: %w", err)
	}
	e.logger.Printf("run finished: user=%s level=%s status=%s score=%d moves=%d",
		userID, lvl.ID(), run.Status, run.Score, run.Moves)
	return nil
}

func invalidLocation(levelID, room string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidState,
		fmt.Sprintf("room %q is not part of level %s", room, levelID),
		map[string]string{"level_id": levelID, "room": room})
}
