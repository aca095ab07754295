// Package memory provides in-process stores for levels, sessions, history
// and accounts. They back the demo binary and the engine tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/models"
)

// Levels is a read-only level source over a fixed set of definitions.
type Levels struct {
	defs []models.LevelDefinition
}

// NewLevels returns a level source. Later definitions with a duplicate id
// shadow earlier ones.
func NewLevels(defs ...models.LevelDefinition) *Levels {
	return &Levels{defs: slices.Clone(defs)}
}

func (l *Levels) Get(ctx context.Context, levelID string) (models.LevelDefinition, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.LevelDefinition{}, false, err
	}
	for i := len(l.defs) - 1; i >= 0; i-- {
		if l.defs[i].ID == levelID {
			return l.defs[i], true, nil
		}
	}
	return models.LevelDefinition{}, false, nil
}

func (l *Levels) List(ctx context.Context) ([]models.LevelDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(l.defs), nil
}

// Sessions keeps one active session per user.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]models.ActiveSession
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]models.ActiveSession)}
}

// Upsert stores a copy of session, replacing the user's previous one.
func (s *Sessions) Upsert(ctx context.Context, session models.ActiveSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session.UserID == "" || session.State == nil {
		return apperrors.New(apperrors.CodeInvalidState, "session needs a user id and a state")
	}
	session.State = session.State.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = session
	return nil
}

// Get returns a copy of the user's session, or nil.
func (s *Sessions) Get(ctx context.Context, userID string) (*models.ActiveSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	session.State = session.State.Clone()
	return &session, nil
}

func (s *Sessions) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// History is an append-only list of completed runs.
type History struct {
	mu   sync.Mutex
	runs []models.CompletedRun
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Add(ctx context.Context, run models.CompletedRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	run.Snapshot.Inventory = slices.Clone(run.Snapshot.Inventory)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = append(h.runs, run)
	return nil
}

// ByUser returns the user's runs, newest first.
func (h *History) ByUser(ctx context.Context, userID string) ([]models.CompletedRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	var out []models.CompletedRun
	for _, run := range h.runs {
		if run.UserID == userID {
			out = append(out, run)
		}
	}
	h.mu.Unlock()

	slices.SortStableFunc(out, func(a, b models.CompletedRun) int {
		return cmp.Or(b.FinishedAt.Compare(a.FinishedAt), cmp.Compare(b.ID, a.ID))
	})
	return out, nil
}

// TopScores returns up to limit runs on levelID: highest score first, then
// earliest finish, then id.
func (h *History) TopScores(ctx context.Context, levelID string, limit int) ([]models.CompletedRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	var out []models.CompletedRun
	for _, run := range h.runs {
		if run.LevelID == levelID {
			out = append(out, run)
		}
	}
	h.mu.Unlock()

	slices.SortFunc(out, func(a, b models.CompletedRun) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			a.FinishedAt.Compare(b.FinishedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Accounts stores accounts by email.
type Accounts struct {
	mu       sync.Mutex
	accounts map[string]models.Account
}

func NewAccounts() *Accounts {
	return &Accounts{accounts: make(map[string]models.Account)}
}

// Create inserts account. An existing email fails with
// apperrors.CodeAccountExists.
func (a *Accounts) Create(ctx context.Context, account models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.accounts[account.Email]; ok {
		return apperrors.New(apperrors.CodeAccountExists, "That email already exists.")
	}
	a.accounts[account.Email] = account
	return nil
}

// GetByEmail returns the account or nil.
func (a *Accounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	account, ok := a.accounts[email]
	if !ok {
		return nil, nil
	}
	return &account, nil
}
