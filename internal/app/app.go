// Package app wires configuration to stores, the engine and accounts.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/tatianab/relic-rush/internal/accounts"
	"github.com/tatianab/relic-rush/internal/config"
	"github.com/tatianab/relic-rush/internal/engine"
	"github.com/tatianab/relic-rush/internal/levels"
	"github.com/tatianab/relic-rush/internal/storage/filestore"
	"github.com/tatianab/relic-rush/internal/storage/memory"
	"github.com/tatianab/relic-rush/internal/storage/sqlite"
)

// App holds the wired services for one process.
type App struct {
	Engine   *engine.Engine
	Accounts *accounts.Service

	closers []func() error
}

// New builds the services selected by cfg.
func New(cfg config.Config, logger *log.Logger) (*App, error) {
	levelSource, err := newLevelSource(cfg)
	if err != nil {
		return nil, err
	}

	var (
		sessions engine.SessionStore
		history  engine.HistoryStore
		users    accounts.Store
		a        = &App{}
	)
	switch cfg.Store {
	case config.StoreMemory:
		sessions, history, users = memory.NewSessions(), memory.NewHistory(), memory.NewAccounts()
	case config.StoreFile:
		store, err := filestore.Open(cfg.SaveDir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		sessions, history, users = store, store, store
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		sessions, history, users = store, store, store
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	a.Engine = engine.NewEngine(levelSource, sessions, history, engine.WithLogger(logger))
	a.Accounts = accounts.NewService(users, accounts.WithPepper(cfg.PasswordPepper))
	logger.Printf("using %s store", cfg.Store)
	return a, nil
}

func newLevelSource(cfg config.Config) (engine.LevelSource, error) {
	if cfg.LevelsDir != "" {
		return filestore.NewLevels(cfg.LevelsDir), nil
	}
	defs, err := levels.Builtin()
	if err != nil {
		return nil, fmt.Errorf("load built-in levels: %w", err)
	}
	return memory.NewLevels(defs...), nil
}

// Warm builds every level once so that broken definitions are reported at
// startup instead of on first play.
func (a *App) Warm(ctx context.Context) (int, error) {
	summaries, err := a.Engine.Levels(ctx)
	if err != nil {
		return 0, err
	}
	if len(summaries) == 0 {
		return 0, errors.New("no playable levels")
	}
	return len(summaries), nil
}

// Close releases store handles.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}
