// Package filestore persists sessions, history and accounts as YAML files
// under a save directory, and reads level definitions from a directory.
//
// Layout:
//
//	<dir>/sessions/<hash>.yaml   one active session per user
//	<dir>/history/<run id>.yaml  one file per completed run
//	<dir>/accounts/<hash>.yaml   one file per account
//
// Files keyed by user are named by the SHA-256 of the lower-cased key so
// that emails never reach the file system.
package filestore

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/levels"
	"github.com/tatianab/relic-rush/internal/models"
)

const (
	sessionsDir = "sessions"
	historyDir  = "history"
	accountsDir = "accounts"
)

// Store is a YAML file store rooted at a save directory.
type Store struct {
	dir string
}

// Open prepares the directory layout under dir.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("save directory is required")
	}
	dir = filepath.Clean(dir)
	for _, sub := range []string{sessionsDir, historyDir, accountsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", sub, err)
		}
	}
	return &Store{dir: dir}, nil
}

func keyFile(key string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(key)))
	return hex.EncodeToString(sum[:]) + ".yaml"
}

func (s *Store) sessionPath(userID string) string {
	return filepath.Join(s.dir, sessionsDir, keyFile(userID))
}

func (s *Store) accountPath(email string) string {
	return filepath.Join(s.dir, accountsDir, keyFile(email))
}

// Upsert atomically replaces the user's session file.
func (s *Store) Upsert(ctx context.Context, session models.ActiveSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session.UserID == "" || session.State == nil {
		return apperrors.New(apperrors.CodeInvalidState, "session needs a user id and a state")
	}
	return writeYAML(filepath.Join(s.dir, sessionsDir), s.sessionPath(session.UserID), session)
}

// Get returns the user's session, or nil when there is none.
func (s *Store) Get(ctx context.Context, userID string) (*models.ActiveSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var session models.ActiveSession
	found, err := readYAML(s.sessionPath(userID), &session)
	if err != nil || !found {
		return nil, err
	}
	if session.State == nil {
		return nil, apperrors.New(apperrors.CodeInvalidState, "session file has no state")
	}
	return &session, nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.sessionPath(userID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Add writes the run to its own file. Run ids are unique, so files are
// never overwritten.
func (s *Store) Add(ctx context.Context, run models.CompletedRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run.ID == "" || strings.ContainsAny(run.ID, `/\`) {
		return fmt.Errorf("invalid run id %q", run.ID)
	}
	dir := filepath.Join(s.dir, historyDir)
	return writeYAML(dir, filepath.Join(dir, run.ID+".yaml"), run)
}

// ByUser returns the user's runs, newest first.
func (s *Store) ByUser(ctx context.Context, userID string) ([]models.CompletedRun, error) {
	runs, err := s.runs(ctx, func(run models.CompletedRun) bool { return run.UserID == userID })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(runs, func(a, b models.CompletedRun) int {
		return cmp.Or(b.FinishedAt.Compare(a.FinishedAt), cmp.Compare(b.ID, a.ID))
	})
	return runs, nil
}

// TopScores returns up to limit runs on levelID ordered by score, then
// earliest finish, then id.
func (s *Store) TopScores(ctx context.Context, levelID string, limit int) ([]models.CompletedRun, error) {
	runs, err := s.runs(ctx, func(run models.CompletedRun) bool { return run.LevelID == levelID })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(runs, func(a, b models.CompletedRun) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			a.FinishedAt.Compare(b.FinishedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *Store) runs(ctx context.Context, keep func(models.CompletedRun) bool) ([]models.CompletedRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.dir, historyDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read history directory: %w", err)
	}
	var out []models.CompletedRun
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		var run models.CompletedRun
		if _, err := readYAML(filepath.Join(dir, entry.Name()), &run); err != nil {
			return nil, err
		}
		if keep(run) {
			out = append(out, run)
		}
	}
	return out, nil
}

// Create writes a new account file. The file is created exclusively, so a
// taken email fails with apperrors.CodeAccountExists.
func (s *Store) Create(ctx context.Context, account models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := yaml.Marshal(account)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	f, err := os.OpenFile(s.accountPath(account.Email), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return apperrors.New(apperrors.CodeAccountExists, "That email already exists.")
		}
		return fmt.Errorf("create account file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("write account file: %w", err)
	}
	return f.Close()
}

// GetByEmail returns the account, or nil.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var account models.Account
	found, err := readYAML(s.accountPath(email), &account)
	if err != nil || !found {
		return nil, err
	}
	return &account, nil
}

// Levels reads YAML level definitions from a directory.
type Levels struct {
	dir string
}

func NewLevels(dir string) *Levels {
	return &Levels{dir: dir}
}

func (l *Levels) List(ctx context.Context) ([]models.LevelDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return levels.Load(os.DirFS(l.dir))
}

func (l *Levels) Get(ctx context.Context, levelID string) (models.LevelDefinition, bool, error) {
	defs, err := l.List(ctx)
	if err != nil {
		return models.LevelDefinition{}, false, err
	}
	for _, def := range defs {
		if def.ID == levelID {
			return def, true, nil
		}
	}
	return models.LevelDefinition{}, false, nil
}

// writeYAML replaces path through a temp file in dir and a rename.
func writeYAML(dir, path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(dir, "save-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readYAML(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return false, apperrors.Wrap(apperrors.CodeInvalidState, "decode "+filepath.Base(path), err)
	}
	return true, nil
}
