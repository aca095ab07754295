// Package sqlite provides the SQLite-backed session, history and account
// stores.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/models"
	"github.com/tatianab/relic-rush/internal/storage/sqlite/migrations"
	"github.com/tatianab/relic-rush/internal/storage/sqlitemigrate"
)

// Store persists game data in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path, creating its directory, and applies the
// embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Upsert writes the user's session in a single statement, replacing any
// previous one.
func (s *Store) Upsert(ctx context.Context, session models.ActiveSession) error {
	if session.UserID == "" || session.State == nil {
		return apperrors.New(apperrors.CodeInvalidState, "session needs a user id and a state")
	}
	stateJSON, err := json.Marshal(session.State)
	if err != nil {
		return fmt.Errorf("encode game state: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO active_sessions (user_id, level_id, state_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   level_id = excluded.level_id,
		   state_json = excluded.state_json,
		   created_at = excluded.created_at,
		   updated_at = excluded.updated_at`,
		session.UserID,
		session.LevelID,
		string(stateJSON),
		toMillis(session.CreatedAt),
		toMillis(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert active session: %w", err)
	}
	return nil
}

// Get returns the user's session, or nil.
func (s *Store) Get(ctx context.Context, userID string) (*models.ActiveSession, error) {
	var (
		session            models.ActiveSession
		stateJSON          string
		createdAt, updated int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT user_id, level_id, state_json, created_at, updated_at
		 FROM active_sessions WHERE user_id = ?`,
		userID,
	).Scan(&session.UserID, &session.LevelID, &stateJSON, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	var state models.GameState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidState, "decode game state", err)
	}
	session.State = &state
	session.CreatedAt = fromMillis(createdAt)
	session.UpdatedAt = fromMillis(updated)
	return &session, nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM active_sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete active session: %w", err)
	}
	return nil
}

func (s *Store) Add(ctx context.Context, run models.CompletedRun) error {
	snapshotJSON, err := json.Marshal(run.Snapshot)
	if err != nil {
		return fmt.Errorf("encode run snapshot: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO completed_runs (
		   id, user_id, level_id, status, score, moves, items_collected, finished_at, snapshot_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.UserID,
		run.LevelID,
		string(run.Status),
		run.Score,
		run.Moves,
		run.ItemsCollected,
		toMillis(run.FinishedAt),
		string(snapshotJSON),
	)
	if err != nil {
		return fmt.Errorf("insert completed run: %w", err)
	}
	return nil
}

const runColumns = `id, user_id, level_id, status, score, moves, items_collected, finished_at, snapshot_json`

// ByUser returns the user's runs, newest first.
func (s *Store) ByUser(ctx context.Context, userID string) ([]models.CompletedRun, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+runColumns+` FROM completed_runs
		 WHERE user_id = ?
		 ORDER BY finished_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs by user: %w", err)
	}
	return scanRuns(rows)
}

// TopScores returns up to limit runs on levelID ordered by score, then
// earliest finish, then id.
func (s *Store) TopScores(ctx context.Context, levelID string, limit int) ([]models.CompletedRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+runColumns+` FROM completed_runs
		 WHERE level_id = ?
		 ORDER BY score DESC, finished_at ASC, id ASC
		 LIMIT ?`,
		levelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list top scores: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]models.CompletedRun, error) {
	defer rows.Close()
	var out []models.CompletedRun
	for rows.Next() {
		var (
			run          models.CompletedRun
			status       string
			finishedAt   int64
			snapshotJSON string
		)
		if err := rows.Scan(
			&run.ID,
			&run.UserID,
			&run.LevelID,
			&status,
			&run.Score,
			&run.Moves,
			&run.ItemsCollected,
			&finishedAt,
			&snapshotJSON,
		); err != nil {
			return nil, fmt.Errorf("scan completed run: %w", err)
		}
		run.Status = models.Status(status)
		run.FinishedAt = fromMillis(finishedAt)
		if err := json.Unmarshal([]byte(snapshotJSON), &run.Snapshot); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInvalidState, "decode run snapshot "+run.ID, err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed runs: %w", err)
	}
	return out, nil
}

// Create inserts an account; a taken email fails with
// apperrors.CodeAccountExists.
func (s *Store) Create(ctx context.Context, account models.Account) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO accounts (email, display_name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		toMillis(account.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.CodeAccountExists, "That email already exists.")
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetByEmail returns the account, or nil.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var (
		account   models.Account
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT email, display_name, password_hash, created_at FROM accounts WHERE email = ?`,
		email,
	).Scan(&account.Email, &account.DisplayName, &account.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	account.CreatedAt = fromMillis(createdAt)
	return &account, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
