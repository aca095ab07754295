// Package config loads runtime settings from the environment and flags.
package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	Store           string `env:"RELIC_STORE" envDefault:"sqlite"`
	DBPath          string `env:"RELIC_DB_PATH" envDefault:".saves/relic.db"`
	SaveDir         string `env:"RELIC_SAVE_DIR" envDefault:".saves"`
	LevelsDir       string `env:"RELIC_LEVELS_DIR"` // empty uses the built-in levels
	LeaderboardSize int    `env:"RELIC_LEADERBOARD_SIZE" envDefault:"10"`
	PasswordPepper  string `env:"RELIC_PASSWORD_PEPPER"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
}

// Load reads the environment, then lets command-line flags override it.
func Load(name string, args []string, stderr io.Writer) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cfg.Store, "store", cfg.Store, "storage backend: memory, file or sqlite")
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flags.StringVar(&cfg.SaveDir, "saves", cfg.SaveDir, "directory for the file store")
	flags.StringVar(&cfg.LevelsDir, "levels", cfg.LevelsDir, "directory of YAML level definitions")
	flags.IntVar(&cfg.LeaderboardSize, "leaderboard", cfg.LeaderboardSize, "number of leaderboard entries")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("leaderboard size must be positive, got %d", c.LeaderboardSize)
	}
	return nil
}
