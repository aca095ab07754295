// Command relic-rush is a self-contained demo: in-memory stores, the
// built-in levels and a seeded account (test@example.com / password).
package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/tatianab/relic-rush/internal/app"
	"github.com/tatianab/relic-rush/internal/config"
	"github.com/tatianab/relic-rush/internal/tui"
)

const (
	demoEmail    = "test@example.com"
	demoPassword = "password"
)

func main() {
	log.SetPrefix("[RELIC] ")

	cfg := config.Config{Store: config.StoreMemory, LeaderboardSize: 10}
	a, err := app.New(cfg, log.New(io.Discard, "", 0))
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.Close()

	if _, err := a.Accounts.SignUp(context.Background(), "Tester", demoEmail, demoPassword); err != nil {
		log.Fatalf("seed demo account: %v", err)
	}

	if err := tui.Run(a.Engine, a.Accounts, cfg.LeaderboardSize); err != nil {
		log.Printf("run TUI: %v", err)
		os.Exit(1)
	}
}
