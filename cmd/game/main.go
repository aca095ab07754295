package main

import (
	"context"
	"log"
	"os"

	"github.com/tatianab/relic-rush/internal/app"
	"github.com/tatianab/relic-rush/internal/config"
	"github.com/tatianab/relic-rush/internal/tui"
)

func main() {
	log.SetPrefix("[RELIC] ")
	log.SetFlags(log.LstdFlags)

	cfg, err := config.Load("game", os.Args[1:], os.Stderr)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// The TUI owns the terminal; engine logs go to a file next to the saves.
	logger, closeLog, err := openLog(cfg.SaveDir)
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer closeLog()

	a, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.Close()

	if _, err := a.Warm(context.Background()); err != nil {
		log.Fatalf("load levels: %v", err)
	}

	if err := tui.Run(a.Engine, a.Accounts, cfg.LeaderboardSize); err != nil {
		log.Fatalf("run TUI: %v", err)
	}
}
