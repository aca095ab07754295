package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tatianab/relic-rush/internal/app"
	"github.com/tatianab/relic-rush/internal/config"
	"github.com/tatianab/relic-rush/internal/engine"
	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/levels"
	"github.com/tatianab/relic-rush/internal/models"
)

const (
	maxTurns  = 40
	botEmail  = "bot@example.com"
	botSecret = "simulation"
)

// player picks the next direction for a run.
type player interface {
	Next(ctx context.Context, view engine.LevelView) string
}

func main() {
	log.SetPrefix("[RELIC] ")
	ctx := context.Background()

	levelID := levels.DefaultLevelID
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		levelID, args = args[0], args[1:]
	}
	cfg, err := config.Load("simulate", args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Store = config.StoreMemory

	a, err := app.New(cfg, log.Default())
	if err != nil {
		log.Fatalf("Failed to init: %v", err)
	}
	defer a.Close()

	account, err := a.Accounts.SignUp(ctx, "Bot", botEmail, botSecret)
	if err != nil {
		log.Fatalf("Failed to create bot account: %v", err)
	}
	lvl, err := a.Engine.Level(ctx, levelID)
	if err != nil {
		log.Fatalf("Failed to load level %s: %v", levelID, err)
	}

	var p player = &scriptedPlayer{path: lvl.OptimalPath()}
	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			log.Fatalf("Failed to create player client: %v", err)
		}
		defer client.Close()
		p = &geminiPlayer{model: client.GenerativeModel("gemini-2.5-flash")}
		fmt.Println("--- Player: Gemini ---")
	} else {
		fmt.Println("--- Player: optimal path (GEMINI_API_KEY not set) ---")
	}

	state, err := a.Engine.StartRun(ctx, account.Email, levelID)
	if err != nil {
		log.Fatalf("Failed to start run: %v", err)
	}
	fmt.Printf("Level: %s (%s), optimal %d moves\n\n", lvl.Name(), lvl.Difficulty(), lvl.OptimalMoves())

	for turn := 1; turn <= maxTurns && a.Engine.CanAct(state); turn++ {
		view, err := a.Engine.LevelView(ctx, levelID, state)
		if err != nil {
			log.Fatalf("Failed to project state: %v", err)
		}
		dir := p.Next(ctx, view)
		fmt.Printf("--- Turn %d: %s -> %s ---\n", turn, view.Location, dir)

		state, err = a.Engine.Move(ctx, account.Email, levelID, state, dir)
		if err != nil && !apperrors.Recoverable(err) {
			log.Fatalf("Move failed: %v", err)
		}
		fmt.Printf("%s\nRelics: %v\n\n", state.Message, state.Collected())
	}

	switch state.Status {
	case models.StatusCompleted:
		fmt.Println("Game Ended: Player Won!")
	case models.StatusGameOver:
		fmt.Println("Game Ended: Player Lost!")
	default:
		fmt.Printf("Stopped after %d turns without finishing.\n", maxTurns)
		return
	}
	runs, err := a.Engine.History(ctx, account.Email)
	if err == nil && len(runs) > 0 {
		fmt.Printf("Score: %d in %d moves (optimal %d)\n", runs[0].Score, runs[0].Moves, runs[0].Snapshot.OptimalMoves)
	}
}

type scriptedPlayer struct {
	path []string
	next int
}

func (s *scriptedPlayer) Next(_ context.Context, _ engine.LevelView) string {
	if s.next >= len(s.path) {
		return ""
	}
	dir := s.path[s.next]
	s.next++
	return dir
}

type geminiPlayer struct {
	model *genai.GenerativeModel
}

func (g *geminiPlayer) Next(ctx context.Context, view engine.LevelView) string {
	var rooms strings.Builder
	for _, room := range view.Rooms {
		fmt.Fprintf(&rooms, "- %s at (%d,%d), exits %v", room.Name, room.X, room.Y, room.Exits)
		if room.Item != "" {
			fmt.Fprintf(&rooms, ", holds %s", room.Item)
		}
		rooms.WriteString("\n")
	}

	prompt := fmt.Sprintf(`You are playing a room-graph collection game.
Collect every relic (%d of %d collected so far), then enter the villain's room.
Entering the villain's room without every relic loses the game.

Known rooms:
%s
Current room: %s
Exits: %v
Inventory: %v
Recent events:
%s

Which exit do you take? Return ONLY the direction.`,
		view.Collected, view.Required,
		rooms.String(),
		view.Location,
		view.Exits,
		view.Inventory,
		strings.Join(view.Events, "\n"),
	)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if len(view.Exits) > 0 {
			return view.Exits[0]
		}
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
}
