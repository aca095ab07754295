package tui

import "strings"

type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdMove
	cmdPickup
	cmdRestart
	cmdAbandon
	cmdLevels
	cmdScores
	cmdHistory
	cmdHelp
	cmdQuit
)

type command struct {
	kind commandKind
	arg  string
}

const helpText = `Type a direction (North, South, East, West or the first letter) to move.
pickup      try to pick something up
/restart    start this level again
/abandon    drop this run and pick another level
/levels     back to level select, keeping this run
/scores     leaderboard for this level
/history    your finished runs
/quit       leave the game`

var slashCommands = map[string]commandKind{
	"/restart": cmdRestart,
	"/abandon": cmdAbandon,
	"/levels":  cmdLevels,
	"/scores":  cmdScores,
	"/history": cmdHistory,
	"/help":    cmdHelp,
	"/quit":    cmdQuit,
}

var shortDirections = map[string]string{
	"n": "North",
	"s": "South",
	"e": "East",
	"w": "West",
}

// parseCommand maps a line of player input to a command. Anything that is
// not a known command is treated as a direction; the engine decides whether
// it is a real exit.
func parseCommand(input string) command {
	input = strings.TrimSpace(input)
	lower := strings.ToLower(input)
	if kind, ok := slashCommands[lower]; ok {
		return command{kind: kind}
	}
	if strings.HasPrefix(lower, "/") {
		return command{kind: cmdUnknown}
	}
	switch lower {
	case "":
		return command{kind: cmdUnknown}
	case "pickup", "pick up", "get", "take":
		return command{kind: cmdPickup}
	}
	if strings.HasPrefix(lower, "go ") {
		input = strings.TrimSpace(input[3:])
		lower = strings.ToLower(input)
	}
	if dir, ok := shortDirections[lower]; ok {
		return command{kind: cmdMove, arg: dir}
	}
	return command{kind: cmdMove, arg: input}
}
