package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/relic-rush/internal/engine"
	"github.com/tatianab/relic-rush/internal/models"
)

const cellWidth = 12

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	cellStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5F87"))

	currentCellStyle = cellStyle.
				BorderForeground(lipgloss.Color("#FFA500")).
				Bold(true)

	villainCellStyle = cellStyle.
				BorderForeground(lipgloss.Color("#D7005F"))

	emptyCellStyle = lipgloss.NewStyle().
			Width(cellWidth + 2).
			Height(3)

	winStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true)
	loseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7005F")).Bold(true)
)

func logWidth(total int) int {
	return int(float64(total) * 0.6)
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateEmail:
		s = fmt.Sprintf("%s\n\n%s\n\n%s",
			titleStyle.Render("RELIC RUSH"),
			"Log in or sign up with your email:",
			m.textInput.View(),
		)

	case statePassword:
		s = fmt.Sprintf("Password for %s:\n\n%s", m.email, m.textInput.View())

	case stateDisplayName:
		s = fmt.Sprintf("Display name:\n\n%s", m.textInput.View())

	case stateLoading:
		s = "\n  Loading...\n"

	case stateResume:
		s = fmt.Sprintf("You have an unfinished run on %s (%d moves). Resume it?\n\n%s",
			m.resume.LevelID, m.resume.State.MoveCount, m.textInput.View())

	case stateSelectLevel:
		s = renderLevels(m.levels) + "\n\n" + m.textInput.View()

	case statePlaying:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)
		help := helpStyle.Render("Commands: directions, pickup, /restart, /abandon, /scores, /history, /quit")
		s = lipgloss.JoinVertical(lipgloss.Left,
			renderMap(m.view),
			mainView,
			"\n"+m.textInput.View(),
			"\n"+help,
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	if m.notice != "" && m.state != statePlaying {
		s = helpStyle.Render(m.notice) + "\n\n" + s
	}
	return "\n" + s + "\n"
}

func (m model) renderState() string {
	if m.game == nil {
		return ""
	}
	v := m.view

	status := string(v.Status)
	switch v.Status {
	case models.StatusCompleted:
		status = winStyle.Render("COMPLETED")
	case models.StatusGameOver:
		status = loseStyle.Render("GAME OVER")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(v.LevelName) + "\n")
	fmt.Fprintf(&b, "%s difficulty\n\n", v.Difficulty)
	b.WriteString(titleStyle.Render("LOCATION") + "\n" + v.Location + "\n")
	if len(v.Exits) > 0 {
		fmt.Fprintf(&b, "Exits: %s\n", strings.Join(v.Exits, ", "))
	}
	b.WriteString("\n" + titleStyle.Render("STATUS") + "\n")
	fmt.Fprintf(&b, "%s\nMoves: %d\nRelics: %d/%d\n\n", status, v.MoveCount, v.Collected, v.Required)

	b.WriteString(titleStyle.Render("INVENTORY") + "\n")
	if len(v.Inventory) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, item := range v.Inventory {
		b.WriteString("- " + item + "\n")
	}

	b.WriteString("\n" + titleStyle.Render("EVENTS") + "\n")
	for _, event := range v.Events {
		b.WriteString(event + "\n")
	}

	width := max(m.width-logWidth(m.width)-4, 20)
	return stateStyle.Width(width).Height(m.viewport.Height).Render(b.String())
}

// renderMap draws the visible rooms on their coordinate grid. Hidden rooms
// and empty coordinates are blank cells.
func renderMap(v engine.LevelView) string {
	if len(v.Rooms) == 0 {
		return ""
	}
	maxX, maxY := 0, 0
	byCoord := make(map[[2]int]engine.RoomView, len(v.Rooms))
	for _, room := range v.Rooms {
		byCoord[[2]int{room.X, room.Y}] = room
		maxX = max(maxX, room.X)
		maxY = max(maxY, room.Y)
	}

	rows := make([]string, 0, maxY+1)
	for y := 0; y <= maxY; y++ {
		cells := make([]string, 0, maxX+1)
		for x := 0; x <= maxX; x++ {
			room, ok := byCoord[[2]int{x, y}]
			if !ok {
				cells = append(cells, emptyCellStyle.Render(""))
				continue
			}
			cells = append(cells, renderCell(room))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCell(room engine.RoomView) string {
	label := truncate(room.Name, cellWidth)
	detail := ""
	switch {
	case room.Current:
		detail = "@"
	case room.Item != "":
		detail = truncate(room.Item, cellWidth)
	case room.Visited:
		detail = "."
	}
	style := cellStyle
	switch {
	case room.Current:
		style = currentCellStyle
	case room.Villain:
		style = villainCellStyle
	}
	return style.Render(label + "\n" + detail)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func renderLevels(levels []engine.LevelSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("CHOOSE A LEVEL") + "\n\n")
	if len(levels) == 0 {
		b.WriteString("(no playable levels)\n")
	}
	for i, l := range levels {
		fmt.Fprintf(&b, "%d. %s [%s] %d rooms, %d relics, best %d moves\n",
			i+1, l.Name, l.Difficulty, l.Rooms, l.Relics, l.OptimalMoves)
	}
	return b.String()
}

func renderRuns(title string, runs []models.CompletedRun, ranked bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")
	if len(runs) == 0 {
		b.WriteString("(no finished runs yet)")
		return b.String()
	}
	for i, run := range runs {
		outcome := "lost"
		if run.Won() {
			outcome = "won"
		}
		line := fmt.Sprintf("%s %-4s %5d pts  %3d moves  %s",
			run.FinishedAt.Format("2006-01-02 15:04"), outcome, run.Score, run.Moves, run.LevelID)
		if ranked {
			line = fmt.Sprintf("%2d. %5d pts  %3d moves  %-4s %s",
				i+1, run.Score, run.Moves, outcome, run.UserID)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
