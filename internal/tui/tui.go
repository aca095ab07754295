package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tatianab/relic-rush/internal/accounts"
	"github.com/tatianab/relic-rush/internal/engine"
	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/models"
)

type sessionState int

const (
	stateEmail sessionState = iota
	statePassword
	stateDisplayName
	stateLoading
	stateResume
	stateSelectLevel
	statePlaying
	stateError
)

type model struct {
	state    sessionState
	engine   *engine.Engine
	accounts *accounts.Service
	boardLen int

	email    string
	password string
	account  *models.Account

	levels  []engine.LevelSummary
	levelID string
	game    *models.GameState
	view    engine.LevelView
	resume  *models.ActiveSession
	notice  string
	busy    bool // a gameplay action is in flight

	textInput textinput.Model
	viewport  viewport.Model
	gameLog   string
	err       error
	width     int
	height    int
}

// NewModel builds the root model. leaderboardSize bounds /scores output.
func NewModel(eng *engine.Engine, svc *accounts.Service, leaderboardSize int) model {
	ti := textinput.New()
	ti.Placeholder = "you@example.com"
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 40

	return model{
		state:     stateEmail,
		engine:    eng,
		accounts:  svc,
		boardLen:  leaderboardSize,
		textInput: ti,
		viewport:  viewport.New(80, 20),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type loggedInMsg struct {
	account *models.Account
}

type authFailedMsg struct {
	err error
}

type activeRunMsg struct {
	session *models.ActiveSession
}

type levelsMsg struct {
	levels []engine.LevelSummary
}

// gameMsg carries the result of a gameplay action.
type gameMsg struct {
	levelID string
	state   *models.GameState
	view    engine.LevelView
	notice  string
}

type textMsg struct {
	text string
}

// staleRunMsg reports an action sent for a run that no longer exists.
type staleRunMsg struct {
	text string
}

type errMsg struct {
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()
			return m.submit(input)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = logWidth(msg.Width)
		m.viewport.Height = max(msg.Height-8, 5)
		m.viewport.SetContent(m.gameLog)

	case loggedInMsg:
		m.account = msg.account
		m.password = ""
		m.notice = fmt.Sprintf("Welcome, %s.", msg.account.DisplayName)
		m.state = stateLoading
		return m, m.checkActiveRun()

	case authFailedMsg:
		m.notice = msg.err.Error()
		switch apperrors.CodeOf(msg.err) {
		case apperrors.CodeAccountNotFound:
			m.notice = "No account for that email. Choose a display name to sign up."
			m.state = stateDisplayName
			m.textInput.Placeholder = "display name"
		case apperrors.CodeAccountWrongPassword:
			m.state = statePassword
			m.textInput.Placeholder = "password"
		default:
			m.state = stateEmail
			m.textInput.Placeholder = "you@example.com"
		}
		m.textInput.EchoMode = textinput.EchoNormal
		if m.state == statePassword {
			m.textInput.EchoMode = textinput.EchoPassword
		}
		return m, nil

	case activeRunMsg:
		if msg.session == nil {
			m.state = stateLoading
			return m, m.loadLevels()
		}
		m.resume = msg.session
		m.state = stateResume
		m.textInput.Placeholder = "y/n"
		return m, nil

	case levelsMsg:
		m.levels = msg.levels
		m.state = stateSelectLevel
		m.textInput.Placeholder = "level number or id"
		return m, nil

	case gameMsg:
		m.busy = false
		if m.state != statePlaying {
			m.gameLog = ""
		}
		m.state = statePlaying
		m.levelID = msg.levelID
		m.game = msg.state
		m.view = msg.view
		m.notice = msg.notice
		m.textInput.Placeholder = "North, South, East, West, pickup or /help"
		if msg.state.Message != "" {
			m.appendLog(gameStyle.Width(m.viewport.Width).Render(msg.state.Message))
		}
		if !m.engine.CanAct(msg.state) {
			m.appendLog(helpStyle.Render("The run is over. /restart, /levels, /scores or /quit."))
		}
		return m, nil

	case textMsg:
		m.appendLog(msg.text)
		return m, nil

	case staleRunMsg:
		m.busy = false
		m.appendLog(helpStyle.Render(msg.text))
		return m, nil

	case errMsg:
		m.busy = false
		m.err = msg.err
		m.state = stateError
		return m, nil
	}

	if m.state != stateLoading && m.state != stateError {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) submit(input string) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateEmail:
		if input == "" {
			return m, nil
		}
		m.email = input
		m.state = statePassword
		m.textInput.Placeholder = "password"
		m.textInput.EchoMode = textinput.EchoPassword
		return m, nil

	case statePassword:
		m.password = input
		m.textInput.EchoMode = textinput.EchoNormal
		m.state = stateLoading
		return m, m.logIn(m.email, input)

	case stateDisplayName:
		m.state = stateLoading
		return m, m.signUp(input, m.email, m.password)

	case stateResume:
		m.state = stateLoading
		if strings.HasPrefix(strings.ToLower(input), "y") {
			session := m.resume
			return m, m.showState(session.LevelID, session.State, "Welcome back.")
		}
		return m, m.abandonThenList()

	case stateSelectLevel:
		levelID, ok := m.pickLevel(input)
		if !ok {
			m.notice = fmt.Sprintf("No level %q.", input)
			return m, nil
		}
		m.state = stateLoading
		return m, m.startRun(levelID)

	case statePlaying:
		if input == "" || m.busy {
			return m, nil
		}
		m.appendLog(userStyle.Width(m.viewport.Width).Render("> " + input))
		return m.play(parseCommand(input))
	}
	return m, nil
}

func (m model) play(c command) (tea.Model, tea.Cmd) {
	switch c.kind {
	case cmdQuit:
		return m, tea.Quit
	case cmdHelp:
		m.appendLog(helpStyle.Render(helpText))
		return m, nil
	case cmdScores:
		return m, m.leaderboard(m.levelID)
	case cmdHistory:
		return m, m.history()
	case cmdLevels:
		m.state = stateLoading
		return m, m.loadLevels()
	case cmdAbandon:
		m.state = stateLoading
		return m, m.abandonThenList()
	case cmdRestart:
		m.busy = true
		return m, m.restartRun(m.levelID)
	case cmdPickup:
		m.busy = true
		return m, m.pickup()
	case cmdMove:
		m.busy = true
		return m, m.move(c.arg)
	}
	m.appendLog(helpStyle.Render("Unknown command. Type /help."))
	return m, nil
}

func (m *model) appendLog(line string) {
	if m.gameLog != "" {
		m.gameLog += "\n"
	}
	m.gameLog += line
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m model) pickLevel(input string) (string, bool) {
	if input == "" && len(m.levels) > 0 {
		return m.levels[0].ID, true
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(m.levels) {
		return m.levels[n-1].ID, true
	}
	for _, l := range m.levels {
		if strings.EqualFold(l.ID, input) || strings.EqualFold(l.Name, input) {
			return l.ID, true
		}
	}
	return "", false
}

func (m model) userID() string {
	return m.account.Email
}

func (m model) logIn(email, password string) tea.Cmd {
	return func() tea.Msg {
		account, err := m.accounts.LogIn(context.Background(), email, password)
		if err != nil {
			if apperrors.CodeOf(err) != apperrors.CodeUnknown {
				return authFailedMsg{err}
			}
			return errMsg{err}
		}
		return loggedInMsg{account}
	}
}

func (m model) signUp(displayName, email, password string) tea.Cmd {
	return func() tea.Msg {
		account, err := m.accounts.SignUp(context.Background(), displayName, email, password)
		if err != nil {
			if apperrors.CodeOf(err) != apperrors.CodeUnknown {
				return authFailedMsg{err}
			}
			return errMsg{err}
		}
		return loggedInMsg{account}
	}
}

func (m model) checkActiveRun() tea.Cmd {
	userID := m.userID()
	return func() tea.Msg {
		session, err := m.engine.RestoreRun(context.Background(), userID)
		if err != nil {
			return errMsg{err}
		}
		return activeRunMsg{session}
	}
}

func (m model) loadLevels() tea.Cmd {
	return func() tea.Msg {
		levels, err := m.engine.Levels(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return levelsMsg{levels}
	}
}

func (m model) abandonThenList() tea.Cmd {
	userID := m.userID()
	return func() tea.Msg {
		ctx := context.Background()
		if err := m.engine.AbandonRun(ctx, userID); err != nil {
			return errMsg{err}
		}
		levels, err := m.engine.Levels(ctx)
		if err != nil {
			return errMsg{err}
		}
		return levelsMsg{levels}
	}
}

func (m model) showState(levelID string, state *models.GameState, notice string) tea.Cmd {
	return func() tea.Msg {
		view, err := m.engine.LevelView(context.Background(), levelID, state)
		if err != nil {
			return errMsg{err}
		}
		return gameMsg{levelID: levelID, state: state, view: view, notice: notice}
	}
}

func (m model) startRun(levelID string) tea.Cmd {
	userID := m.userID()
	return func() tea.Msg {
		state, err := m.engine.StartRun(context.Background(), userID, levelID)
		if err != nil {
			return errMsg{err}
		}
		return m.showState(levelID, state, "")()
	}
}

func (m model) restartRun(levelID string) tea.Cmd {
	userID := m.userID()
	return func() tea.Msg {
		state, err := m.engine.RestartRun(context.Background(), userID, levelID)
		if err != nil {
			return errMsg{err}
		}
		return m.showState(levelID, state, "Restarted.")()
	}
}

// act runs a gameplay action. Recoverable errors keep the returned state.
func (m model) act(action func(ctx context.Context) (*models.GameState, error)) tea.Cmd {
	levelID := m.levelID
	return func() tea.Msg {
		state, err := action(context.Background())
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return staleRunMsg{"This run is no longer active. /restart or /levels to play again."}
		}
		if err != nil && !apperrors.Recoverable(err) {
			return errMsg{err}
		}
		return m.showState(levelID, state, "")()
	}
}

func (m model) move(direction string) tea.Cmd {
	userID, levelID, state := m.userID(), m.levelID, m.game
	return m.act(func(ctx context.Context) (*models.GameState, error) {
		return m.engine.Move(ctx, userID, levelID, state, direction)
	})
}

func (m model) pickup() tea.Cmd {
	userID, levelID, state := m.userID(), m.levelID, m.game
	return m.act(func(ctx context.Context) (*models.GameState, error) {
		return m.engine.Pickup(ctx, userID, levelID, state)
	})
}

func (m model) leaderboard(levelID string) tea.Cmd {
	limit := m.boardLen
	return func() tea.Msg {
		runs, err := m.engine.Leaderboard(context.Background(), levelID, limit)
		if err != nil {
			return errMsg{err}
		}
		return textMsg{renderRuns("LEADERBOARD", runs, true)}
	}
}

func (m model) history() tea.Cmd {
	userID := m.userID()
	return func() tea.Msg {
		runs, err := m.engine.History(context.Background(), userID)
		if err != nil {
			return errMsg{err}
		}
		return textMsg{renderRuns("YOUR RUNS", runs, false)}
	}
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(eng *engine.Engine, svc *accounts.Service, leaderboardSize int) error {
	p := tea.NewProgram(NewModel(eng, svc, leaderboardSize), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
