package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/tictactoe-client/internal/game"
	"github.com/lox/tictactoe-client/internal/protocol"
)

// Layout rows. The board starts below the header and a blank line; the
// status and restart rows follow the board after another blank line.
const (
	boardTop    = 2
	statusRow   = boardTop + 3*cellHeight + 1
	restartRow  = statusRow + 1
	eventLines  = 5
	maxEvents   = 200
	minWidth    = 3 * cellWidth
	restartText = "Restart (r)"
)

// TUIModel is the Bubble Tea model for one game session. All session state
// changes happen in Update.
type TUIModel struct {
	controller *game.Controller
	channel    Channel
	logger     *log.Logger

	// UI components
	keys   KeyMap
	help   help.Model
	events viewport.Model

	eventLog []string
	cursor   int
	quitting bool

	// Dimensions
	width  int
	height int
}

// NewTUIModel creates a model that plays over channel.
func NewTUIModel(channel Channel, logger *log.Logger) *TUIModel {
	vp := viewport.New(minWidth, eventLines)
	vp.SetContent("")

	return &TUIModel{
		controller: game.NewController(channel, logger),
		channel:    channel,
		logger:     logger.WithPrefix("tui"),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		events:     vp,
		eventLog:   []string{},
		cursor:     4,
	}
}

// Init starts reading from the channel
func (m *TUIModel) Init() tea.Cmd {
	return waitForFrame(m.channel)
}

// State returns the mirrored session state.
func (m *TUIModel) State() game.State {
	return m.controller.State()
}

// Events returns a copy of the event log.
func (m *TUIModel) Events() []string {
	out := make([]string, len(m.eventLog))
	copy(out, m.eventLog)
	return out
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case FrameMsg:
		inbound, err := m.controller.HandleFrame(msg)
		if err != nil {
			m.AddEvent(WarningStyle.Render("Ignored frame: " + err.Error()))
		} else {
			m.AddEvent(describeInbound(inbound, m.controller.State()))
		}
		cmd = waitForFrame(m.channel)

	case DisconnectedMsg:
		m.controller.HandleDisconnect(msg.Err)
		m.AddEvent(ErrorStyle.Render("Disconnected from server"))

	case tea.WindowSizeMsg:
		m.logger.Debug("Updating dimensions", "width", msg.Width, "height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.events.Width = max(msg.Width, minWidth)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cell):
			m.activateCell(int(msg.String()[0] - '1'))
		case key.Matches(msg, m.keys.Select):
			m.activateCell(m.cursor)
		case key.Matches(msg, m.keys.Restart):
			m.activateRestart()
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-3)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(3)
		case key.Matches(msg, m.keys.Left):
			if m.cursor%3 > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Right):
			if m.cursor%3 < 2 {
				m.cursor++
			}
		case msg.String() == "?":
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			m.handleClick(msg.X, msg.Y)
		}
	}

	// The restart key only works while its control is on screen.
	m.keys.Restart.SetEnabled(m.State().RestartVisible)
	return m, cmd
}

func (m *TUIModel) moveCursor(delta int) {
	if next := m.cursor + delta; next >= 0 && next < protocol.BoardSize {
		m.cursor = next
	}
}

// handleClick maps a left click to a cell or the restart control.
func (m *TUIModel) handleClick(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	if y >= boardTop && y < boardTop+3*cellHeight && x < minWidth {
		row := (y - boardTop) / cellHeight
		col := x / cellWidth
		m.activateCell(row*3 + col)
		return
	}

	if y == restartRow && m.State().RestartVisible && x < lipgloss.Width(RestartStyle.Render(restartText)) {
		m.activateRestart()
	}
}

func (m *TUIModel) activateCell(index int) {
	if index >= 0 && index < protocol.BoardSize {
		m.cursor = index
	}

	err := m.controller.HandleCell(index)
	switch {
	case err == nil:
		m.AddEvent(fmt.Sprintf("Sent move %d", index+1))
	case errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrCellOccupied), errors.Is(err, game.ErrInvalidCell):
		// Filtered locally; nothing was sent.
	default:
		m.AddEvent(ErrorStyle.Render("Move not sent: " + err.Error()))
	}
}

func (m *TUIModel) activateRestart() {
	if err := m.controller.HandleRestart(); err != nil {
		m.AddEvent(ErrorStyle.Render("Restart not sent: " + err.Error()))
		return
	}
	m.AddEvent("Sent restart")
}

func describeInbound(msg protocol.Inbound, s game.State) string {
	switch msg := msg.(type) {
	case protocol.Start:
		return fmt.Sprintf("Playing as %s", msg.Symbol)
	case protocol.Update:
		return "Board updated"
	case protocol.End:
		return fmt.Sprintf("Game ended (%s)", s.Outcome)
	case protocol.Full:
		return WarningStyle.Render("Server has no free seat")
	default:
		return string(msg.Kind())
	}
}

// AddEvent appends an entry to the event log and scrolls to it.
func (m *TUIModel) AddEvent(entry string) {
	m.eventLog = append(m.eventLog, entry)
	if len(m.eventLog) > maxEvents {
		m.eventLog = m.eventLog[len(m.eventLog)-maxEvents:]
	}

	m.events.SetContent(strings.Join(m.eventLog, "\n"))
	m.events.GotoBottom()
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	s := m.State()
	var b strings.Builder

	b.WriteString(m.renderHeader(s))
	b.WriteString("\n\n")
	b.WriteString(m.renderBoard(s.Board))
	b.WriteString("\n\n")
	b.WriteString(renderStatus(s))
	b.WriteString("\n")
	if s.RestartVisible {
		b.WriteString(RestartStyle.Render(restartText))
	}
	b.WriteString("\n\n")
	b.WriteString(m.events.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m *TUIModel) renderHeader(s game.State) string {
	header := HeaderStyle.Render("Tic-Tac-Toe")
	if s.Symbol != protocol.Empty {
		header += " " + InfoStyle.Render("You are ") + renderSymbol(s.Symbol)
	}
	return header
}

// renderBoard draws all nine cells from scratch.
func (m *TUIModel) renderBoard(board protocol.Board) string {
	rows := make([]string, 0, 3)
	for r := 0; r < 3; r++ {
		cells := make([]string, 0, 3)
		for c := 0; c < 3; c++ {
			i := r*3 + c
			style := CellStyle
			if i == m.cursor {
				style = FocusedCellStyle
			}
			cells = append(cells, style.Render(renderSymbol(board[i])))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderSymbol(s protocol.Symbol) string {
	switch s {
	case protocol.X:
		return XStyle.Render(string(s))
	case protocol.O:
		return OStyle.Render(string(s))
	default:
		return ""
	}
}

func renderStatus(s game.State) string {
	status := s.Status()
	switch s.Phase {
	case game.PhasePlaying:
		if s.MyTurn {
			return SuccessStyle.Render(status)
		}
		return InfoStyle.Render(status)
	case game.PhaseEnded:
		switch s.Outcome {
		case game.OutcomeWin:
			return SuccessStyle.Render(status)
		case game.OutcomeLoss:
			return ErrorStyle.Render(status)
		default:
			return WarningStyle.Render(status)
		}
	case game.PhaseFull, game.PhaseDisconnected:
		return ErrorStyle.Render(status)
	default:
		return status
	}
}
