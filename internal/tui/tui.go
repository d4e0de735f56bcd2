package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/unobot/internal/server"
)

// logLines is how many recent log entries stay visible under the message
const logLines = 6

// TUIModel is the Bubble Tea model for one channel. The session message is
// replaced wholesale on every render, the same way a chat client edits it.
type TUIModel struct {
	logger  *log.Logger
	channel string

	// UI components
	messageViewport viewport.Model
	actionInput     textinput.Model

	// State
	render      *server.RenderData
	hand        []server.CardData
	gameLog     []string
	submit      func(Command) error
	quitting    bool
	focusedPane int // 0 = message, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode      bool
	capturedLog   []string
	submitted     []Command
	eventCallback func(eventType string)
}

// RenderMsg replaces the session message
type RenderMsg server.RenderData

// NoticeMsg is a private message for this participant
type NoticeMsg struct {
	Text  string
	Error bool
}

// HandMsg carries this participant's cards
type HandMsg []server.CardData

// ClosedMsg reports that the channel's session ended
type ClosedMsg server.SessionClosedData

// DisconnectedMsg reports the server connection dropped
type DisconnectedMsg struct{}

// NewTUIModel creates a model showing channel
func NewTUIModel(logger *log.Logger, channel string) *TUIModel {
	return NewTUIModelWithOptions(logger, channel, false)
}

// NewTUIModelWithOptions creates a model with test mode option. In test mode
// log entries and submitted commands are captured for assertions.
func NewTUIModelWithOptions(logger *log.Logger, channel string, testMode bool) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Type 'new' to start a game, or 'help'"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		logger:          logger.WithPrefix("tui").With("channel", channel),
		channel:         channel,
		messageViewport: vp,
		actionInput:     ti,
		focusedPane:     1,
		testMode:        testMode,
	}
}

// SetSubmitter sets where parsed commands are sent
func (m *TUIModel) SetSubmitter(submit func(Command) error) {
	m.submit = submit
}

// SetEventCallback registers a hook fired after each inbound message is applied
func (m *TUIModel) SetEventCallback(callback func(eventType string)) {
	m.eventCallback = callback
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case RenderMsg:
		if msg.Channel == m.channel {
			data := server.RenderData(msg)
			m.render = &data
			m.refreshMessage()
		}
		m.notify("render")

	case NoticeMsg:
		if msg.Error {
			m.AddLogEntry(ErrorStyle.Render(msg.Text))
		} else {
			m.AddLogEntry(WarningStyle.Render(msg.Text))
		}
		m.notify("notice")

	case HandMsg:
		m.hand = msg
		m.AddLogEntry("Your cards: " + formatCards(msg))
		m.notify("hand")

	case ClosedMsg:
		if msg.Channel == m.channel {
			m.hand = nil
			m.AddLogEntry(InfoStyle.Render(msg.Message))
		}
		m.notify("closed")

	case DisconnectedMsg:
		m.AddLogEntry(ErrorStyle.Render("Disconnected from server"))
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := m.actionInput.Value()
				m.actionInput.SetValue("")
				if quit := m.processInput(line); quit {
					m.quitting = true
					return m, tea.Quit
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.messageViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.messageViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.messageViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.messageViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.messageViewport, cmd = m.messageViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// processInput handles one submitted line and reports whether to quit
func (m *TUIModel) processInput(line string) bool {
	cmd, err := ParseCommand(line)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return false
	}

	switch {
	case cmd.Quit:
		return true
	case cmd.Help:
		for _, l := range strings.Split(helpText, "\n") {
			m.AddLogEntry(InfoStyle.Render(l))
		}
		return false
	}

	if m.testMode {
		m.submitted = append(m.submitted, cmd)
	}
	if m.submit == nil {
		return false
	}
	if err := m.submit(cmd); err != nil {
		m.logger.Warn("Failed to send command", "error", err)
		m.AddLogEntry(ErrorStyle.Render("Failed to send: " + err.Error()))
	}
	return false
}

func (m *TUIModel) notify(eventType string) {
	if m.eventCallback != nil {
		m.eventCallback(eventType)
	}
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Width(m.width).Render(m.headerText())

	logPane := lipgloss.NewStyle().
		Width(m.width).
		Render(m.renderLog())

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(max(m.width-2, 1))
	if m.focusedPane == 1 {
		inputStyle = inputStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	inputPane := inputStyle.Render(m.actionInput.View() + "\n" + m.helpLine())

	used := lipgloss.Height(header) + lipgloss.Height(logPane) + lipgloss.Height(inputPane)
	m.messageViewport.Width = max(m.width-2, 1)
	m.messageViewport.Height = max(m.height-used-2, 1)
	if !m.initialized && m.messageViewport.Height > 1 {
		m.refreshMessage()
		m.messageViewport.GotoTop()
		m.initialized = true
	}

	messageStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(m.messageViewport.Width).
		Height(m.messageViewport.Height)
	if m.focusedPane == 0 {
		messageStyle = messageStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	messagePane := messageStyle.Render(m.messageViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, messagePane, logPane, inputPane)
}

func (m *TUIModel) headerText() string {
	title := fmt.Sprintf(" UNO · #%s", m.channel)
	if m.render != nil {
		title += " · " + m.render.Stage
	}
	return title
}

func (m *TUIModel) helpLine() string {
	hint := "Tab to scroll message • Enter to send • Ctrl+C to quit"
	if m.focusedPane == 0 {
		hint = "Message focused: ↑↓ scroll, Home/End, Tab to input"
	}
	return InfoStyle.Render(hint)
}

func (m *TUIModel) refreshMessage() {
	if m.testMode {
		return
	}
	m.messageViewport.SetContent(m.SessionMessage())
}

// SessionMessage renders the current session message and its controls
func (m *TUIModel) SessionMessage() string {
	if m.render == nil {
		return InfoStyle.Render("No game running in #" + m.channel + ". Type 'new' to start one.")
	}

	var b strings.Builder
	b.WriteString(MessageStyle.Render(m.render.Content))

	var buttons []string
	for _, a := range m.render.Affordances {
		switch a.Control {
		case "select":
			b.WriteString("\n\n")
			b.WriteString(renderSelect(a))
		default:
			label := "[" + a.Label + "]"
			buttons = append(buttons, affordanceStyle(a.Style, a.Disabled).Render(label))
		}
	}
	if len(buttons) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(buttons, " "))
	}
	return b.String()
}

func renderSelect(a server.AffordanceData) string {
	lines := []string{ActionsStyle.Render(a.Placeholder + " (rules a,b):")}
	for _, o := range a.Options {
		mark := "[ ]"
		if o.Selected {
			mark = "[x]"
		}
		line := fmt.Sprintf("  %s %s (%s)", mark, o.Label, o.Value)
		if o.Description != "" {
			line += InfoStyle.Render(" " + o.Description)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *TUIModel) renderLog() string {
	start := max(len(m.gameLog)-logLines, 0)
	lines := make([]string, logLines)
	copy(lines, m.gameLog[start:])
	return strings.Join(lines, "\n")
}

func formatCards(cards []server.CardData) string {
	if len(cards) == 0 {
		return "none"
	}

	formatted := make([]string, len(cards))
	for i, c := range cards {
		style, ok := cardStyles[c.Color]
		if !ok {
			style = MessageStyle
		}
		formatted[i] = style.Render(c.Label)
	}
	return strings.Join(formatted, " ")
}

// AddLogEntry adds an entry under the session message
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
	}
}

// IsTestMode returns whether the model was created in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}

// GetCapturedLog returns captured log entries, nil outside test mode
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	return m.capturedLog
}

// GetSubmitted returns the commands submitted in test mode
func (m *TUIModel) GetSubmitted() []Command {
	return m.submitted
}

// Hand returns the last cards received
func (m *TUIModel) Hand() []server.CardData {
	return m.hand
}
