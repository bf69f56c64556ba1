package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/mfollow/internal/config"
	"github.com/TimelordUK/mfollow/internal/follow"
	"github.com/TimelordUK/mfollow/pkg/logformat"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeOpen
	ModeGoto
)

const stateRefresh = 250 * time.Millisecond

// Controller is the part of the follow engine the UI drives
type Controller interface {
	Open(path string) error
	Stop() error
	Toggle() bool
	IsPaused() bool
	State() follow.State
}

type tickMsg time.Time

type openedMsg struct{ path string }

type openErrMsg struct {
	path string
	err  error
}

// Model is the main application model
type Model struct {
	ctrl  Controller
	pane  *Pane
	keys  keyMap
	help  help.Model
	input textinput.Model

	mode   Mode
	width  int
	height int

	state       follow.State
	initialPath string

	// err is the last open or goto error, fault the last background fault
	err   error
	fault error

	statusStyle lipgloss.Style
	pausedStyle lipgloss.Style
	faultStyle  lipgloss.Style
}

// NewModel creates a model that opens path, if set, once the program runs
func NewModel(cfg *config.Config, ctrl Controller, path string) *Model {
	ti := textinput.New()
	ti.CharLimit = 4096

	return &Model{
		ctrl:        ctrl,
		pane:        NewPane(cfg),
		keys:        newKeyMap(cfg.Keybindings),
		help:        help.New(),
		input:       ti,
		mode:        ModeNormal,
		initialPath: path,
		statusStyle: lipgloss.NewStyle().
			Background(lipgloss.Color(cfg.Theme.StatusBar)).
			Foreground(lipgloss.Color(cfg.Theme.StatusBarText)),
		pausedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Paused)).Bold(true),
		faultStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Fault)),
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.initialPath != "" {
		cmds = append(cmds, m.openCmd(m.initialPath))
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(stateRefresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// openCmd opens path off the event loop; Open delivers the initial window
// through the sink, which needs the loop running.
func (m *Model) openCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctrl.Open(path); err != nil {
			return openErrMsg{path: path, err: err}
		}
		return openedMsg{path: path}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// Reserve 2 lines for status bar and help
		m.pane.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case resetMsg:
		m.pane.Reset(msg.path)
		m.fault = nil
		return m, nil

	case appendMsg:
		m.pane.Append(msg.line)
		return m, nil

	case prependMsg:
		m.pane.Prepend(msg.lines)
		return m, nil

	case faultMsg:
		m.fault = msg.err
		return m, nil

	case openedMsg:
		m.err = nil
		m.state = m.ctrl.State()
		return m, nil

	case openErrMsg:
		m.err = msg.err
		return m, nil

	case tickMsg:
		m.state = m.ctrl.State()
		return m, tick()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle mode-specific input
	if m.mode != ModeNormal {
		return m.handlePromptKey(msg)
	}

	vp := m.pane.Viewport()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ScrollDown):
		vp.ScrollDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		vp.ScrollUp(1)
	case key.Matches(msg, m.keys.PageDown):
		vp.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		vp.PageUp()
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		vp.ClearHighlight()
		vp.GotoBottom()

	case key.Matches(msg, m.keys.Pause):
		m.ctrl.Toggle()
		m.state = m.ctrl.State()

	case key.Matches(msg, m.keys.LineNumbers):
		m.pane.ToggleLineNumbers()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Open):
		return m, m.prompt(ModeOpen, "Path to follow...", m.pane.Path())

	case key.Matches(msg, m.keys.Goto):
		return m, m.prompt(ModeGoto, "Line number or time...", "")
	}

	return m, nil
}

func (m *Model) prompt(mode Mode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return textinput.Blink
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.closePrompt()

		switch mode {
		case ModeOpen:
			if value != "" {
				return m, m.openCmd(value)
			}
		case ModeGoto:
			m.err = m.pane.Goto(value)
		}
		return m, nil

	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.mode = ModeNormal
	m.input.Blur()
	m.input.SetValue("")
}

// View implements tea.Model
func (m *Model) View() string {
	var builder strings.Builder

	builder.WriteString(m.pane.Render())
	builder.WriteString("\n")

	switch m.mode {
	case ModeOpen:
		builder.WriteString("open: " + m.input.View())
	case ModeGoto:
		builder.WriteString(":" + m.input.View())
	default:
		builder.WriteString(m.statusStyle.Width(m.width).Render(m.statusLine()))
	}
	builder.WriteString("\n")

	switch {
	case m.err != nil:
		builder.WriteString(m.faultStyle.Render("error: " + m.err.Error()))
	case m.fault != nil:
		builder.WriteString(m.faultStyle.Render("fault: " + m.fault.Error()))
	default:
		builder.WriteString(m.help.View(m.keys))
	}

	return builder.String()
}

func (m *Model) statusLine() string {
	if !m.state.Active {
		return " no file open  (press o to open)"
	}

	vp := m.pane.Viewport()
	mode := "FOLLOW"
	if !vp.Following() {
		mode = "SCROLL"
	}
	if m.state.Paused {
		mode = m.pausedStyle.Render("PAUSED")
	}

	parts := []string{
		" " + m.pane.Filename(),
		mode,
		fmt.Sprintf("L%d/%d", vp.CurrentLine()+1, m.pane.Buffer().LineCount()),
		fmt.Sprintf("%.0f%%", vp.PercentScrolled()),
		fmt.Sprintf("tail@%d", m.state.TailOffset),
		historyProgress(m.state),
	}
	if newest := m.pane.Newest(); !newest.IsZero() {
		parts = append(parts, "newest "+logformat.FormatTime(newest))
	}
	return strings.Join(parts, "  ")
}

// historyProgress describes how much of the content before the split point
// has been backfilled
func historyProgress(st follow.State) string {
	if st.HistoryDone {
		return "history done"
	}
	if st.SplitOffset <= 0 {
		return "history -"
	}
	loaded := st.SplitOffset - st.HistoryOffset
	return fmt.Sprintf("history %d%%", loaded*100/st.SplitOffset)
}

// Close stops the follow session
func (m *Model) Close() error {
	return m.ctrl.Stop()
}
