// Package tui provides the Bubble Tea guessing interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/guessr/internal/game"
)

const maxLogLines = 200

type logLine struct {
	text  string
	style lipgloss.Style
}

// Model implements the Bubble Tea guessing UI.
type Model struct {
	session *game.Session
	input   textinput.Model
	log     []logLine

	width  int
	height int

	summary  game.Summary
	finished bool
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	rangeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	echoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a guessing TUI model around a running session.
func NewModel(session *game.Session) *Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = session.Rules().ExitToken + " to exit"
	in.CharLimit = 32
	in.Focus()
	return &Model{
		session: session,
		input:   in,
	}
}

// Summary returns the final statistics and whether the session finished.
func (m *Model) Summary() (game.Summary, bool) {
	return m.summary, m.finished
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = maxInt(10, msg.Width-4)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.stop()
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	rules := m.session.Rules()
	header := titleStyle.Render(rules.Prompt())
	footer := m.renderFooter()
	inputView := m.input.View()

	logHeight := len(m.log)
	if m.height > 0 {
		logHeight = m.height - 4
	}
	lines := m.visibleLog(logHeight)
	parts := []string{header, ""}
	parts = append(parts, lines...)
	parts = append(parts, inputView, footer)
	return strings.Join(parts, "\n")
}

func (m *Model) submit() tea.Cmd {
	token := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if token == "" {
		return nil
	}
	res, err := m.session.Submit(token)
	if err != nil {
		m.appendLog(err.Error(), errorStyle)
		return nil
	}
	m.appendLog(token, echoStyle)
	style := styleFor(res)
	for _, line := range m.session.Rules().Describe(res) {
		m.appendLog(line, style)
	}
	if res.Forfeited {
		m.appendLog("", hintStyle)
	}
	if res.Outcome == game.Exit {
		m.summary = res.Summary
		m.finished = true
		return tea.Quit
	}
	return nil
}

func (m *Model) stop() {
	if !m.session.Playing() {
		return
	}
	summary, err := m.session.Quit()
	if err != nil {
		return
	}
	m.summary = summary
	m.finished = true
}

func (m *Model) appendLog(text string, style lipgloss.Style) {
	m.log = append(m.log, logLine{text: text, style: style})
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

func (m *Model) visibleLog(height int) []string {
	if height <= 0 {
		return nil
	}
	start := 0
	if len(m.log) > height {
		start = len(m.log) - height
	}
	out := make([]string, 0, height)
	for _, line := range m.log[start:] {
		out = append(out, line.style.Render(truncateLine(line.text, m.width)))
	}
	for len(out) < height && m.height > 0 {
		out = append(out, "")
	}
	return out
}

func (m *Model) renderFooter() string {
	sum := m.session.Summary()
	segments := []string{
		fmt.Sprintf("Guesses %d", sum.TotalGuesses),
		fmt.Sprintf("Guessed %d", sum.NumbersGuessed),
		fmt.Sprintf("Avg %.1f", sum.AverageGuesses),
	}
	rules := m.session.Rules()
	if rules.Limited() {
		segments = append(segments,
			fmt.Sprintf("Attempt %d/%d", m.session.Attempt(), rules.MaxAttempts),
			fmt.Sprintf("Pct %.1f%%", sum.GuessedPct),
		)
	}
	segments = append(segments, "esc: quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func styleFor(res game.Result) lipgloss.Style {
	switch res.Outcome {
	case game.Correct:
		return correctStyle
	case game.AboveRange, game.BelowRange:
		return rangeStyle
	case game.Invalid:
		return errorStyle
	default:
		return hintStyle
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
