// Package statsui renders stored games in a Bubble Tea browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/verte-zerg/guessr/internal/model"
	"github.com/verte-zerg/guessr/internal/stats"
	"github.com/verte-zerg/guessr/internal/store"
)

type tab int

const (
	tabOverview tab = iota
	tabGames
	tabAttempts
	tabCount
)

var tabTitles = [tabCount]string{"Overview", "Games", "Attempts"}

// windowSteps are the curve windows reachable with -/=.
var windowSteps = []int{1, 3, 5, 10, 20, 50}

const (
	histogramBarWidth = 40
	cardWidth         = 18
	headerLines       = 2
	dateLayout        = "2006-01-02"
)

var (
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1E1E")).
			Background(lipgloss.Color("#C89A3A")).
			Bold(true).
			Padding(0, 1)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle = lipgloss.NewStyle().
			Width(cardWidth-2).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

type keyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Narrow key.Binding
	Widen  key.Binding
	Filter key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Narrow, k.Widen, k.Filter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev tab")),
	Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next tab")),
	Narrow: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "narrow window")),
	Widen:  key.NewBinding(key.WithKeys("=", "+"), key.WithHelp("=", "widen window")),
	Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model implements the Bubble Tea stats browser.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	err    error

	active tab
	pages  [tabCount]viewport.Model
	games  table.Model
	help   help.Model

	filtering bool
	filter    textinput.Model
	filterErr string

	width  int
	height int
}

// NewModel loads the report for cfg and returns the browser.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	filter := textinput.New()
	filter.Prompt = "filter> "
	filter.Placeholder = "since=YYYY-MM-DD last=N window=N"
	m := &Model{
		store:  st,
		cfg:    cfg,
		help:   help.New(),
		filter: filter,
	}
	for i := range m.pages {
		m.pages[i] = viewport.New(0, 0)
	}
	m.games = newGamesTable(nil)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.filter.Width = max(10, msg.Width-lipgloss.Width(m.filter.Prompt)-2)
		m.resize()
		m.fillPages()
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m, m.updateFilter(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Prev):
			m.switchTab(-1)
		case key.Matches(msg, keys.Next):
			m.switchTab(1)
		case key.Matches(msg, keys.Narrow):
			m.setWindow(stepWindow(m.cfg.CurveWindow, -1))
		case key.Matches(msg, keys.Widen):
			m.setWindow(stepWindow(m.cfg.CurveWindow, 1))
		case key.Matches(msg, keys.Filter):
			return m, m.openFilter()
		default:
			return m, m.scroll(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	height := m.bodyHeight()
	body := lipgloss.NewStyle().
		MaxWidth(m.width).
		Height(height).
		MaxHeight(height).
		Render(m.renderBody())
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m *Model) footerLines() int {
	if m.err != nil && !m.filtering {
		return 2
	}
	return 1
}

func (m *Model) bodyHeight() int {
	return max(1, m.height-headerLines-m.footerLines())
}

func (m *Model) resize() {
	height := m.bodyHeight()
	for i := range m.pages {
		m.pages[i].Width = m.width
		m.pages[i].Height = height
	}
	m.games.SetWidth(m.width)
	m.games.SetHeight(height)
}

func (m *Model) switchTab(delta int) {
	m.active = (m.active + tab(delta) + tabCount) % tabCount
	if m.active == tabGames {
		m.games.Focus()
	} else {
		m.games.Blur()
	}
}

func (m *Model) setWindow(window int) {
	if window == m.cfg.CurveWindow {
		return
	}
	m.cfg.CurveWindow = window
	m.refresh()
}

func (m *Model) scroll(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	if m.active == tabGames {
		m.games, cmd = m.games.Update(msg)
		return cmd
	}
	m.pages[m.active], cmd = m.pages[m.active].Update(msg)
	return cmd
}

func (m *Model) refresh() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	m.err = err
	if err != nil {
		for i := range m.pages {
			m.pages[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.report = report
	m.games = newGamesTable(report.Games)
	if m.active == tabGames {
		m.games.Focus()
	}
	m.resize()
	m.fillPages()
}

func (m *Model) fillPages() {
	if m.err != nil {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.pages[tabOverview].SetContent(renderOverview(m.report.Games, m.cfg.CurveWindow, width))
	m.pages[tabAttempts].SetContent(renderAttempts(m.report))
}

func (m *Model) renderHeader() string {
	titles := make([]string, len(tabTitles))
	for i, title := range tabTitles {
		if tab(i) == m.active {
			titles[i] = activeTabStyle.Render(title)
		} else {
			titles[i] = tabStyle.Render(title)
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, titles...)
	return tabs + "\n" + dimStyle.Render(truncateLine(describeFilter(m.cfg), m.width))
}

func (m *Model) renderFooter() string {
	if m.filtering {
		return dimStyle.Render("enter: apply  esc: cancel")
	}
	footer := m.help.View(keys)
	if m.err != nil {
		footer += "\n" + errStyle.Render(truncateLine(m.err.Error(), m.width))
	}
	return footer
}

func (m *Model) renderBody() string {
	if m.filtering {
		lines := []string{"Filter games (omit a key to clear it)", m.filter.View()}
		if m.filterErr != "" {
			lines = append(lines, errStyle.Render(m.filterErr))
		}
		return strings.Join(lines, "\n")
	}
	if m.active == tabGames {
		if len(m.report.Games) == 0 {
			return "No games found."
		}
		return m.games.View()
	}
	return m.pages[m.active].View()
}

func (m *Model) openFilter() tea.Cmd {
	m.filtering = true
	m.filterErr = ""
	m.filter.SetValue(describeFilterInput(m.cfg))
	m.filter.CursorEnd()
	return m.filter.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		m.closeFilter()
		return nil
	case tea.KeyEnter:
		cfg, err := parseFilter(m.filter.Value(), m.cfg.CurveWindow)
		if err != nil {
			m.filterErr = err.Error()
			return nil
		}
		m.cfg = cfg
		m.closeFilter()
		m.refresh()
		return nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return cmd
}

func (m *Model) closeFilter() {
	m.filtering = false
	m.filterErr = ""
	m.filter.Blur()
}

func newGamesTable(games []model.GameAggregate) table.Model {
	headers, cells := stats.GameTableRows(games)
	widths := lo.Map(headers, func(h string, _ int) int { return runewidth.StringWidth(h) })
	// Newest first.
	rows := make([]table.Row, len(cells))
	for i, row := range cells {
		for j, cell := range row {
			widths[j] = max(widths[j], runewidth.StringWidth(cell))
		}
		rows[len(cells)-1-i] = table.Row(row)
	}
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: widths[i]}
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#1E1E1E")).
		Background(lipgloss.Color("#C89A3A"))

	return table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithStyles(styles),
	)
}

func renderOverview(games []model.GameAggregate, window, width int) string {
	if len(games) == 0 {
		return "No games found."
	}
	t := stats.ComputeTotals(games)
	cards := []string{
		card("Games", strconv.Itoa(t.Games)),
		card("Guesses", strconv.Itoa(t.Guesses)),
		card("Guessed", fmt.Sprintf("%d/%d", t.NumbersGuessed, t.Secrets)),
		card("Avg Guesses", fmt.Sprintf("%.2f", t.AverageGuesses)),
		card("Best Avg", fmt.Sprintf("%.2f", t.BestAverage)),
		card("Guessed %", fmt.Sprintf("%.1f%%", t.GuessedPct)),
	}
	rows := lo.Map(lo.Chunk(cards, max(1, width/cardWidth)), func(chunk []string, _ int) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, chunk...)
	})

	var curves bytes.Buffer
	if err := stats.RenderCurves(&curves, games, window); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(lipgloss.JoinVertical(lipgloss.Left, rows...)+"\n\n"+curves.String(), "\n")
}

func card(label, value string) string {
	return cardStyle.Render(cardLabelStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func renderAttempts(report stats.Report) string {
	if len(report.Histogram) == 0 {
		return "No guessed rounds found."
	}
	lines := []string{"All games"}
	lines = append(lines, stats.HistogramLines(report.Histogram, histogramBarWidth)...)
	if len(report.HistogramWindow) > 0 && len(report.WindowGameIDs) < len(report.Games) {
		lines = append(lines, "", fmt.Sprintf("Last %d games", len(report.WindowGameIDs)))
		lines = append(lines, stats.HistogramLines(report.HistogramWindow, histogramBarWidth)...)
	}
	return strings.Join(lines, "\n")
}

// stepWindow moves n to the neighbouring entry of windowSteps. Values past
// the largest step only shrink.
func stepWindow(n, delta int) int {
	idx := sort.SearchInts(windowSteps, n)
	last := windowSteps[len(windowSteps)-1]
	if delta > 0 {
		if n >= last {
			return n
		}
		if windowSteps[idx] == n {
			idx++
		}
		return windowSteps[idx]
	}
	return windowSteps[max(0, idx-1)]
}

func describeFilter(cfg model.StatsConfig) string {
	since := "any"
	if cfg.Since != nil {
		since = cfg.Since.Format(dateLayout)
	}
	last := "all"
	if cfg.Last > 0 {
		last = strconv.Itoa(cfg.Last)
	}
	return fmt.Sprintf("since %s  last %s  window %d", since, last, cfg.CurveWindow)
}

func describeFilterInput(cfg model.StatsConfig) string {
	var fields []string
	if cfg.Since != nil {
		fields = append(fields, "since="+cfg.Since.Format(dateLayout))
	}
	if cfg.Last > 0 {
		fields = append(fields, "last="+strconv.Itoa(cfg.Last))
	}
	fields = append(fields, "window="+strconv.Itoa(cfg.CurveWindow))
	return strings.Join(fields, " ")
}

// parseFilter reads space-separated key=value pairs. since and last reset
// when omitted; window keeps its current value.
func parseFilter(input string, window int) (model.StatsConfig, error) {
	cfg := model.StatsConfig{CurveWindow: window}
	for _, field := range strings.Fields(input) {
		name, value, ok := strings.Cut(field, "=")
		if !ok {
			return model.StatsConfig{}, fmt.Errorf("expected key=value, got %q", field)
		}
		switch name {
		case "since":
			parsed, err := time.ParseInLocation(dateLayout, value, time.Local)
			if err != nil {
				return model.StatsConfig{}, fmt.Errorf("invalid since date %q (expected YYYY-MM-DD)", value)
			}
			cfg.Since = &parsed
		case "last":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return model.StatsConfig{}, fmt.Errorf("invalid last value %q", value)
			}
			cfg.Last = n
		case "window":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return model.StatsConfig{}, fmt.Errorf("invalid window %q (use integer >= 1)", value)
			}
			cfg.CurveWindow = n
		default:
			return model.StatsConfig{}, fmt.Errorf("unknown filter key %q", name)
		}
	}
	return cfg, nil
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
