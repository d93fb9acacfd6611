// Package browse implements an interactive terminal view of the variables
// each handler references, with a fuzzy filter over handler names and
// variables.
package browse

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/envsolve/log"
)

// Entry is one handler shown by the browser.
type Entry struct {
	Name       string
	Handler    string
	File       string
	Variables  []string
	Undeclared []string
}

// haystack is the text an entry is filtered by.
func (e Entry) haystack() string {
	return strings.Join(append([]string{e.Name, e.Handler}, e.Variables...), " ")
}

const filterPrompt = "filter ➜ "

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	variableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// model is the Bubble Tea model for the browser.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	entries    []Entry
	matches    []int // indexes into entries, best match first
	cursor     int   // index into matches
	history    *History
	historyIdx int
	logger     log.Logger
	width      int
	height     int
	status     string
	quitting   bool
}

// Run starts the browser over entries. Filter queries are remembered in
// cacheDir when it is not empty.
func Run(
	ctx context.Context,
	entries []Entry,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if len(entries) == 0 {
		return ErrNoEntries
	}

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load filter history",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "browse start",
		slog.Int("entries", len(entries)),
		slog.Int("history", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, entries, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	entries []Entry,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(filterPrompt)
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = defaultWidth

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		entries:    entries,
		history:    history,
		historyIdx: history.Len(),
		logger:     logger,
		width:      defaultWidth,
	}
	m.matches = filter(entries, "")

	return m
}

// filter returns the indexes of entries matching query, best first. An
// empty query matches every entry in order.
func filter(entries []Entry, query string) []int {
	query = strings.TrimSpace(query)

	if query == "" {
		all := make([]int, len(entries))
		for i := range all {
			all[i] = i
		}

		return all
	}

	hay := make([]string, len(entries))
	for i, e := range entries {
		hay[i] = e.haystack()
	}

	found := fuzzy.Find(query, hay)
	out := make([]int, len(found))

	for i, m := range found {
		out[i] = m.Index
	}

	return out
}

// selected returns the entry under the cursor.
func (m model) selected() (Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.matches) {
		return Entry{}, false
	}

	return m.entries[m.matches[m.cursor]], true
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - len(filterPrompt) - 2

		return m, nil

	case editorClosedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("editor: " + msg.err.Error())
		} else {
			m.status = hintStyle.Render("closed " + msg.path)
		}

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"browse keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEsc:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.setQuery("")

		return m, nil

	case tea.KeyUp, tea.KeyShiftTab:
		if m.cursor > 0 {
			m.cursor--
		}

		return m, nil

	case tea.KeyDown, tea.KeyTab:
		if m.cursor < len(m.matches)-1 {
			m.cursor++
		}

		return m, nil

	case tea.KeyCtrlP:
		if m.historyIdx > 0 {
			m.historyIdx--
			if q, err := m.history.At(m.historyIdx); err == nil {
				m.setQuery(q)
			}
		}

		return m, nil

	case tea.KeyCtrlN:
		if m.historyIdx < m.history.Len() {
			m.historyIdx++

			q, err := m.history.At(m.historyIdx)
			if err != nil {
				q = ""
			}

			m.setQuery(q)
		}

		return m, nil

	case tea.KeyEnter:
		e, ok := m.selected()
		if !ok {
			return m, nil
		}

		if err := m.history.Add(m.input.Value()); err != nil {
			m.status = errorStyle.Render("history: " + err.Error())
		}

		m.historyIdx = m.history.Len()

		return m, openEditor(e.File)
	}

	var cmd tea.Cmd

	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		m.refresh()
	}

	return m, cmd
}

// setQuery replaces the filter text and refreshes the matches.
func (m *model) setQuery(q string) {
	m.input.SetValue(q)
	m.input.CursorEnd()
	m.refresh()
}

func (m *model) refresh() {
	m.matches = filter(m.entries, m.input.Value())
	m.cursor = 0
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	if len(m.matches) == 0 {
		b.WriteString(hintStyle.Render("no matching handlers"))
		b.WriteString("\n")
	}

	for i, idx := range m.matches {
		e := m.entries[idx]
		line := fmt.Sprintf("%-20s %-32s %d", e.Name, e.Handler, len(e.Variables))

		if len(e.Undeclared) > 0 {
			line += " !"
		}

		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(line)
		}

		b.WriteString("\n")
	}

	if e, ok := m.selected(); ok {
		b.WriteString(detailStyle.Render(m.detail(e)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render("↑/↓ select • enter edit • ctrl+p/ctrl+n history • esc clear/quit"))
	b.WriteString("\n")

	return b.String()
}

func (m model) detail(e Entry) string {
	var b strings.Builder

	b.WriteString(nameStyle.Render(e.Name))
	b.WriteString(" ")
	b.WriteString(hintStyle.Render(e.File))

	if len(e.Variables) == 0 {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("(no variables)"))
	}

	for _, v := range e.Variables {
		b.WriteString("\n")

		if slices.Contains(e.Undeclared, v) {
			b.WriteString(errorStyle.Render(v + " (undeclared)"))
		} else {
			b.WriteString(variableStyle.Render(v))
		}
	}

	return b.String()
}

