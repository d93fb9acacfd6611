package browse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/envsolve/log"
)

var testEntries = []Entry{
	{Name: "users", Handler: "src/users.main", File: "/srv/src/users.js", Variables: []string{"DB_HOST", "DB_PORT"}},
	{Name: "ping", Handler: "src/ping.main", File: "/srv/src/ping.js"},
	{Name: "billing", Handler: "src/billing.main", File: "/srv/src/billing.js", Variables: []string{"STRIPE_KEY"}, Undeclared: []string{"STRIPE_KEY"}},
}

func TestFilter(t *testing.T) {
	tests := []struct {
		query string
		want  []int
	}{
		{"", []int{0, 1, 2}},
		{"   ", []int{0, 1, 2}},
		{"ping", []int{1}},
		{"STRIPE", []int{2}},
		{"zzz", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := filter(testEntries, tt.query); !slices.Equal(got, tt.want) {
				t.Errorf("filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func newTestModel(t *testing.T) model {
	t.Helper()

	return newModel(context.Background(), testEntries, NewHistory(""), log.Discard())
}

func update(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()

	for _, msg := range msgs {
		next, _ := m.Update(msg)

		var ok bool
		if m, ok = next.(model); !ok {
			t.Fatalf("Update returned %T", next)
		}
	}

	return m
}

func TestModel_Navigation(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	if e, _ := m.selected(); e.Name != "billing" {
		t.Errorf("selected %q after moving past the end, want billing", e.Name)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if e, _ := m.selected(); e.Name != "ping" {
		t.Errorf("selected %q, want ping", e.Name)
	}
}

func TestModel_Typing(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bill")})

	if m.input.Value() != "bill" {
		t.Fatalf("input = %q", m.input.Value())
	}

	if !slices.Equal(m.matches, []int{2}) {
		t.Errorf("matches = %v, want [2]", m.matches)
	}

	view := m.View()
	for _, want := range []string{"billing", "STRIPE_KEY (undeclared)", "/srv/src/billing.js"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.input.Value() != "" || len(m.matches) != len(testEntries) {
		t.Errorf("esc did not clear filter: %q %v", m.input.Value(), m.matches)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.quitting || m.View() != "" {
		t.Error("esc on empty filter did not quit")
	}
}

func TestModel_NoMatches(t *testing.T) {
	m := update(t, newTestModel(t), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzz")})

	if _, ok := m.selected(); ok {
		t.Error("selected an entry with no matches")
	}

	if !strings.Contains(m.View(), "no matching handlers") {
		t.Errorf("view:\n%s", m.View())
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter with no selection returned a command")
	}
}

func TestModel_History(t *testing.T) {
	h := NewHistory("")
	for _, q := range []string{"users", "ping"} {
		if err := h.Add(q); err != nil {
			t.Fatal(err)
		}
	}

	m := newModel(context.Background(), testEntries, h, log.Discard())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.input.Value() != "ping" {
		t.Errorf("ctrl+p = %q, want ping", m.input.Value())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.input.Value() != "users" {
		t.Errorf("ctrl+p twice = %q, want users", m.input.Value())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN}, tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.input.Value() != "" {
		t.Errorf("ctrl+n past the end = %q, want empty", m.input.Value())
	}
}

func TestModel_EditorClosed(t *testing.T) {
	m := update(t, newTestModel(t), editorClosedMsg{path: "/x.js", err: errors.New("boom")})

	if !strings.Contains(m.View(), "boom") {
		t.Errorf("editor error not shown:\n%s", m.View())
	}
}

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	for _, q := range []string{"a", "b", "a", " ", "c", "c"} {
		if err := h.Add(q); err != nil {
			t.Fatal(err)
		}
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	var got []string
	for i := range reloaded.Len() {
		q, err := reloaded.At(i)
		if err != nil {
			t.Fatal(err)
		}

		got = append(got, q)
	}

	if want := []string{"b", "a", "c"}; !slices.Equal(got, want) {
		t.Errorf("history = %v, want %v", got, want)
	}

	if _, err := reloaded.At(3); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}

	if err := NewHistory(filepath.Join(t.TempDir(), "missing")).Load(); err != nil {
		t.Errorf("missing history file: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("history file not written: %v", err)
	}
}

func TestRun_NoEntries(t *testing.T) {
	if err := Run(context.Background(), nil, "", log.Discard()); !errors.Is(err, ErrNoEntries) {
		t.Errorf("expected ErrNoEntries, got %v", err)
	}
}

func TestEditorCommand(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "nano")

	cmd := editorCommand("/x.js")
	if filepath.Base(cmd.Path) != "nano" && !strings.HasSuffix(cmd.Args[0], "nano") {
		t.Errorf("editor = %v", cmd.Args)
	}

	if got := cmd.Args[len(cmd.Args)-1]; got != "/x.js" {
		t.Errorf("file argument = %q", got)
	}
}
