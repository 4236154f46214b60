// Package tui is the terminal render boundary of the weather widget: a
// search input with debounced suggestions, a result panel, history chips and
// a theme toggle.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchcryptid/weather-lookup/internal/domain"
	"github.com/couchcryptid/weather-lookup/internal/history"
	"github.com/couchcryptid/weather-lookup/internal/search"
	"github.com/couchcryptid/weather-lookup/internal/suggest"
)

// Suggester receives the input text on every edit.
type Suggester interface {
	Suggest(query string)
}

// Searcher runs search cycles. Results arrive through the Bridge, so the
// returned values are ignored here.
type Searcher interface {
	SearchByName(ctx context.Context, query string) search.Outcome
	SearchByPlace(ctx context.Context, loc domain.ResolvedLocation) search.Outcome
	SearchByDevice(ctx context.Context) search.Outcome
	LoadHistory(ctx context.Context) []string
	ClearHistory(ctx context.Context) error
}

// ThemeStore loads and flips the persisted theme.
type ThemeStore interface {
	Load(ctx context.Context) history.Theme
	Toggle(ctx context.Context) (history.Theme, error)
}

// Deps are the collaborators of the Model.
type Deps struct {
	Suggester Suggester
	Searcher  Searcher
	Themes    ThemeStore
	Logger    *slog.Logger
}

type focus int

const (
	focusInput focus = iota
	focusHistory
)

type themeMsg history.Theme

// Model is the bubbletea model of the widget.
type Model struct {
	ctx    context.Context
	deps   Deps
	keys   KeyMap
	help   help.Model
	input  textinput.Model
	spin   spinner.Model
	theme  history.Theme
	styles styles

	focus       focus
	suggestions suggest.Suggestions
	cursor      int
	history     []string // newest first
	chip        int
	busy        bool
	notice      string
	outcome     *search.Outcome
}

// New creates the Model. ctx bounds every search the model starts.
func New(ctx context.Context, deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	input := textinput.New()
	input.Placeholder = "Search a city"
	input.Prompt = "> "
	input.CharLimit = 100
	input.Width = 40
	input.Focus()

	return Model{
		ctx:    ctx,
		deps:   deps,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		input:  input,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		theme:  history.ThemeLight,
		styles: newStyles(history.ThemeLight),
	}
}

// Init loads the theme and history.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadTheme(), m.run(func(ctx context.Context) {
		m.deps.Searcher.LoadHistory(ctx)
	}))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.input.Width = max(20, msg.Width-4)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case suggestionsMsg:
		m.suggestions = suggest.Suggestions(msg)
		m.cursor = 0
		return m, nil

	case progressMsg:
		m.notice = msg.Message
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.spin.Tick

	case resultMsg:
		out := search.Outcome(msg)
		m.outcome = &out
		m.busy = false
		m.notice = ""
		return m, nil

	case historyMsg:
		m.history = history.Newest(msg)
		if m.chip >= len(m.history) {
			m.chip = max(0, len(m.history)-1)
		}
		var cmd tea.Cmd
		if len(m.history) == 0 && m.focus == focusHistory {
			cmd = m.focusOn(focusInput)
		}
		return m, cmd

	case themeMsg:
		m.theme = history.Theme(msg)
		m.styles = newStyles(m.theme)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleTheme):
		return m, m.toggleTheme()

	case key.Matches(msg, m.keys.Locate):
		m.clearSuggestions()
		return m, m.run(func(ctx context.Context) {
			m.deps.Searcher.SearchByDevice(ctx)
		})

	case key.Matches(msg, m.keys.ClearHistory):
		return m, m.run(func(ctx context.Context) {
			if err := m.deps.Searcher.ClearHistory(ctx); err != nil {
				m.deps.Logger.Warn("clear history failed", "error", err)
			}
		})

	case key.Matches(msg, m.keys.SwitchFocus):
		var cmd tea.Cmd
		switch {
		case m.focus == focusHistory:
			cmd = m.focusOn(focusInput)
		case len(m.history) > 0:
			cmd = m.focusOn(focusHistory)
		}
		return m, cmd

	case key.Matches(msg, m.keys.Search):
		return m.submit()
	}

	if m.focus == focusHistory {
		switch {
		case key.Matches(msg, m.keys.Left) && m.chip > 0:
			m.chip--
		case key.Matches(msg, m.keys.Right) && m.chip < len(m.history)-1:
			m.chip++
		}
		return m, nil
	}

	if n := len(m.matches()); n > 0 {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.cursor = (m.cursor - 1 + n) % n
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.cursor = (m.cursor + 1) % n
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.deps.Suggester.Suggest(value)
	}
	return m, cmd
}

// submit runs a search from the focused control. In the input, a shown
// suggestion list wins over the typed text.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.focus == focusHistory {
		if len(m.history) == 0 {
			return m, nil
		}
		label := m.history[m.chip]
		m.input.SetValue(label)
		m.clearSuggestions()
		focusCmd := m.focusOn(focusInput)
		return m, tea.Batch(focusCmd, m.run(func(ctx context.Context) {
			m.deps.Searcher.SearchByName(ctx, label)
		}))
	}

	if matches := m.matches(); len(matches) > 0 {
		chosen := matches[m.cursor]
		m.input.SetValue(chosen.Label())
		m.clearSuggestions()
		return m, m.run(func(ctx context.Context) {
			m.deps.Searcher.SearchByPlace(ctx, chosen.Resolve())
		})
	}

	query := m.input.Value()
	m.clearSuggestions()
	return m, m.run(func(ctx context.Context) {
		m.deps.Searcher.SearchByName(ctx, query)
	})
}

func (m Model) matches() []domain.PlaceCandidate {
	if m.suggestions.Status != suggest.StatusMatches {
		return nil
	}
	return m.suggestions.Candidates
}

// clearSuggestions hides the list and supersedes any pending lookup.
func (m *Model) clearSuggestions() {
	m.suggestions = suggest.Suggestions{}
	m.cursor = 0
	m.deps.Suggester.Suggest("")
}

func (m *Model) focusOn(f focus) tea.Cmd {
	m.focus = f
	if f == focusInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m Model) loadTheme() tea.Cmd {
	ctx, themes := m.ctx, m.deps.Themes
	return func() tea.Msg {
		return themeMsg(themes.Load(ctx))
	}
}

func (m Model) toggleTheme() tea.Cmd {
	ctx, themes, logger := m.ctx, m.deps.Themes, m.deps.Logger
	return func() tea.Msg {
		next, err := themes.Toggle(ctx)
		if err != nil {
			logger.Warn("theme not persisted", "error", err)
		}
		return themeMsg(next)
	}
}

// run wraps f as a command. Its results reach the model through the Bridge.
func (m Model) run(f func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		f(ctx)
		return nil
	}
}
