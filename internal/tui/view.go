package tui

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/weather-lookup/internal/domain"
	"github.com/couchcryptid/weather-lookup/internal/suggest"
	"github.com/mattn/go-runewidth"
)

// Suggestion surface texts.
const (
	textSuggestPending = "Searching..."
	textSuggestNone    = "No results"
	textSuggestFailed  = "Failed to load suggestions"
	textNoHistory      = "No history yet"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("Weather Lookup"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if s := m.suggestionsView(); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}

	if s := m.outputView(); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.historyView())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) suggestionsView() string {
	switch m.suggestions.Status {
	case suggest.StatusPending:
		return m.styles.muted.Render(textSuggestPending)
	case suggest.StatusNoMatches:
		return m.styles.muted.Render(textSuggestNone)
	case suggest.StatusFailed:
		return m.styles.errText.Render(textSuggestFailed)
	case suggest.StatusMatches:
		lines := make([]string, len(m.suggestions.Candidates))
		for i, c := range m.suggestions.Candidates {
			label := runewidth.Truncate(c.Label(), m.input.Width, "…")
			if i == m.cursor && m.focus == focusInput {
				lines[i] = m.styles.selected.Render("› " + label)
				continue
			}
			lines[i] = m.styles.text.Render("  " + label)
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}

// outputView is the single output region: progress while a cycle runs,
// otherwise the last outcome.
func (m Model) outputView() string {
	if m.busy {
		return m.spin.View() + " " + m.styles.muted.Render(m.notice)
	}
	if m.outcome == nil {
		return ""
	}
	if !m.outcome.OK() {
		return m.styles.errText.Render(m.outcome.Message)
	}
	return m.styles.result.Render(m.resultView(m.outcome.Location, m.outcome.Weather, m.outcome.Category))
}

func (m Model) resultView(loc domain.ResolvedLocation, w domain.WeatherSnapshot, c domain.ConditionCategory) string {
	return strings.Join([]string{
		m.styles.title.Render(loc.Label),
		m.styles.muted.Render(fmt.Sprintf("Lat: %s, Lon: %s", domain.FormatNumber(loc.Latitude), domain.FormatNumber(loc.Longitude))),
		c.Glyph + " " + m.styles.temp.Render(w.Temperature()),
		m.styles.text.Render(fmt.Sprintf("Wind: %s · %s", w.Wind(), c.Label)),
		m.styles.muted.Render(loc.MapURL()),
	}, "\n")
}

func (m Model) historyView() string {
	title := m.styles.title.Render("History")
	if len(m.history) == 0 {
		return title + "\n" + m.styles.muted.Render(textNoHistory)
	}
	chips := make([]string, len(m.history))
	for i, label := range m.history {
		if m.focus == focusHistory && i == m.chip {
			chips[i] = m.styles.chipActive.Render(label)
			continue
		}
		chips[i] = m.styles.chip.Render(label)
	}
	return title + "\n" + strings.Join(chips, " ")
}
