package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/weather-lookup/internal/history"
)

type palette struct {
	text    lipgloss.Color
	muted   lipgloss.Color
	accent  lipgloss.Color
	errText lipgloss.Color
	chipBg  lipgloss.Color
}

var palettes = map[history.Theme]palette{
	history.ThemeLight: {
		text:    lipgloss.Color("#1F2328"),
		muted:   lipgloss.Color("#6E7781"),
		accent:  lipgloss.Color("#0969DA"),
		errText: lipgloss.Color("#CF222E"),
		chipBg:  lipgloss.Color("#DDF4FF"),
	},
	history.ThemeDark: {
		text:    lipgloss.Color("#E6EDF3"),
		muted:   lipgloss.Color("#8B949E"),
		accent:  lipgloss.Color("#58A6FF"),
		errText: lipgloss.Color("#FF7B72"),
		chipBg:  lipgloss.Color("#1F3A5F"),
	},
}

// styles is the rendered form of a theme.
type styles struct {
	title      lipgloss.Style
	text       lipgloss.Style
	muted      lipgloss.Style
	selected   lipgloss.Style
	errText    lipgloss.Style
	temp       lipgloss.Style
	chip       lipgloss.Style
	chipActive lipgloss.Style
	result     lipgloss.Style
}

func newStyles(theme history.Theme) styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[history.ThemeLight]
	}
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		text:       lipgloss.NewStyle().Foreground(p.text),
		muted:      lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		selected:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		errText:    lipgloss.NewStyle().Foreground(p.errText),
		temp:       lipgloss.NewStyle().Bold(true).Foreground(p.text),
		chip:       lipgloss.NewStyle().Foreground(p.text).Background(p.chipBg).Padding(0, 1),
		chipActive: lipgloss.NewStyle().Bold(true).Foreground(p.chipBg).Background(p.accent).Padding(0, 1),
		result:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.muted).Padding(0, 1),
	}
}
