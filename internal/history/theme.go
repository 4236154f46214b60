package history

import (
	"context"
	"fmt"
	"log/slog"
)

// ThemeKey is the storage key holding the theme flag.
const ThemeKey = "theme"

// Theme is the display theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ThemeStore persists the theme flag.
type ThemeStore struct {
	kv     KV
	logger *slog.Logger
}

// NewThemeStore creates a theme store over kv.
func NewThemeStore(kv KV, logger *slog.Logger) *ThemeStore {
	return &ThemeStore{kv: kv, logger: logger}
}

// Load returns the persisted theme, defaulting to light when absent, unknown
// or unreadable.
func (s *ThemeStore) Load(ctx context.Context) Theme {
	raw, ok, err := s.kv.Get(ctx, ThemeKey)
	if err != nil {
		s.logger.Warn("theme load failed", "error", err)
		return ThemeLight
	}
	if ok && Theme(raw) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Set persists theme.
func (s *ThemeStore) Set(ctx context.Context, theme Theme) error {
	if theme != ThemeDark {
		theme = ThemeLight
	}
	if err := s.kv.Set(ctx, ThemeKey, string(theme)); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	return nil
}

// Toggle flips and persists the theme, returning the new value.
func (s *ThemeStore) Toggle(ctx context.Context) (Theme, error) {
	next := s.Load(ctx).Toggled()
	return next, s.Set(ctx, next)
}
