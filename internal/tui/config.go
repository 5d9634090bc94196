package tui

import (
	"context"
	"io"

	"github.com/Veraticus/finmate/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme themes.Theme
	// ToggleTheme flips and persists the dark mode preference.
	ToggleTheme func(ctx context.Context) (bool, error)
	// Bell receives the audible cue when Sound is on.
	Bell   io.Writer
	Width  int
	Height int
	Sound  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:  themes.Dark,
		Width:  80,
		Height: 24,
	}
}

// WithDarkMode picks the dark or light theme.
func WithDarkMode(dark bool) Option {
	return func(c *Config) {
		c.Theme = themes.ForMode(dark)
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithThemeToggle sets the function Ctrl+T calls.
func WithThemeToggle(toggle func(ctx context.Context) (bool, error)) Option {
	return func(c *Config) {
		c.ToggleTheme = toggle
	}
}

// WithSound rings bell when replies arrive.
func WithSound(bell io.Writer) Option {
	return func(c *Config) {
		c.Sound = bell != nil
		c.Bell = bell
	}
}
