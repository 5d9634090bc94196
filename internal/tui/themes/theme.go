// Package themes holds the TUI color themes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	UserLabel     lipgloss.Style
	BotLabel      lipgloss.Style
	UserBubble    lipgloss.Style
	BotBubble     lipgloss.Style
	Selected      lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusBar     lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusPending lipgloss.Style
	Name          string
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
	Background    lipgloss.Color
	Error         lipgloss.Color
	Success       lipgloss.Color
	Dark          bool
}

type palette struct {
	primary, secondary, success, errorC, muted, border, fg, bg, bubble string
}

func build(name string, dark bool, p palette) Theme {
	return Theme{
		Name:       name,
		Dark:       dark,
		Primary:    lipgloss.Color(p.primary),
		Secondary:  lipgloss.Color(p.secondary),
		Success:    lipgloss.Color(p.success),
		Error:      lipgloss.Color(p.errorC),
		Muted:      lipgloss.Color(p.muted),
		Border:     lipgloss.Color(p.border),
		Foreground: lipgloss.Color(p.fg),
		Background: lipgloss.Color(p.bg),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.primary)),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)).
			Italic(true),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.fg)),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.fg)),
		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.secondary)),
		BotLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.primary)),
		UserBubble: lipgloss.NewStyle().
			Background(lipgloss.Color(p.bubble)).
			Foreground(lipgloss.Color(p.fg)).
			Padding(0, 1),
		BotBubble: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.fg)).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(p.primary)).
			Foreground(lipgloss.Color(p.bg)).
			Bold(true),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.errorC)).
			Bold(true),
		StatusSuccess: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.success)).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)).
			Italic(true),
	}
}

// Dark is the theme used when dark mode is on.
var Dark = build("dark", true, palette{
	primary:   "#4ecdc4",
	secondary: "#a78bfa",
	success:   "#10b981",
	errorC:    "#ef4444",
	muted:     "#737373",
	border:    "#404040",
	fg:        "#fafafa",
	bg:        "#1a1a1a",
	bubble:    "#2d2d3a",
})

// Light is the theme used when dark mode is off.
var Light = build("light", false, palette{
	primary:   "#0f766e",
	secondary: "#6d28d9",
	success:   "#15803d",
	errorC:    "#b91c1c",
	muted:     "#6b7280",
	border:    "#d1d5db",
	fg:        "#111827",
	bg:        "#ffffff",
	bubble:    "#ede9fe",
})

// ForMode returns the dark or light theme.
func ForMode(dark bool) Theme {
	if dark {
		return Dark
	}
	return Light
}

// CategoryIcons maps expense categories to emoji icons.
var CategoryIcons = map[string]string{
	"Food":          "🍕",
	"Groceries":     "🥬",
	"Transport":     "🚗",
	"Entertainment": "🎬",
	"Bills":         "💡",
	"Shopping":      "🛍️",
	"Health":        "💊",
	"Others":        "📦",
}

// CategoryIcon returns an icon for a category.
func CategoryIcon(category string) string {
	if icon, ok := CategoryIcons[category]; ok {
		return icon
	}
	return "📦"
}
