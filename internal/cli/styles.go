// Package cli is the line-mode chat renderer: styled terminal output using
// lipgloss, markdown through glamour, and a read-eval-print loop over a
// chat.Session.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors one theme uses.
type Palette struct {
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color
	Subtle  lipgloss.Color
	Border  lipgloss.Color
	// User colors the echo of what the user typed.
	User lipgloss.Color
}

var (
	// DarkPalette is used when dark mode is on.
	DarkPalette = Palette{
		Primary: lipgloss.Color("#4ECDC4"), // Teal
		Success: lipgloss.Color("#6BCB77"), // Green
		Warning: lipgloss.Color("#FFE66D"), // Yellow
		Error:   lipgloss.Color("#FF6B6B"), // Red
		Info:    lipgloss.Color("#95E1D3"), // Light teal
		Subtle:  lipgloss.Color("#8A8A8A"),
		Border:  lipgloss.Color("#444444"),
		User:    lipgloss.Color("#A78BFA"),
	}

	// LightPalette is used when dark mode is off.
	LightPalette = Palette{
		Primary: lipgloss.Color("#0F766E"),
		Success: lipgloss.Color("#15803D"),
		Warning: lipgloss.Color("#B45309"),
		Error:   lipgloss.Color("#B91C1C"),
		Info:    lipgloss.Color("#1D4ED8"),
		Subtle:  lipgloss.Color("#6B7280"),
		Border:  lipgloss.Color("#D1D5DB"),
		User:    lipgloss.Color("#6D28D9"),
	}
)

var (
	// TitleStyle is used for section titles.
	TitleStyle lipgloss.Style
	// SubtitleStyle is used for secondary headings and footers.
	SubtitleStyle lipgloss.Style
	// SuccessStyle formats success messages.
	SuccessStyle lipgloss.Style
	// WarningStyle formats warning messages.
	WarningStyle lipgloss.Style
	// ErrorStyle formats error messages.
	ErrorStyle lipgloss.Style
	// InfoStyle formats informational messages.
	InfoStyle lipgloss.Style
	// SubtleStyle formats less prominent text.
	SubtleStyle lipgloss.Style
	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().Bold(true)
	// BoxStyle is used for bordered content boxes.
	BoxStyle lipgloss.Style
	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
	// PromptStyle is used for user prompts.
	PromptStyle lipgloss.Style
	// BotStyle prefixes FinMate's replies.
	BotStyle lipgloss.Style
	// UserStyle prefixes the user's messages.
	UserStyle lipgloss.Style
	// ActionStyle renders follow-up action shortcuts.
	ActionStyle lipgloss.Style
)

func init() {
	ApplyPalette(DarkPalette)
}

// ApplyPalette rebuilds every package style from p.
func ApplyPalette(p Palette) {
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary)
	SubtitleStyle = lipgloss.NewStyle().
		Foreground(p.Subtle).
		Italic(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	InfoStyle = lipgloss.NewStyle().Foreground(p.Info)
	SubtleStyle = lipgloss.NewStyle().Foreground(p.Subtle)
	BoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 2)
	PromptStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.User)
	BotStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary)
	UserStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.User)
	ActionStyle = lipgloss.NewStyle().
		Foreground(p.Info).
		Underline(true)
}

// ApplyTheme switches between the dark and light palettes.
func ApplyTheme(dark bool) {
	if dark {
		ApplyPalette(DarkPalette)
		return
	}
	ApplyPalette(LightPalette)
}

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	BotIcon     = "💰"
	MoonIcon    = "🌙"
	SunIcon     = "☀️"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the FinMate icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(BotIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Render(title),
		content,
	)

	return BoxStyle.Render(boxContent)
}
