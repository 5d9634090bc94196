package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finmate/internal/cli"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.theme.Subtitle.Render("Loading FinMate...")
	}

	sections := []string{m.renderHeader(), m.viewport.View()}

	switch m.state {
	case StateForm:
		sections = append(sections, m.form.View(m.theme, m.width))
	case StateConfirm:
		sections = append(sections, m.renderConfirm())
	default:
		sections = append(sections, m.theme.RoundedBox.Width(max(m.width-4, 20)).Render(m.input.View()))
	}

	sections = append(sections, m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	mode := cli.SunIcon + " light"
	if m.theme.Dark {
		mode = cli.MoonIcon + " dark"
	}

	title := m.theme.Title.Render(cli.BotIcon + " FinMate")
	right := m.theme.StatusBar.Render(mode)
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(right), 1)
	return title + strings.Repeat(" ", gap) + right
}

func (m Model) transcript() string {
	var b strings.Builder
	for _, e := range m.entries {
		if e.user != "" {
			b.WriteString(m.theme.UserLabel.Render("You"))
			b.WriteString("\n")
			b.WriteString(m.theme.UserBubble.Render(e.user))
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(m.renderer.Render(e.reply, e.first))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderConfirm() string {
	return m.theme.StatusError.Render("Delete this expense permanently?") + "  " +
		m.theme.Subtitle.Render("y to delete, n or Esc to keep it")
}

func (m Model) renderStatus() string {
	var left string
	switch {
	case m.status != "":
		left = m.theme.StatusError.Render(m.status)
	case m.pending > 0:
		left = m.theme.StatusPending.Render("FinMate is typing...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, left, m.help.View(m.keymap))
}
