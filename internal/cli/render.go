package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/finmate/internal/chat"
	"github.com/Veraticus/finmate/internal/model"
)

const defaultWidth = 80

// Renderer turns replies into styled terminal text.
type Renderer struct {
	markdown *glamour.TermRenderer
	currency string
	width    int
}

// NewRenderer builds a renderer for the dark or light theme.
func NewRenderer(dark bool, width int, currency string) (*Renderer, error) {
	if width <= 0 {
		width = defaultWidth
	}

	style := "light"
	if dark {
		style = "dark"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	ApplyTheme(dark)
	return &Renderer{markdown: md, currency: currency, width: width}, nil
}

// Render formats one reply. Actions are numbered from first so that several
// replies delivered together do not reuse shortcuts.
func (r *Renderer) Render(reply chat.Reply, first int) string {
	var b strings.Builder
	b.WriteString(BotStyle.Render(BotIcon + " FinMate"))
	b.WriteString("\n")

	switch reply.Kind {
	case chat.KindEditForm:
		b.WriteString(r.expenseBox(reply.Text, reply.Expense, ""))
	case chat.KindConfirmDelete:
		b.WriteString(WarningStyle.Render(reply.Text))
		b.WriteString("\n")
		b.WriteString(r.expenseBox("Expense", reply.Expense, reply.Footer))
	default:
		b.WriteString(r.body(reply))
	}

	if len(reply.Expenses) > 0 {
		b.WriteString("\n")
		b.WriteString(r.expenseTable(reply.Expenses, reply.Kind == chat.KindSelection))
	}
	if reply.Footer != "" && reply.Kind != chat.KindConfirmDelete {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render(reply.Footer))
	}
	if len(reply.Actions) > 0 && reply.Kind != chat.KindSelection {
		b.WriteString("\n")
		b.WriteString(r.actions(reply.Actions, first))
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func (r *Renderer) body(reply chat.Reply) string {
	if reply.Kind == chat.KindError {
		return ErrorStyle.Render(reply.Text)
	}
	if !reply.Markdown {
		return reply.Text
	}

	out, err := r.markdown.Render(reply.Text)
	if err != nil {
		return reply.Text
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) expenseBox(title string, e *model.Expense, footer string) string {
	if e == nil {
		return TitleStyle.Render(title)
	}

	notes := e.Notes
	if notes == "" {
		notes = SubtleStyle.Render("none")
	}
	lines := []string{
		fmt.Sprintf("%s %s", BoldStyle.Render("Amount:  "), model.FormatAmount(e.Amount, r.currency)),
		fmt.Sprintf("%s %s", BoldStyle.Render("Category:"), e.Category),
		fmt.Sprintf("%s %s", BoldStyle.Render("Date:    "), e.Date),
		fmt.Sprintf("%s %s", BoldStyle.Render("Notes:   "), notes),
	}
	if footer != "" {
		lines = append(lines, "", SubtitleStyle.Render(footer))
	}
	return RenderBox(title, lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (r *Renderer) expenseTable(expenses []model.Expense, numbered bool) string {
	headers := []string{"Date", "Category", "Amount", "Notes"}
	if numbered {
		headers = append([]string{"#"}, headers...)
	}

	rows := make([][]string, len(expenses))
	for i, e := range expenses {
		row := []string{e.Date, e.Category, model.FormatAmount(e.Amount, r.currency), e.Notes}
		if numbered {
			row = append([]string{strconv.Itoa(i + 1)}, row...)
		}
		rows[i] = row
	}

	amountCol := 2
	if numbered {
		amountCol = 3
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := TableCellStyle.PaddingLeft(1)
			if row == table.HeaderRow {
				return style.Inherit(TitleStyle)
			}
			if col == amountCol {
				return style.Align(lipgloss.Right)
			}
			return style
		}).
		Render()
}

func (r *Renderer) actions(actions []chat.Action, first int) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = ActionStyle.Render(fmt.Sprintf("/%d", first+i)) + " " + a.Label
	}
	return strings.Join(parts, "   ")
}
