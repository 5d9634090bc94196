package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finmate/internal/flow"
	"github.com/Veraticus/finmate/internal/model"
	"github.com/Veraticus/finmate/internal/tui/themes"
)

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

var formLabels = []string{"Amount", "Category", "Date (DD-MM-YYYY)", "Notes"}

// editForm is the inline expense edit form.
type editForm struct {
	expense model.Expense
	err     string
	inputs  []textinput.Model
	focus   int
}

func newEditForm(expense model.Expense) editForm {
	in := flow.InputFrom(expense)
	values := []string{in.Amount, in.Category, in.Date, in.Notes}

	inputs := make([]textinput.Model, len(values))
	for i, v := range values {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 64
		ti.SetValue(v)
		inputs[i] = ti
	}
	inputs[0].Focus()

	return editForm{expense: expense, inputs: inputs}
}

// Input returns the form's current values.
func (f editForm) Input() flow.EditInput {
	return flow.EditInput{
		Amount:   f.inputs[0].Value(),
		Category: f.inputs[1].Value(),
		Date:     f.inputs[2].Value(),
		Notes:    f.inputs[3].Value(),
	}
}

func (f editForm) Update(msg tea.KeyMsg, keys KeyMap) (editForm, formAction, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		return f, formCancel, nil
	case key.Matches(msg, keys.Save):
		return f, formSubmit, nil
	case key.Matches(msg, keys.Send):
		if f.focus == len(f.inputs)-1 {
			return f, formSubmit, nil
		}
		return f.move(1), formNone, nil
	case key.Matches(msg, keys.NextField):
		return f.move(1), formNone, nil
	case key.Matches(msg, keys.PrevField):
		return f.move(-1), formNone, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, formNone, cmd
}

func (f editForm) move(delta int) editForm {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
	return f
}

func (f editForm) View(theme themes.Theme, width int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Edit Expense"))
	b.WriteString("\n")

	labelWidth := 0
	for _, l := range formLabels {
		labelWidth = max(labelWidth, len(l))
	}

	for i, input := range f.inputs {
		label := lipgloss.NewStyle().Width(labelWidth + 1).Render(formLabels[i])
		if i == f.focus {
			label = theme.Selected.Render(label)
		} else {
			label = theme.Bold.Render(label)
		}
		b.WriteString(label + " " + input.View() + "\n")
	}

	if f.err != "" {
		b.WriteString(theme.StatusError.Render(f.err) + "\n")
	}
	b.WriteString(theme.Subtitle.Render("Tab to move, Enter on the last field or Ctrl+S to save, Esc to cancel"))

	return theme.RoundedBox.Width(max(width-4, 20)).Render(b.String())
}
