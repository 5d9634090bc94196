package cli

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finmate/internal/chat"
	"github.com/Veraticus/finmate/internal/model"
)

func TestRenderer(t *testing.T) {
	r, err := NewRenderer(true, 80, model.DefaultCurrency)
	require.NoError(t, err)

	tests := []struct {
		name    string
		reply   chat.Reply
		want    []string
		notWant []string
	}{
		{
			name:  "error",
			reply: chat.Reply{Kind: chat.KindError, Text: "Sorry, the request took too long to complete."},
			want:  []string{"FinMate", "took too long"},
		},
		{
			name: "expense list with actions",
			reply: chat.Reply{
				Kind:     chat.KindExpenses,
				Text:     "Here are your recent expenses:",
				Expenses: testExpenses,
				Actions:  []chat.Action{{Label: "Edit Recent"}, {Label: "Delete"}},
			},
			want:    []string{"₹500.00", "Transport", "/3 Edit Recent", "/4 Delete"},
			notWant: []string{"│ #"},
		},
		{
			name: "selection is numbered without shortcuts",
			reply: chat.Reply{
				Kind:     chat.KindSelection,
				Text:     "Select an expense to edit:",
				Footer:   "Pick an expense to edit it, or type the number.",
				Expenses: testExpenses,
				Actions:  []chat.Action{{Label: "₹500.00 for Food on 01-03-2025"}},
			},
			want:    []string{"#", "Pick an expense to edit it"},
			notWant: []string{"/3"},
		},
		{
			name:  "delete confirmation",
			reply: chat.Reply{Kind: chat.KindConfirmDelete, Text: "Are you sure?", Footer: "This action cannot be undone.", Expense: &testExpenses[0]},
			want:  []string{"Are you sure?", "Amount:", "dinner", "This action cannot be undone."},
		},
		{
			name:    "markdown",
			reply:   chat.Reply{Kind: chat.KindTips, Text: "**Tips for Food**\n\n- Cook at home\n", Markdown: true},
			want:    []string{"Tips for Food", "Cook at home"},
			notWant: []string{"**"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ansi.Strip(r.Render(tt.reply, 3))
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestApplyTheme(t *testing.T) {
	t.Cleanup(func() { ApplyTheme(true) })

	ApplyTheme(false)
	assert.Equal(t, LightPalette.Error, ErrorStyle.GetForeground())

	ApplyTheme(true)
	assert.Equal(t, DarkPalette.Error, ErrorStyle.GetForeground())
}
