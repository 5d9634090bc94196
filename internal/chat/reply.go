package chat

import (
	"context"

	"github.com/Veraticus/finmate/internal/model"
)

// ReplyKind tells a renderer how to draw a Reply.
type ReplyKind int

// Reply kinds.
const (
	KindText ReplyKind = iota
	KindError
	KindSuggestions
	KindExpenses
	KindSelection
	KindEditForm
	KindConfirmDelete
	KindAnalysis
	KindTips
	KindTopics
)

func (k ReplyKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindError:
		return "error"
	case KindSuggestions:
		return "suggestions"
	case KindExpenses:
		return "expenses"
	case KindSelection:
		return "selection"
	case KindEditForm:
		return "edit-form"
	case KindConfirmDelete:
		return "confirm-delete"
	case KindAnalysis:
		return "analysis"
	case KindTips:
		return "tips"
	case KindTopics:
		return "topics"
	default:
		return "unknown"
	}
}

// Action keys understood by Session.Invoke.
const (
	ActionAddExpense   = "add_expense"
	ActionViewExpenses = "view_expenses"
	ActionAnalyze      = "analyze_expenses"
	ActionBudgetTips   = "budget_tips"
	ActionCategoryTips = "category_tips"
	ActionTopic        = "topic"
	ActionPick         = "pick"
	ActionEditRecent   = "edit_recent"
	ActionDeleteRecent = "delete_recent"
	ActionRetry        = "retry"
)

// Action is a follow-up the user can trigger from a reply, the terminal
// counterpart of a button.
type Action struct {
	Key   string
	Label string
	// Arg carries the category, topic, pick index, or message to replay.
	Arg string
}

// Reply is one bot message.
type Reply struct {
	Analysis *model.Analysis
	Tips     *model.BudgetTips
	// Expense is the subject of an edit form or delete confirmation.
	Expense *model.Expense
	Text    string
	// Footer is printed after Expenses.
	Footer   string
	Expenses []model.Expense
	Actions  []Action
	Kind     ReplyKind
	Markdown bool
	// Cue asks the renderer to play the notification cue.
	Cue bool
}

// Task is network work started by a message. It returns the replies to
// append once it completes. Tasks may run concurrently.
type Task func(ctx context.Context) []Reply

// Outcome is the result of handling one input: replies to show now and
// tasks whose replies arrive later, in completion order.
type Outcome struct {
	Replies []Reply
	Tasks   []Task
}

// Pending reports whether the outcome started network work.
func (o Outcome) Pending() bool {
	return len(o.Tasks) > 0
}

func immediate(replies ...Reply) Outcome {
	return Outcome{Replies: replies}
}

func text(s string) Reply {
	return Reply{Kind: KindText, Text: s, Cue: true}
}

func failure(s string) Reply {
	return Reply{Kind: KindError, Text: s, Cue: true}
}
