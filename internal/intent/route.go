// Package intent decides, for each chat message, how it should be handled:
// answered locally, sent to the FinMate server, or used to continue a
// selection flow.
package intent

import "github.com/Veraticus/finmate/internal/conversation"

// Kind is the tag of a Route.
type Kind int

// Route kinds, in no particular order; rule order lives in DefaultRules.
const (
	BackendFallback Kind = iota
	LocalGreeting
	LocalHelp
	LocalIdentity
	LocalGratitude
	LocalKnowledge
	TopicBrowse
	ViewExpenses
	AnalyzeExpenses
	BudgetTips
	EditExpenses
	DeleteExpenses
	ExpenseAddition
)

var kindNames = map[Kind]string{
	BackendFallback: "backend-fallback",
	LocalGreeting:   "local-greeting",
	LocalHelp:       "local-help",
	LocalIdentity:   "local-identity",
	LocalGratitude:  "local-gratitude",
	LocalKnowledge:  "local-knowledge",
	TopicBrowse:     "topic-browse",
	ViewExpenses:    "view-expenses",
	AnalyzeExpenses: "analyze-expenses",
	BudgetTips:      "budget-tips",
	EditExpenses:    "edit-expenses",
	DeleteExpenses:  "delete-expenses",
	ExpenseAddition: "expense-addition",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsLocal reports whether the route is answered without any network call.
func (k Kind) IsLocal() bool {
	switch k {
	case LocalGreeting, LocalHelp, LocalIdentity, LocalGratitude, LocalKnowledge, TopicBrowse:
		return true
	default:
		return false
	}
}

// Route is the classifier's decision for one message.
type Route struct {
	// Answer is set for LocalKnowledge.
	Answer string
	Kind   Kind
}

// Selection is emitted instead of a route when a typed number picks one of
// the offered expenses.
type Selection struct {
	Index int
	Op    conversation.Op
}

// Decision is the outcome of Classify: either a selection or a route.
type Decision struct {
	Selection *Selection
	Route     Route
	// Abandoned is true when a selection flow was pending but the message
	// did not select anything; the caller must reset the flow.
	Abandoned bool
}

// IsSelection reports whether the decision picks a candidate.
func (d Decision) IsSelection() bool {
	return d.Selection != nil
}
