package intent

import (
	"regexp"
	"strings"
)

// Rule is one row of the routing table. Match receives the raw message.
type Rule struct {
	Match func(message string) bool
	Route func(message string) Route
	Name  string
}

// Knowledge answers financial questions locally.
type Knowledge interface {
	Lookup(message string) (string, bool)
	Fallback() string
}

func re(pattern string) *regexp.Regexp {
	if !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	return regexp.MustCompile(pattern)
}

var (
	addPhrases = []string{
		"add expense",
		"add an expense",
		"new expense",
		"record expense",
		"log expense",
	}
	spendVerbs     = re(`spent|paid|bought|purchased|cost|price`)
	bareAmount     = re(`^\d+(\.\d+)?$`)
	currencyAmount = re(`₹\s*\d+|\d+\s*₹|rupees\s*\d+`)

	greetingPrefix = re(`^(hi|hello|hey|greetings|howdy|hola|namaste)`)
	helpTerms      = re(`help|assist|support|guide|how to use`)
	viewTerms      = re(`view|show|display|list|see|my expenses|all expenses`)
	analysisTerms  = re(`analy[sz]e|insight|report|breakdown|statistic|chart|graph`)
	budgetTerms    = re(`budget|tip|advice|suggestion|recommend|save money|saving|financial|finance`)
	identityTerms  = re(`(who|what) are you|tell me about yourself|your name|who made you`)
	gratitudeTerms = re(`thank|thanks|appreciate|grateful|good job|well done`)
	editTerms      = re(`edit|modify|change|update|correct`)
	deleteTerms    = re(`delete|remove|erase`)
	expenseNouns   = re(`expense|entry|record|transaction`)
	questionTerms  = re(`what|how|why|when|where|which|can you|could you|should i|explain|tell me about`)
	financialTerms = re(`budget|saving|money|expense|finance|invest|spend|cost|debt|credit|loan|interest|income|salary`)
)

// IsExpenseAddition reports whether a message looks like it records spending.
func IsExpenseAddition(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range addPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	return spendVerbs.MatchString(lower) ||
		bareAmount.MatchString(strings.TrimSpace(message)) ||
		currencyAmount.MatchString(lower)
}

// IsFinancialQuestion reports whether a message asks something about money.
func IsFinancialQuestion(message string) bool {
	return questionTerms.MatchString(message) && financialTerms.MatchString(message)
}

func matches(r *regexp.Regexp) func(string) bool {
	return r.MatchString
}

func both(a, b *regexp.Regexp) func(string) bool {
	return func(m string) bool { return a.MatchString(m) && b.MatchString(m) }
}

func fixed(kind Kind) func(string) Route {
	return func(string) Route { return Route{Kind: kind} }
}

func isTopicRequest(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "what") && strings.Contains(lower, "talk about")
}

// DefaultRules returns the routing table in priority order. The first rule
// whose Match returns true decides the route.
func DefaultRules(kb Knowledge) []Rule {
	return []Rule{
		{Name: "expense-addition", Match: IsExpenseAddition, Route: fixed(ExpenseAddition)},
		{Name: "greeting", Match: matches(greetingPrefix), Route: fixed(LocalGreeting)},
		{Name: "help", Match: matches(helpTerms), Route: fixed(LocalHelp)},
		{Name: "view", Match: matches(viewTerms), Route: fixed(ViewExpenses)},
		{Name: "analysis", Match: matches(analysisTerms), Route: fixed(AnalyzeExpenses)},
		{Name: "budget", Match: matches(budgetTerms), Route: fixed(BudgetTips)},
		{Name: "identity", Match: matches(identityTerms), Route: fixed(LocalIdentity)},
		{Name: "gratitude", Match: matches(gratitudeTerms), Route: fixed(LocalGratitude)},
		{Name: "edit", Match: both(editTerms, expenseNouns), Route: fixed(EditExpenses)},
		{Name: "delete", Match: both(deleteTerms, expenseNouns), Route: fixed(DeleteExpenses)},
		{
			Name:  "financial-question",
			Match: IsFinancialQuestion,
			Route: func(m string) Route {
				if answer, ok := kb.Lookup(m); ok {
					return Route{Kind: LocalKnowledge, Answer: answer}
				}
				return Route{Kind: LocalKnowledge, Answer: kb.Fallback()}
			},
		},
		{Name: "topics", Match: isTopicRequest, Route: fixed(TopicBrowse)},
	}
}
