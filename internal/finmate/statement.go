package finmate

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var statementAmount = regexp.MustCompile(`[₹$]?\s*(\d+(?:\.\d{1,2})?)`)

// knownCategories are checked in order; the first one found in the text wins.
var knownCategories = []string{
	"food",
	"transport",
	"transportation",
	"entertainment",
	"bills",
	"groceries",
	"shopping",
	"health",
	"others",
}

var categoryAliases = map[string]string{
	"transportation": "transport",
	"groceries":      "food",
}

// Statement is an expense extracted from free text.
type Statement struct {
	Category string
	Amount   decimal.Decimal
}

// ParseExpenseStatement extracts an amount and a known category from text
// like "spent ₹250 on groceries". It reports false unless both are present.
func ParseExpenseStatement(text string) (Statement, bool) {
	m := statementAmount.FindStringSubmatch(text)
	if m == nil {
		return Statement{}, false
	}

	amount, err := decimal.NewFromString(m[1])
	if err != nil || !amount.IsPositive() {
		return Statement{}, false
	}

	lower := strings.ToLower(text)
	for _, cat := range knownCategories {
		if !strings.Contains(lower, cat) {
			continue
		}
		if alias, ok := categoryAliases[cat]; ok {
			cat = alias
		}
		return Statement{Amount: amount, Category: strings.ToUpper(cat[:1]) + cat[1:]}, true
	}

	return Statement{}, false
}
