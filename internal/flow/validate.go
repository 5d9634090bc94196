package flow

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finmate/internal/common"
	"github.com/Veraticus/finmate/internal/model"
)

var datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// Validation messages shown in the chat when the edit form is rejected.
const (
	AmountMessage   = "Please enter a valid amount greater than zero."
	CategoryMessage = "Please enter a category."
	DateMessage     = "Please enter a valid date in DD-MM-YYYY format."
)

// EditInput is the raw content of the edit form.
type EditInput struct {
	Amount   string
	Category string
	Date     string
	Notes    string
}

// InputFrom prefills the edit form from an existing expense.
func InputFrom(e model.Expense) EditInput {
	return EditInput{
		Amount:   e.Amount.StringFixed(2),
		Category: e.Category,
		Date:     e.Date,
		Notes:    e.Notes,
	}
}

// Validate checks amount, then category, then date, and stops at the first
// failure. The returned error is a *common.ValidationError. The amount is
// rounded to the two places the server stores before it is checked.
func Validate(in EditInput) (model.ExpenseUpdate, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err == nil {
		amount = amount.Round(2)
	}
	if err != nil || !amount.IsPositive() {
		return model.ExpenseUpdate{}, &common.ValidationError{Field: "amount", Message: AmountMessage}
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		return model.ExpenseUpdate{}, &common.ValidationError{Field: "category", Message: CategoryMessage}
	}

	date := strings.TrimSpace(in.Date)
	if !datePattern.MatchString(date) {
		return model.ExpenseUpdate{}, &common.ValidationError{Field: "date", Message: DateMessage}
	}

	return model.ExpenseUpdate{
		Amount:   amount,
		Category: category,
		Date:     date,
		Notes:    strings.TrimSpace(in.Notes),
	}, nil
}
