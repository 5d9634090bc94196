package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finmate/internal/model"
)

// ExpenseBuilder assembles expense fixtures. IDs are assigned in order
// starting at 1 unless set explicitly.
type ExpenseBuilder struct {
	t        *testing.T
	expenses []model.Expense
}

// NewExpenses starts an empty builder.
func NewExpenses(t *testing.T) *ExpenseBuilder {
	t.Helper()
	return &ExpenseBuilder{t: t}
}

// With adds an expense. amount must parse as a decimal and date is DD-MM-YYYY.
func (b *ExpenseBuilder) With(amount, category, date string) *ExpenseBuilder {
	b.t.Helper()

	v, err := decimal.NewFromString(amount)
	if err != nil {
		b.t.Fatalf("invalid fixture amount %q: %v", amount, err)
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		b.t.Fatalf("invalid fixture date %q: %v", date, err)
	}

	b.expenses = append(b.expenses, model.Expense{
		ID:       model.ExpenseID(strconv.Itoa(len(b.expenses) + 1)),
		Amount:   v,
		Category: category,
		Date:     date,
	})
	return b
}

// WithNotes sets the notes of the last added expense.
func (b *ExpenseBuilder) WithNotes(notes string) *ExpenseBuilder {
	b.t.Helper()
	if len(b.expenses) == 0 {
		b.t.Fatalf("WithNotes called before With")
	}
	b.expenses[len(b.expenses)-1].Notes = notes
	return b
}

// WithRecent adds the fixture most chat tests start from.
func (b *ExpenseBuilder) WithRecent() *ExpenseBuilder {
	b.t.Helper()
	return b.
		With("500", "Food", "01-03-2025").WithNotes("groceries").
		With("120", "Transport", "02-03-2025")
}

// Build returns a copy of the expenses.
func (b *ExpenseBuilder) Build() []model.Expense {
	out := make([]model.Expense, len(b.expenses))
	copy(out, b.expenses)
	return out
}
