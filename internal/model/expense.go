// Package model defines the data types exchanged with the FinMate backend.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ISO code used to render amounts when none is configured.
const DefaultCurrency = money.INR

// DateLayout is the backend's DD-MM-YYYY date format expressed as a Go layout.
const DateLayout = "02-01-2006"

// ExpenseID is the backend's opaque expense identifier. The server emits
// integers, but nothing on the client relies on that.
type ExpenseID string

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *ExpenseID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode expense id: %w", err)
		}
		*id = ExpenseID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode expense id: %w", err)
	}
	*id = ExpenseID(n.String())
	return nil
}

// Expense is a single expense record owned by the backend.
type Expense struct {
	ID       ExpenseID       `json:"id"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Notes    string          `json:"notes,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// Summary renders the one-line description used in selection lists.
func (e Expense) Summary(currency string) string {
	return fmt.Sprintf("%s for %s on %s", FormatAmount(e.Amount, currency), e.Category, e.Date)
}

// ExpenseUpdate is the body of PUT /api/expenses/{id}.
type ExpenseUpdate struct {
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Notes    string          `json:"notes"`
	Amount   decimal.Decimal `json:"amount"`
}

// MarshalJSON emits the amount as a JSON number, which is what the server parses.
func (u ExpenseUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   json.Number `json:"amount"`
		Category string      `json:"category"`
		Date     string      `json:"date"`
		Notes    string      `json:"notes"`
	}{
		Amount:   json.Number(u.Amount.StringFixed(2)),
		Category: u.Category,
		Date:     u.Date,
		Notes:    u.Notes,
	})
}

// FormatAmount renders a decimal amount in the given currency, e.g. ₹500.00.
func FormatAmount(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}

	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
