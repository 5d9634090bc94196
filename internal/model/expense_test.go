package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseDecode(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantID     ExpenseID
		wantAmount string
	}{
		{
			name:       "numeric id and float amount",
			payload:    `{"id": 42, "amount": 250.5, "category": "Food", "date": "01-02-2025", "notes": null}`,
			wantID:     "42",
			wantAmount: "250.5",
		},
		{
			name:       "string id",
			payload:    `{"id": "abc-1", "amount": 10, "category": "Bills", "date": "03-04-2025"}`,
			wantID:     "abc-1",
			wantAmount: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Expense
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &e))
			assert.Equal(t, tt.wantID, e.ID)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(e.Amount))
		})
	}
}

func TestExpenseUpdateMarshalsNumericAmount(t *testing.T) {
	u := ExpenseUpdate{
		Amount:   decimal.RequireFromString("99.5"),
		Category: "Food",
		Date:     "01-01-2025",
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.InDelta(t, 99.5, raw["amount"], 0.0001)
	assert.Equal(t, "Food", raw["category"])
	assert.Equal(t, "", raw["notes"])
}

func TestFormatAmount(t *testing.T) {
	got := FormatAmount(decimal.RequireFromString("500"), "INR")
	assert.Contains(t, got, "500.00")
	assert.Contains(t, got, "₹")

	unknown := FormatAmount(decimal.RequireFromString("3.456"), "XXZ")
	assert.Equal(t, "3.46 XXZ", unknown)
}

func TestExpenseSummary(t *testing.T) {
	e := Expense{Amount: decimal.NewFromInt(120), Category: "Transport", Date: "05-06-2025"}
	assert.Contains(t, e.Summary("INR"), "for Transport on 05-06-2025")
}

func TestSortedCategories(t *testing.T) {
	a := Analysis{Categories: map[string]float64{"Food": 100, "Bills": 300, "Fun": 100}}
	got := a.SortedCategories()
	require.Len(t, got, 3)
	assert.Equal(t, "Bills", got[0].Name)
	assert.Equal(t, "Food", got[1].Name)
	assert.Equal(t, "Fun", got[2].Name)
}

func TestAnalysisMonthFlags(t *testing.T) {
	a := Analysis{CurrentMonthTotal: 0, LastMonthTotal: 1}
	assert.False(t, a.HasCurrentMonth())
	assert.False(t, a.HasLastMonth())

	a = Analysis{CurrentMonthTotal: 10, LastMonthTotal: 200}
	assert.True(t, a.HasCurrentMonth())
	assert.True(t, a.HasLastMonth())
}
