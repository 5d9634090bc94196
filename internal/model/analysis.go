package model

import "sort"

// Analysis is the payload of GET /api/expenses/analyze.
type Analysis struct {
	Categories        map[string]float64 `json:"categories"`
	Period            *AnalysisPeriod    `json:"period,omitempty"`
	HighestCategory   CategoryShare      `json:"highest_category"`
	MostFrequent      CategoryCount      `json:"most_frequent"`
	MonthlyTrend      []MonthTotal       `json:"monthly_trend"`
	CurrentMonthTotal float64            `json:"current_month_total"`
	LastMonthTotal    float64            `json:"last_month_total"`
	PercentChange     float64            `json:"percent_change"`
}

// CategoryShare names the category with the largest share of spending.
type CategoryShare struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// CategoryCount names the category with the most transactions.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthTotal is one point of the monthly spending trend.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// AnalysisPeriod describes the two months being compared.
type AnalysisPeriod struct {
	CurrentMonth PeriodBounds `json:"current_month"`
	LastMonth    PeriodBounds `json:"last_month"`
}

// PeriodBounds is a named date range.
type PeriodBounds struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Name  string `json:"name"`
}

// HasCurrentMonth reports whether anything was spent this month.
func (a Analysis) HasCurrentMonth() bool {
	return a.CurrentMonthTotal > 0
}

// HasLastMonth reports whether anything was spent last month. The server
// substitutes 1 for an empty month to avoid dividing by zero, hence the > 1.
func (a Analysis) HasLastMonth() bool {
	return a.LastMonthTotal > 1
}

// CategoryAmount pairs a category with its total.
type CategoryAmount struct {
	Name   string
	Amount float64
}

// SortedCategories returns the category totals, highest first.
func (a Analysis) SortedCategories() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(a.Categories))
	for name, amount := range a.Categories {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount == out[j].Amount {
			return out[i].Name < out[j].Name
		}
		return out[i].Amount > out[j].Amount
	})
	return out
}

// BudgetTips is the payload of GET /api/budget/tips.
type BudgetTips struct {
	AITip         string   `json:"ai_tip,omitempty"`
	Category      string   `json:"category,omitempty"`
	GeneralTips   []string `json:"general_tips,omitempty"`
	Tips          []string `json:"tips,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	IsAIGenerated bool     `json:"is_ai_generated"`
}
