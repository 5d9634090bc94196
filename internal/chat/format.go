package chat

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finmate/internal/conversation"
	"github.com/Veraticus/finmate/internal/model"
)

const trendWidth = 24

// tipCategories are offered after the general budget tips.
var tipCategories = []string{"Food", "Transportation", "Entertainment"}

func expensesReply(expenses []model.Expense) Reply {
	return Reply{
		Kind:     KindExpenses,
		Text:     "Here are your recent expenses:",
		Expenses: expenses,
		Actions: []Action{
			{Key: ActionEditRecent, Label: "Edit Recent"},
			{Key: ActionDeleteRecent, Label: "Delete"},
		},
		Cue: true,
	}
}

func selectionReply(op conversation.Op, expenses []model.Expense, currency string) Reply {
	actions := make([]Action, len(expenses))
	for i, e := range expenses {
		actions[i] = Action{
			Key:   ActionPick,
			Label: e.Summary(currency),
			Arg:   strconv.Itoa(i + 1),
		}
	}

	return Reply{
		Kind:     KindSelection,
		Text:     fmt.Sprintf("Select an expense to %s:", op),
		Footer:   fmt.Sprintf("Pick an expense to %s it, or type the number.", op),
		Expenses: expenses,
		Actions:  actions,
		Cue:      true,
	}
}

// PercentChangeText describes the month-over-month change.
func PercentChangeText(a model.Analysis) string {
	switch {
	case !a.HasLastMonth():
		return "You had no expenses last month"
	case !a.HasCurrentMonth():
		return "100% lower (no expenses this month)"
	case a.PercentChange >= 0:
		return formatNumber(a.PercentChange) + "% higher than last month"
	default:
		return formatNumber(math.Abs(a.PercentChange)) + "% lower than last month"
	}
}

// Recommendation turns the analysis into one line of advice.
func Recommendation(a model.Analysis) string {
	switch {
	case !a.HasCurrentMonth():
		return "You have no expenses this month. If this is intentional, great job saving money!"
	case a.PercentChange > 20:
		return fmt.Sprintf("Your spending increased significantly. Consider reducing %s expenses to stay within budget.", a.HighestCategory.Name)
	case a.PercentChange > 10:
		return fmt.Sprintf("Watch your %s spending as it's higher than last month.", a.HighestCategory.Name)
	case a.PercentChange >= 0:
		return "Your spending is relatively stable compared to last month."
	default:
		return "You're spending less than last month. Keep up the good work!"
	}
}

func analysisReply(a model.Analysis, currency string) Reply {
	if !a.HasCurrentMonth() && !a.HasLastMonth() {
		return Reply{
			Kind: KindAnalysis,
			Text: "**Expense Analysis**\n\n" +
				"I don't see any expense records for this month or last month. " +
				"Add some expenses to get insights about your spending patterns.\n\n" +
				"Would you like to add an expense now?",
			Markdown: true,
			Analysis: &a,
			Actions:  []Action{{Key: ActionAddExpense, Label: "Add Expense"}},
			Cue:      true,
		}
	}

	return Reply{
		Kind:     KindAnalysis,
		Text:     AnalysisMarkdown(a, currency),
		Markdown: true,
		Analysis: &a,
		Cue:      true,
	}
}

// AnalysisMarkdown renders the analysis as markdown.
func AnalysisMarkdown(a model.Analysis, currency string) string {
	var b strings.Builder

	hasCategories := len(a.Categories) > 0
	highest := "None (no expenses this month)"
	frequent := "None (no expenses this month)"
	if hasCategories {
		highest = fmt.Sprintf("%s (%s%% of total)", a.HighestCategory.Name, formatNumber(a.HighestCategory.Percentage))
		frequent = fmt.Sprintf("%s (%d transactions)", a.MostFrequent.Name, a.MostFrequent.Count)
	}

	b.WriteString("**Expense Analysis**\n\n")
	b.WriteString("Based on your spending patterns:\n\n")
	fmt.Fprintf(&b, "- **Highest spending category:** %s\n", highest)
	fmt.Fprintf(&b, "- **Most frequent category:** %s\n", frequent)
	fmt.Fprintf(&b, "- **Month-to-month change:** %s\n\n", PercentChangeText(a))
	fmt.Fprintf(&b, "💡 **Recommendation:** %s\n", Recommendation(a))

	if hasCategories {
		b.WriteString("\n**Spending Breakdown:**\n\n")
		b.WriteString("| Category | Amount | Share |\n|---|---:|---:|\n")
		for _, c := range a.SortedCategories() {
			share := 0.0
			if a.CurrentMonthTotal > 0 {
				share = c.Amount / a.CurrentMonthTotal * 100
			}
			fmt.Fprintf(&b, "| %s | %s | %.1f%% |\n", c.Name, model.FormatAmount(decimal.NewFromFloat(c.Amount), currency), share)
		}
	}

	if len(a.MonthlyTrend) > 0 {
		b.WriteString("\n**Monthly Spending Trend:**\n\n```\n")
		b.WriteString(trendChart(a.MonthlyTrend, currency))
		b.WriteString("```\n")
		if a.Period != nil {
			fmt.Fprintf(&b, "\n_Analysis compares %s to %s_\n", a.Period.CurrentMonth.Name, a.Period.LastMonth.Name)
		}
	}

	return b.String()
}

func trendChart(trend []model.MonthTotal, currency string) string {
	maxTotal := 1.0
	labelWidth := 0
	for _, m := range trend {
		maxTotal = math.Max(maxTotal, m.Total)
		labelWidth = max(labelWidth, len([]rune(m.Month)))
	}

	var b strings.Builder
	for i, m := range trend {
		bar := "█"
		if i < len(trend)-1 {
			bar = "▒"
		}
		width := int(math.Round(m.Total / maxTotal * trendWidth))
		amount := model.FormatAmount(decimal.NewFromFloat(m.Total).Round(0), currency)
		fmt.Fprintf(&b, "%-*s %s %s\n", labelWidth, m.Month, strings.Repeat(bar, width), amount)
	}
	return b.String()
}

func tipsReply(tips model.BudgetTips, category string) Reply {
	reply := Reply{Kind: KindTips, Markdown: true, Tips: &tips, Cue: true}
	title := titleCase(category)
	if tips.Category != "" {
		title = titleCase(tips.Category)
	}

	var b strings.Builder
	switch {
	case tips.IsAIGenerated && tips.AITip != "":
		if category == "" {
			b.WriteString("**Personalized Budget Tip**\n\n")
		} else {
			fmt.Fprintf(&b, "**Personalized Tip for %s**\n\n", title)
		}
		b.WriteString(tips.AITip)
		b.WriteString("\n\n_AI-generated advice based on your spending patterns_\n")
	case category == "":
		b.WriteString("**Budget Tips**\n\nHere are some helpful tips to save money:\n\n")
		for i, tip := range tips.GeneralTips {
			fmt.Fprintf(&b, "%d. %s\n", i+1, tip)
		}
		b.WriteString("\nWould you like more specific advice for any category?\n")
		for _, c := range tipCategories {
			reply.Actions = append(reply.Actions, Action{Key: ActionCategoryTips, Label: c, Arg: strings.ToLower(c)})
		}
	default:
		fmt.Fprintf(&b, "**Tips for %s**\n\n", title)
		for _, tip := range tips.Tips {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
		b.WriteString("\nWould you like to see tips for another category?\n")
	}

	reply.Text = b.String()
	return reply
}

// addedMarker identifies the server's confirmation of a new expense.
const addedMarker = "Expense added successfully"

// formatAddition restructures the server's "Expense added successfully!
// <details>" confirmation. It reports false for any other reply.
func formatAddition(reply string) (string, bool) {
	if !strings.Contains(reply, addedMarker) {
		return reply, false
	}

	_, details, _ := strings.Cut(reply, "!")
	return strings.TrimSpace("✅ Expense added successfully!\n" + strings.TrimSpace(details)), true
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
