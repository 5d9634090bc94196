package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/finmate/internal/common"
	"github.com/Veraticus/finmate/internal/finmate"
	"github.com/Veraticus/finmate/internal/model"
)

func addCmd() *cobra.Command {
	var (
		amount   string
		category string
		date     string
	)

	cmd := &cobra.Command{
		Use:   "add [statement]",
		Short: "Record an expense",
		Example: `  finmate add "spent 250 on groceries"
  finmate add --amount 120 --category Transport --date 03-09-2025`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseAddArgs(strings.Join(args, " "), amount, category)
			if err != nil {
				return err
			}

			when := time.Now()
			if date != "" {
				when, err = time.Parse(model.DateLayout, date)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("Dates look like %s", model.DateLayout), err)
				}
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.printer(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			out.Show(ctx, a.session.AddExpense(ctx, st, when))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Expense amount")
	cmd.Flags().StringVar(&category, "category", "", "Expense category")
	cmd.Flags().StringVar(&date, "date", "", "Expense date (DD-MM-YYYY, default today)")

	return cmd
}

// parseAddArgs builds a statement from free text, with flags filling or
// overriding what the text leaves out.
func parseAddArgs(text, amount, category string) (finmate.Statement, error) {
	st, _ := finmate.ParseExpenseStatement(text)

	if amount != "" {
		v, err := decimal.NewFromString(amount)
		if err != nil || !v.IsPositive() {
			return finmate.Statement{}, common.NewUserError("The amount must be a positive number", err)
		}
		st.Amount = v
	}
	if category = strings.TrimSpace(category); category != "" {
		st.Category = category
	}

	if !st.Amount.IsPositive() || st.Category == "" {
		return finmate.Statement{}, common.NewUserError(
			`Tell me the amount and the category, e.g. finmate add "spent 250 on food"`, nil)
	}
	return st, nil
}
