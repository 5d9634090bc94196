package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/finmate/internal/chat"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Review recorded expenses",
	}

	cmd.AddCommand(expenseActionCmd("list", "Show your most recent expenses", chat.ActionViewExpenses))
	cmd.AddCommand(expenseActionCmd("analyze", "Compare this month's spending with last month", chat.ActionAnalyze))
	cmd.AddCommand(tipsCmd())

	return cmd
}

func expenseActionCmd(use, short, key string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return invoke(cmd, chat.Action{Key: key})
		},
	}
}

func tipsCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Get budget tips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if category != "" {
				return invoke(cmd, chat.Action{Key: chat.ActionCategoryTips, Arg: category})
			}
			return invoke(cmd, chat.Action{Key: chat.ActionBudgetTips})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Tips for one category (food, transport, ...)")

	return cmd
}

func invoke(cmd *cobra.Command, action chat.Action) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.printer(ctx, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	out.Show(ctx, a.session.Invoke(ctx, action))
	return nil
}
