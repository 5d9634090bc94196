package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a single message and print the reply",
		Example: `  finmate ask "what is an emergency fund?"
  finmate ask "show my expenses"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			out.Show(ctx, a.session.Submit(ctx, strings.Join(args, " ")))
			return nil
		},
	}
}
