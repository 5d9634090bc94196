package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finmate/internal/cli"
	"github.com/Veraticus/finmate/internal/model"
)

func historyCmd() *cobra.Command {
	var (
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			w := cmd.OutOrStdout()
			if clearAll {
				n, err := store.ClearMessages(ctx)
				if err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}
				fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Removed %d messages", n)))
				return nil
			}

			total, err := store.CountMessages(ctx)
			if err != nil {
				return fmt.Errorf("failed to count messages: %w", err)
			}
			messages, err := store.RecentMessages(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}

			dark, err := store.DarkMode(ctx)
			if err == nil {
				cli.ApplyTheme(dark)
			}
			printHistory(w, messages, total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of messages to show")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete the saved conversation")

	return cmd
}

func printHistory(w io.Writer, messages []model.Message, total int) {
	if len(messages) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("No saved conversation yet"))
		return
	}

	fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("Conversation (%d of %d messages)", len(messages), total)))
	for _, msg := range messages {
		stamp := cli.SubtleStyle.Render(msg.CreatedAt.Format("02 Jan 15:04"))
		speaker := cli.UserStyle.Render("You")
		if msg.Role == model.RoleBot {
			speaker = cli.BotStyle.Render(cli.BotIcon + " FinMate")
		}
		fmt.Fprintf(w, "%s %s: %s\n", stamp, speaker, msg.Text)
	}
}
