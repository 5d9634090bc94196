package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finmate/internal/cli"
	"github.com/Veraticus/finmate/internal/tui"
)

func chatCmd() *cobra.Command {
	var (
		fullScreen bool
		noHistory  bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: `Start a conversation with FinMate.

Type things like "I spent 250 on groceries", "show my expenses", or
"give me budget tips". Numbered suggestions can be followed with /1, /2...`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), !noHistory)
			if err != nil {
				return err
			}
			defer a.Close()

			handler := cli.NewInterruptHandler(os.Stdout)
			ctx := handler.HandleInterrupts(cmd.Context())

			dark := a.darkMode(ctx)
			sound := a.cfg.Chat.Sound && !quiet

			if fullScreen {
				opts := []tui.Option{
					tui.WithDarkMode(dark),
					tui.WithThemeToggle(a.store.ToggleDarkMode),
				}
				if sound {
					opts = append(opts, tui.WithSound(os.Stdout))
				}
				return tui.Run(ctx, a.session, opts...)
			}

			repl, err := cli.NewREPL(a.session, cli.Options{
				In:          os.Stdin,
				Out:         os.Stdout,
				ToggleTheme: a.store.ToggleDarkMode,
				Dark:        dark,
				Sound:       sound,
				Typing:      isTerminal(os.Stdout),
			})
			if err != nil {
				return err
			}

			if err := repl.Run(ctx); err != nil && !isCancelled(err) {
				return fmt.Errorf("chat failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fullScreen, "tui", false, "Use the full-screen interface")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not save this conversation")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Disable the notification sound")

	return cmd
}
