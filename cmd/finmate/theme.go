package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finmate/internal/cli"
	"github.com/Veraticus/finmate/internal/config"
)

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [dark|light|toggle]",
		Short: "Show or change the color theme",
		Args:  cobra.MaximumNArgs(1),
		ValidArgs: []string{
			config.ThemeDark,
			config.ThemeLight,
			"toggle",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
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

			var dark bool
			switch {
			case len(args) == 0:
				dark, err = store.DarkMode(ctx)
			case args[0] == config.ThemeDark:
				dark, err = true, store.SetDarkMode(ctx, true)
			case args[0] == config.ThemeLight:
				dark, err = false, store.SetDarkMode(ctx, false)
			case args[0] == "toggle":
				dark, err = store.ToggleDarkMode(ctx)
			default:
				return fmt.Errorf("unknown theme %q (use dark, light, or toggle)", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to update theme: %w", err)
			}

			cli.ApplyTheme(dark)
			fmt.Fprintln(cmd.OutOrStdout(), themeLine(dark, cfg.UI.Theme))
			return nil
		},
	}

	return cmd
}

func themeLine(dark bool, override string) string {
	icon, name := cli.SunIcon, config.ThemeLight
	if dark {
		icon, name = cli.MoonIcon, config.ThemeDark
	}
	line := cli.FormatInfo(fmt.Sprintf("%s Theme: %s", icon, name))
	if override != config.ThemeAuto {
		line += "\n" + cli.FormatWarning(fmt.Sprintf("ui.theme is set to %q in your config and takes precedence", override))
	}
	return line
}
