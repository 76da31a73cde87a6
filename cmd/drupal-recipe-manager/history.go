// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d34dman/drupal-recipe-manager/internal/config"
	"github.com/d34dman/drupal-recipe-manager/internal/status"
	"github.com/d34dman/drupal-recipe-manager/internal/tui"
)

const defaultHistoryLimit = 10

func newHistoryCommand(app *App) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent recipe executions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(cmd.Context(), app, limit)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of entries to show (0 shows all)")
	return historyCmd
}

func showHistory(ctx context.Context, app *App, limit int) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: app.configPath})
	if err != nil {
		app.renderIssue(app.stderr, err)
		return err
	}

	entries, err := status.NewStore(cfg.LogsPath(), status.WithLogger(app.logger)).History(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(app.stdout, tui.MutedStyle.Render("No recipes have been executed yet."))
		return nil
	}
	fmt.Fprintln(app.stdout, tui.TitleStyle.Render("Execution History"))
	fmt.Fprintln(app.stdout, tui.HistoryTable(entries))
	return nil
}
