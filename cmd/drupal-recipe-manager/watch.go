// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/d34dman/drupal-recipe-manager/internal/discovery"
	"github.com/d34dman/drupal-recipe-manager/internal/manager"
	"github.com/d34dman/drupal-recipe-manager/internal/status"
	"github.com/d34dman/drupal-recipe-manager/internal/tui"
	"github.com/d34dman/drupal-recipe-manager/internal/watch"
)

// watchLoop redraws with a freshly scanned manager whenever a recipe
// descriptor or the status file changes. It returns when ctx is cancelled.
func watchLoop(ctx context.Context, app *App, m *manager.Manager, req managerRequest, redraw func(*manager.Manager) error) error {
	cfg := m.Config()
	roots := append(cfg.ResolvedScanDirs(), cfg.LogsPath())

	w, err := watch.New(watch.Config{
		Roots:  roots,
		Names:  []string{discovery.DescriptorFileName, status.StatusFileName},
		Logger: app.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			app.logger.Debug("change detected", "paths", changed)
			next, err := app.openManager(ctx, req)
			if err != nil {
				app.renderIssue(app.stderr, err)
				return err
			}
			fmt.Fprint(app.stdout, clearScreen)
			if err := redraw(next); err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, tui.MutedStyle.Render(watchHint))
			return nil
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, tui.MutedStyle.Render(watchHint))
	return w.Run(ctx)
}

const watchHint = "Watching for changes. Press Ctrl+C to exit."
