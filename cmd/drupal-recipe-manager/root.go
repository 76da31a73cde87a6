// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for drupal-recipe-manager.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/d34dman/drupal-recipe-manager/internal/tui"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "drupal-recipe-manager",
		Short: "Discover, inspect and run Drupal recipes",
		Long: tui.TitleStyle.Render("drupal-recipe-manager") + tui.SubtitleStyle.Render(" - Discover, inspect and run Drupal recipes") + `

Recipes are directories holding a recipe.yml descriptor. The manager scans
the configured directories, draws their dependency trees, runs a configured
shell command against a recipe and remembers how the last run went.

` + tui.SubtitleStyle.Render("Examples:") + `
  drupal-recipe-manager recipe                       Pick a recipe interactively
  drupal-recipe-manager recipe blog -c drushRecipe   Run drushRecipe for 'blog'
  drupal-recipe-manager recipe --list                Show the status summary
  drupal-recipe-manager recipe:dependencies blog -i  Show what requires 'blog'
  drupal-recipe-manager history -n 20                Show the last 20 runs`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.logger = newLogger(app.stderr, app.verbose)
			slog.SetDefault(app.logger)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is ./drupal-recipe-manager.yaml)")

	rootCmd.AddCommand(newRecipeCommand(app))
	rootCmd.AddCommand(newDependenciesCommand(app))
	rootCmd.AddCommand(newHistoryCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newCompletionCommand())

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
