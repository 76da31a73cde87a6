// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d34dman/drupal-recipe-manager/internal/config"
	"github.com/d34dman/drupal-recipe-manager/internal/tui"
)

const (
	formatYAML = "yaml"
	formatTOML = "toml"
)

// newConfigCommand creates the `config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the recipe manager configuration",
		Long: `Inspect the recipe manager configuration.

Configuration is read from drupal-recipe-manager.yaml in the current
directory, or from the file given with --config. Scalar keys can be
overridden with DRM_* environment variables (for example DRM_LOGSDIR).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, format)
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", formatYAML, "output format (yaml or toml)")
	_ = showCmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{formatYAML, formatTOML}, cobra.ShellCompDirectiveNoFileComp))
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), app)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, cfg.Path)
			return nil
		},
	})

	return cfgCmd
}

func loadConfig(ctx context.Context, app *App) (*config.Config, error) {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: app.configPath})
	if err != nil {
		app.renderIssue(app.stderr, err)
		return nil, err
	}
	return cfg, nil
}

func showConfig(ctx context.Context, app *App, format string) error {
	var render func(*config.Config) (string, error)
	switch format {
	case formatYAML:
		render = config.GenerateYAML
	case formatTOML:
		render = config.GenerateTOML
	default:
		return fmt.Errorf("unsupported format %q (use %s or %s)", format, formatYAML, formatTOML)
	}

	cfg, err := loadConfig(ctx, app)
	if err != nil {
		return err
	}
	out, err := render(cfg)
	if err != nil {
		return fmt.Errorf("render configuration: %w", err)
	}

	fmt.Fprintf(app.stderr, "%s: %s\n", tui.CmdStyle.Render("Config file"), cfg.Path)
	fmt.Fprint(app.stdout, out)
	return nil
}
