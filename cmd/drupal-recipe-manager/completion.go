// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/d34dman/drupal-recipe-manager/internal/tui"
)

// newCompletionCommand creates the `drupal-recipe-manager completion` command.
func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for drupal-recipe-manager.

To enable shell completions, run one of the following commands:

` + tui.SubtitleStyle.Render("Bash:") + `
  # Add to ~/.bashrc:
  eval "$(drupal-recipe-manager completion bash)"

  # Or install system-wide:
  drupal-recipe-manager completion bash > /etc/bash_completion.d/drupal-recipe-manager

` + tui.SubtitleStyle.Render("Zsh:") + `
  # Add to ~/.zshrc:
  eval "$(drupal-recipe-manager completion zsh)"

  # Or install to fpath:
  drupal-recipe-manager completion zsh > "${fpath[1]}/_drupal-recipe-manager"

` + tui.SubtitleStyle.Render("Fish:") + `
  drupal-recipe-manager completion fish > ~/.config/fish/completions/drupal-recipe-manager.fish

` + tui.SubtitleStyle.Render("PowerShell:") + `
  drupal-recipe-manager completion powershell | Out-String | Invoke-Expression

  # Or add to $PROFILE:
  drupal-recipe-manager completion powershell >> $PROFILE
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
}
