// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/d34dman/drupal-recipe-manager/internal/issue"
	"github.com/d34dman/drupal-recipe-manager/internal/manager"
	"github.com/d34dman/drupal-recipe-manager/internal/runtime"
	"github.com/d34dman/drupal-recipe-manager/internal/status"
	"github.com/d34dman/drupal-recipe-manager/internal/tui"
)

const (
	clearScreen = "\033[2J\033[1;1H"
	// exitInterrupted is the conventional exit code after SIGINT.
	exitInterrupted = 130
)

type recipeFlags struct {
	command      string
	list         bool
	scanDirs     []string
	commandsJSON string
	dryRun       bool
	watch        bool
}

func newRecipeCommand(app *App) *cobra.Command {
	var flags recipeFlags

	recipeCmd := &cobra.Command{
		Use:   "recipe [name]",
		Short: "Run a command against a recipe",
		Long: `Run a configured command against a recipe.

Without a recipe name the manager shows the status summary and lets you
pick a recipe and a command interactively, repeating until you stop.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completeRecipeNames(cmd.Context(), app, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return runRecipeCommand(cmd.Context(), app, name, flags)
		},
	}

	recipeCmd.Flags().StringVarP(&flags.command, "command", "c", "", "command to run (default is the configured default command)")
	recipeCmd.Flags().BoolVarP(&flags.list, "list", "l", false, "list recipes with their status and exit")
	recipeCmd.Flags().StringSliceVarP(&flags.scanDirs, "scan-dirs", "d", nil, "directories to scan for recipes (overrides scanDirs)")
	recipeCmd.Flags().StringVarP(&flags.commandsJSON, "commands", "m", "", "commands as a JSON object (overrides commands)")
	recipeCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the expanded command without running it")
	recipeCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "with --list, redraw when recipes or their status change")

	return recipeCmd
}

func runRecipeCommand(ctx context.Context, app *App, name string, flags recipeFlags) error {
	scanDirs, err := absPaths(flags.scanDirs)
	if err != nil {
		return err
	}
	m, err := app.openManager(ctx, managerRequest{ScanDirs: scanDirs, CommandsJSON: flags.commandsJSON})
	if err != nil {
		app.renderIssue(app.stderr, err)
		return err
	}

	if len(m.Names()) == 0 {
		if rendered, rerr := issue.Get(issue.NoRecipesFoundId).Render(app.glamourStyle()); rerr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
		return &ExitError{Code: 1, Err: errors.New("no recipes found in configured directories")}
	}

	switch {
	case flags.list:
		printOverview(app, m)
		if !flags.watch {
			return nil
		}
		req := managerRequest{ScanDirs: scanDirs, CommandsJSON: flags.commandsJSON}
		return watchLoop(ctx, app, m, req, func(next *manager.Manager) error {
			printOverview(app, next)
			return nil
		})
	case name != "":
		return runOne(ctx, app, m, name, flags.command, flags.dryRun)
	case !app.interactive():
		printOverview(app, m)
		return errors.New("a recipe name is required when not running in a terminal")
	}
	return interactiveLoop(ctx, app, m, flags)
}

// interactiveLoop repeats select, run and confirm until the operator stops.
func interactiveLoop(ctx context.Context, app *App, m *manager.Manager, flags recipeFlags) error {
	commands := m.Config().Commands
	for {
		fmt.Fprint(app.stdout, clearScreen)
		printOverview(app, m)
		fmt.Fprintln(app.stdout, tui.MutedStyle.Render("Press Ctrl+C to exit"))

		name, err := app.Prompter.PickRecipe(ctx, m.Names(), m.Statuses())
		if err != nil {
			return promptDone(app, err)
		}

		commandName := flags.command
		switch {
		case commandName != "":
		case len(commands) == 1:
			commandName = commands[0].Name
			fmt.Fprintf(app.stdout, "Using command: %s\n", tui.CmdStyle.Render(commandName))
		default:
			commandName, err = app.Prompter.PickCommand(ctx, commands)
			if err != nil {
				return promptDone(app, err)
			}
		}

		if err := runOne(ctx, app, m, name, commandName, flags.dryRun); err != nil {
			if errors.Is(err, runtime.ErrInterrupted) {
				return err
			}
			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				fmt.Fprintln(app.stderr, tui.ErrorStyle.Render("Error: ")+err.Error())
			}
		}

		again, err := app.Prompter.Confirm(ctx, "Do you want to run another recipe?", true)
		if err != nil || !again {
			return promptDone(app, err)
		}
	}
}

// runOne runs a single recipe and prints its output and outcome. A non-zero
// exit is returned as an *ExitError carrying the command's exit code.
func runOne(ctx context.Context, app *App, m *manager.Manager, name, commandName string, dryRun bool) error {
	p, err := m.Prepare(name, commandName)
	if err != nil {
		app.renderIssue(app.stderr, err)
		return err
	}

	fmt.Fprintf(app.stdout, "Recipe: %s\n", tui.SuccessStyle.Render(p.Recipe.Name))
	fmt.Fprintf(app.stdout, "Command: %s\n", tui.CmdStyle.Render(p.Command.Command))
	fmt.Fprintf(app.stdout, "Actual command: %s\n", tui.WarningStyle.Render(p.Expanded))

	if dryRun {
		if err := runtime.Validate(p.Expanded); err != nil {
			err = issue.For("parse expanded command").
				Recipe(p.Recipe.Name).
				Command(p.Command.Name).
				Hint("Check the quoting of the command template").
				Wrap(err).
				Err()
			app.renderIssue(app.stderr, err)
			return err
		}
		fmt.Fprintf(app.stdout, "Working directory: %s\n", p.Dir)
		fmt.Fprintln(app.stdout, tui.MutedStyle.Render("Dry run: nothing was executed."))
		return nil
	}
	fmt.Fprintln(app.stdout)

	res, err := m.ExpandAndRun(ctx, name, commandName, func(l runtime.Line) {
		if l.Stream == runtime.Stderr {
			fmt.Fprintln(app.stderr, l.Text)
			return
		}
		fmt.Fprintln(app.stdout, l.Text)
	})

	var nonZero *manager.NonZeroExitError
	switch {
	case errors.Is(err, runtime.ErrInterrupted):
		fmt.Fprintln(app.stdout)
		fmt.Fprintln(app.stdout, tui.WarningStyle.Render("Quitting Drupal Recipe Manager..."))
		return &ExitError{Code: exitInterrupted, Err: err}
	case errors.As(err, &nonZero):
		fmt.Fprintf(app.stdout, "\n%s %s\n", tui.ErrorStyle.Render(tui.Icon(status.OutcomeFailed)),
			fmt.Sprintf("Recipe %s failed with exit code %d", p.Recipe.Name, nonZero.ExitCode))
		return &ExitError{Code: int(nonZero.ExitCode), Err: err}
	case err != nil:
		err = issue.For("run command").
			Recipe(p.Recipe.Name).
			Command(p.Command.Name).
			Hint("Preview the expanded command with --dry-run").
			Wrap(err).
			Err()
		app.renderIssue(app.stderr, err)
		return err
	}

	app.logger.Debug("recipe finished", "result", res.String())
	fmt.Fprintf(app.stdout, "\n%s Recipe %s executed successfully\n", tui.SuccessStyle.Render(tui.Icon(status.OutcomeSucceeded)), p.Recipe.Name)
	return nil
}

func printOverview(app *App, m *manager.Manager) {
	statuses := m.Statuses()
	names := m.Names()
	fmt.Fprintln(app.stdout, tui.TitleStyle.Render("Drupal Recipe Manager"))
	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, tui.TitleStyle.Render("Recipe Status Summary"))
	fmt.Fprintln(app.stdout, tui.SummaryTable(status.Summarize(names, statuses)))
	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, tui.TitleStyle.Render("Available Recipes"))
	fmt.Fprintln(app.stdout, tui.RecipeTable(names, statuses))
}

// promptDone ends the interactive loop. Backing out of a prompt is a normal
// exit.
func promptDone(app *App, err error) error {
	if err == nil || errors.Is(err, tui.ErrCancelled) {
		fmt.Fprintln(app.stdout, tui.MutedStyle.Render("Bye."))
		return nil
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(app.stdout, tui.WarningStyle.Render("Quitting Drupal Recipe Manager..."))
		return &ExitError{Code: exitInterrupted, Err: runtime.ErrInterrupted}
	}
	return err
}

func absPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

func completeRecipeNames(ctx context.Context, app *App, args []string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	m, err := app.openManager(ctx, managerRequest{})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return m.Names(), cobra.ShellCompDirectiveNoFileComp
}
