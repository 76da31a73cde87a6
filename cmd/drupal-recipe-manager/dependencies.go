// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d34dman/drupal-recipe-manager/internal/manager"
	"github.com/d34dman/drupal-recipe-manager/internal/tui"
)

type dependencyFlags struct {
	inverted bool
	order    bool
	watch    bool
}

func newDependenciesCommand(app *App) *cobra.Command {
	var flags dependencyFlags

	depsCmd := &cobra.Command{
		Use:   "recipe:dependencies [name]",
		Short: "Show recipe dependencies in a tree structure",
		Long: `Show the dependency tree of a recipe.

With --inverted the tree lists the recipes that depend on the given recipe,
answering "what breaks if I change this recipe". With --order the recipe
and its transitive dependencies are printed in install order instead.`,
		Aliases: []string{"deps"},
		Args:    cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completeRecipeNames(cmd.Context(), app, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return showDependencies(cmd.Context(), app, name, flags)
		},
	}

	depsCmd.Flags().BoolVarP(&flags.inverted, "inverted", "i", false, "show which recipes depend on this recipe")
	depsCmd.Flags().BoolVar(&flags.order, "order", false, "print the install order instead of a tree")
	depsCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "redraw when a recipe.yml file changes")
	depsCmd.MarkFlagsMutuallyExclusive("inverted", "order")

	return depsCmd
}

func showDependencies(ctx context.Context, app *App, name string, flags dependencyFlags) error {
	m, err := app.openManager(ctx, managerRequest{})
	if err != nil {
		app.renderIssue(app.stderr, err)
		return err
	}
	if len(m.Names()) == 0 {
		return &ExitError{Code: 1, Err: errors.New("no recipes found in configured directories")}
	}

	if name == "" {
		if !app.interactive() {
			return errors.New("a recipe name is required when not running in a terminal")
		}
		name, err = app.Prompter.PickRecipe(ctx, m.Names(), m.Statuses())
		if err != nil {
			return promptDone(app, err)
		}
	}

	if err := printDependencies(app, m, name, flags); err != nil {
		return err
	}
	if !flags.watch {
		return nil
	}
	return watchLoop(ctx, app, m, managerRequest{}, func(next *manager.Manager) error {
		return printDependencies(app, next, name, flags)
	})
}

func printDependencies(app *App, m *manager.Manager, name string, flags dependencyFlags) error {
	fmt.Fprintln(app.stdout, tui.TitleStyle.Render("Recipe Dependencies"))
	fmt.Fprintln(app.stdout)

	if flags.order {
		order, err := m.InstallOrder(name)
		if err != nil {
			app.renderIssue(app.stderr, err)
			return err
		}
		for i, step := range order {
			fmt.Fprintf(app.stdout, "%3d. %s\n", i+1, step)
		}
		return nil
	}

	render := m.RenderDependencyTree
	if flags.inverted {
		render = m.RenderDependentTree
	}
	lines, err := render(name)
	if err != nil {
		app.renderIssue(app.stderr, err)
		return err
	}
	fmt.Fprintln(app.stdout, tui.StyleTree(lines))
	return nil
}
