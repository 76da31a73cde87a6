// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/d34dman/drupal-recipe-manager/internal/config"
	"github.com/d34dman/drupal-recipe-manager/internal/depgraph"
	"github.com/d34dman/drupal-recipe-manager/internal/issue"
	"github.com/d34dman/drupal-recipe-manager/internal/manager"
	"github.com/d34dman/drupal-recipe-manager/internal/runtime"
)

// issueFor maps well-known failures to their help article.
func issueFor(err error) (issue.Id, bool) {
	var (
		invalid *manager.InvalidRecipeError
		cycle   *depgraph.CycleError
	)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return issue.ConfigNotFoundId, true
	case errors.Is(err, config.ErrConfiguration):
		return issue.ConfigInvalidId, true
	case errors.Is(err, manager.ErrRecipeNotFound):
		return issue.RecipeNotFoundId, true
	case errors.Is(err, manager.ErrCommandNotFound):
		return issue.CommandNotFoundId, true
	case errors.As(err, &invalid):
		return issue.InvalidRecipeId, true
	case errors.Is(err, runtime.ErrShellNotFound):
		return issue.ShellNotFoundId, true
	case errors.As(err, &cycle):
		return issue.DependencyCycleId, true
	}
	return 0, false
}

// renderIssue writes the help article for err, if any, followed by the
// actionable details when err carries them.
func (a *App) renderIssue(w io.Writer, err error) {
	if id, ok := issueFor(err); ok {
		if rendered, rerr := issue.Get(id).Render(a.glamourStyle()); rerr == nil {
			fmt.Fprint(w, rendered)
		}
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.HasHints() {
		fmt.Fprintln(w, ae.Format(a.verbose))
	}
}

func (a *App) glamourStyle() string {
	if a.interactive() {
		return "dark"
	}
	return "notty"
}
