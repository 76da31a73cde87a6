// SPDX-License-Identifier: MPL-2.0

package manager

import (
	"errors"
	"fmt"
	"strings"

	"github.com/d34dman/drupal-recipe-manager/internal/runtime"
	"github.com/d34dman/drupal-recipe-manager/internal/templater"
)

var (
	// ErrRecipeNotFound is the sentinel wrapped by RecipeNotFoundError.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrCommandNotFound is the sentinel wrapped by CommandNotFoundError.
	ErrCommandNotFound = errors.New("command not found")
	// ErrNonZeroExit is the sentinel wrapped by NonZeroExitError.
	ErrNonZeroExit = errors.New("command exited with non-zero status")
	// ErrNotScanned is returned by lookups before the first Scan.
	ErrNotScanned = errors.New("recipes have not been scanned")
)

type (
	// RecipeNotFoundError reports a name absent from the recipe index.
	RecipeNotFoundError struct {
		Name string
		// Suggestions lists indexed names that look similar.
		Suggestions []string
	}

	// CommandNotFoundError reports a command name absent from configuration.
	CommandNotFoundError struct {
		Name      string
		Available []string
	}

	// NonZeroExitError reports a command that ran and exited non-zero. The
	// run has been recorded as failed.
	NonZeroExitError struct {
		Recipe   string
		Command  string
		ExitCode runtime.ExitCode
	}

	// InvalidRecipeError reports a recipe whose files vanished after the scan.
	InvalidRecipeError = templater.InvalidRecipeError

	// LaunchError reports a command that could not be started.
	LaunchError = runtime.LaunchError
)

func (e *RecipeNotFoundError) Error() string {
	msg := fmt.Sprintf("recipe %q not found", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *RecipeNotFoundError) Unwrap() error { return ErrRecipeNotFound }

func (e *CommandNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("command %q not found in configuration", e.Name)
	}
	return fmt.Sprintf("command %q not found in configuration (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

func (e *CommandNotFoundError) Unwrap() error { return ErrCommandNotFound }

func (e *NonZeroExitError) Error() string {
	return fmt.Sprintf("recipe %s: command %s failed with exit code %d", e.Recipe, e.Command, e.ExitCode)
}

func (e *NonZeroExitError) Unwrap() error { return ErrNonZeroExit }
