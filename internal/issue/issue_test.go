// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load configuration"},
			expected: "failed to load configuration",
		},
		{
			name:     "recipe and command",
			err:      &ActionableError{Operation: "run command", Subject: Subject{Recipe: "standard", Command: "install"}},
			expected: "failed to run command (recipe standard, command install)",
		},
		{
			name: "file with cause",
			err: &ActionableError{
				Operation: "load configuration",
				Subject:   Subject{File: "drupal-recipe-manager.yaml"},
				Cause:     errors.New("file not found"),
			},
			expected: "failed to load configuration (drupal-recipe-manager.yaml): file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("permission denied")
	err := For("write status").
		File("logs/recipe_status.yaml").
		Hint("Check the logs directory permissions").
		Wrap(fmt.Errorf("open: %w", root)).
		Err()

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("Err() = %T, want *ActionableError", err)
	}
	plain := ae.Format(false)
	if !strings.Contains(plain, "• Check the logs directory permissions") {
		t.Errorf("Format(false) missing hint: %q", plain)
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain: %q", plain)
	}

	verbose := ae.Format(true)
	for _, want := range []string{"1. open: permission denied", "2. permission denied"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q: %q", want, verbose)
		}
	}
	if !errors.Is(err, root) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	if err := For("").Recipe("x").Err(); err != nil {
		t.Errorf("Err() without operation = %v, want nil", err)
	}

	b := For("run command").Recipe("blog").Command("install").Hint("first")
	first := b.Err()
	b.Hint("second")

	var ae *ActionableError
	if !errors.As(first, &ae) {
		t.Fatalf("Err() = %T, want *ActionableError", first)
	}
	if want := (Subject{Recipe: "blog", Command: "install"}); ae.Subject != want {
		t.Errorf("Subject = %+v, want %+v", ae.Subject, want)
	}
	if len(ae.Hints) != 1 || !ae.HasHints() {
		t.Errorf("Hints = %v, later builder calls must not leak into a built error", ae.Hints)
	}
	if (&ActionableError{Operation: "x"}).HasHints() {
		t.Error("HasHints() = true without hints")
	}
}

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(issues))
	}
	for i, v := range values {
		if v.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, v.Id(), i+1)
		}
		if strings.TrimSpace(string(v.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", v.Id())
		}
	}
}

func TestIssue_RenderUsesRenderer(t *testing.T) {
	original := render
	t.Cleanup(func() { render = original })

	var gotStyle string
	render = func(in, stylePath string) (string, error) {
		gotStyle = stylePath
		return "rendered:" + in, nil
	}

	out, err := Get(RecipeNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}
	if !strings.Contains(out, "Recipe not found!") {
		t.Errorf("Render() = %q, want recipe-not-found message", out)
	}
}
