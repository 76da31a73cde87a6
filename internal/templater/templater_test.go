// SPDX-License-Identifier: MPL-2.0

package templater

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/d34dman/drupal-recipe-manager/internal/config"
	"github.com/d34dman/drupal-recipe-manager/internal/recipe"
	"github.com/d34dman/drupal-recipe-manager/internal/testutil"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

func newRecipe(t *testing.T, root, name string) *recipe.Recipe {
	t.Helper()
	return &recipe.Recipe{Name: filepath.Base(name), Path: testutil.WriteRecipe(t, root, name)}
}

// words parses cmd and returns the literal value of each word of its only call.
func words(t *testing.T, cmd string) []string {
	t.Helper()
	f, err := syntax.NewParser().Parse(strings.NewReader(cmd), "")
	if err != nil {
		t.Fatalf("expanded command does not parse: %v\n%s", err, cmd)
	}
	call, ok := f.Stmts[0].Cmd.(*syntax.CallExpr)
	if !ok {
		t.Fatalf("expected a simple command, got %T", f.Stmts[0].Cmd)
	}
	out := make([]string, len(call.Args))
	for i, w := range call.Args {
		lit, err := expand.Literal(nil, w)
		if err != nil {
			t.Fatalf("expand word %d: %v", i, err)
		}
		out[i] = lit
	}
	return out
}

func TestExpand_BuiltIns(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	r := newRecipe(t, base, "web/recipes/my blog")
	tpl := New(base, nil)

	got, err := tpl.Expand("echo ${folder} ${folder_basename} {${folder_dirname}} ${folder_relative}", r)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}

	w := words(t, got)
	want := []string{
		"echo",
		r.Path,
		"my blog",
		filepath.Dir(r.Path),
		filepath.Join("web", "recipes", "my blog"),
	}
	if len(w) != len(want) {
		t.Fatalf("words = %q, want %q", w, want)
	}
	for i := range want {
		if w[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, w[i], want[i])
		}
	}
}

func TestExpand_NoPlaceholdersIsIdentity(t *testing.T) {
	t.Parallel()

	r := newRecipe(t, t.TempDir(), "x")
	tpl := New("", []config.VariableTransform{{Name: "y", Input: VarFolder, Search: ".", Replace: "z"}})

	inputs := []string{
		"",
		"ddev drush cr",
		"echo $HOME | tr a-z A-Z > out.txt",
		"echo {folder} $folder $(pwd)",
	}
	for _, in := range inputs {
		got, err := tpl.Expand(in, r)
		if err != nil {
			t.Fatalf("Expand(%q) error: %v", in, err)
		}
		if got != in {
			t.Errorf("Expand(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestExpand_UnknownPlaceholderVerbatim(t *testing.T) {
	t.Parallel()

	r := newRecipe(t, t.TempDir(), "x")
	got, err := New("", nil).Expand("echo ${HOME} {${nope}} ${folder_basename}", r)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if got != "echo ${HOME} {${nope}} x" {
		t.Errorf("Expand() = %q", got)
	}
}

func TestExpand_KeysWithPunctuation(t *testing.T) {
	t.Parallel()

	r := newRecipe(t, t.TempDir(), "x")
	tpl := New("", []config.VariableTransform{
		{Name: "recipe-name", Input: VarFolderBasename, Search: "x", Replace: "y"},
		{Name: "site.name", Input: "main"},
	})

	tests := []struct {
		template string
		want     string
	}{
		{"echo ${recipe-name} {${recipe-name}}", "echo y y"},
		{"echo ${site.name}", "echo main"},
		{"echo ${other-name} ${HOME:-/root}", "echo ${other-name} ${HOME:-/root}"},
	}
	for _, tt := range tests {
		got, err := tpl.Expand(tt.template, r)
		if err != nil {
			t.Fatalf("Expand(%q) error: %v", tt.template, err)
		}
		if got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.template, got, tt.want)
		}
	}
}

func TestExpand_ValuesAreSingleWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{name: "spaces", value: "a b  c"},
		{name: "single quote", value: "it's"},
		{name: "command substitution", value: "$(rm -rf /)"},
		{name: "semicolon", value: "x; echo pwned"},
		{name: "glob", value: "*"},
		{name: "empty", value: ""},
	}

	r := newRecipe(t, t.TempDir(), "x")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tpl := New("", []config.VariableTransform{{Name: "v", Input: tt.value}})
			got, err := tpl.Expand("echo ${v}", r)
			if err != nil {
				t.Fatalf("Expand() error: %v", err)
			}
			w := words(t, got)
			if len(w) != 2 || w[1] != tt.value {
				t.Errorf("words = %q, want [echo %q]", w, tt.value)
			}
		})
	}
}

func TestVariables_TransformOrder(t *testing.T) {
	t.Parallel()

	r := newRecipe(t, t.TempDir(), "my-recipe")
	x := config.VariableTransform{Name: "x", Input: VarFolderBasename, Search: "-", Replace: "_"}
	y := config.VariableTransform{Name: "y", Input: "x", Search: "^", Replace: "drupal_"}

	inOrder := New("", []config.VariableTransform{x, y}).Variables(r)
	if got, _ := inOrder.Get("y"); got != "drupal_my_recipe" {
		t.Errorf("y = %q, want drupal_my_recipe", got)
	}

	reversed := New("", []config.VariableTransform{y, x}).Variables(r)
	if got, _ := reversed.Get("y"); got != "drupal_x" {
		t.Errorf("y with forward reference = %q, want literal fallback drupal_x", got)
	}
	if keys := reversed.Keys(); keys[len(keys)-2] != "y" || keys[len(keys)-1] != "x" {
		t.Errorf("Keys() = %v, want transformations in declaration order", keys)
	}
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		search, replace, input, want string
	}{
		{search: "-", replace: "_", input: "a-b-c", want: "a_b_c"},
		{search: `^web/`, replace: "", input: "web/recipes", want: "recipes"},
		{search: `(\w+)_(\w+)`, replace: "${2}_${1}", input: "foo_bar", want: "bar_foo"},
		{search: "[", replace: "(", input: "a[b[", want: "a(b("},
		{search: "", replace: "x", input: "same", want: "same"},
	}
	for _, tt := range tests {
		if got := substitute(tt.search, tt.replace, tt.input); got != tt.want {
			t.Errorf("substitute(%q, %q, %q) = %q, want %q", tt.search, tt.replace, tt.input, got, tt.want)
		}
	}
}

func TestExpand_InvalidRecipe(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	r := newRecipe(t, root, "gone")
	if err := os.Remove(r.DescriptorPath()); err != nil {
		t.Fatal(err)
	}

	_, err := New("", nil).Expand("echo ${folder}", r)
	var invalid *InvalidRecipeError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expand() error = %v, want *InvalidRecipeError", err)
	}
	if invalid.Recipe != "gone" {
		t.Errorf("Recipe = %q, want gone", invalid.Recipe)
	}

	missingDir := &recipe.Recipe{Name: "ghost", Path: filepath.Join(root, "ghost")}
	if _, err := New("", nil).Expand("true", missingDir); !errors.As(err, &invalid) {
		t.Errorf("missing directory should be invalid, got %v", err)
	}
}

func TestQuote_AlwaysOneWord(t *testing.T) {
	t.Parallel()

	if got := Quote("a\x00b"); got != "'a\x00b'" {
		t.Errorf("Quote with NUL = %q, want single-quote fallback", got)
	}
}
