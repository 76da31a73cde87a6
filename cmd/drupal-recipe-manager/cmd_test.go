// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"testing"

	"github.com/d34dman/drupal-recipe-manager/internal/config"
	"github.com/d34dman/drupal-recipe-manager/internal/depgraph"
	"github.com/d34dman/drupal-recipe-manager/internal/issue"
	"github.com/d34dman/drupal-recipe-manager/internal/manager"
	"github.com/d34dman/drupal-recipe-manager/internal/runtime"
	"github.com/d34dman/drupal-recipe-manager/internal/status"
	"github.com/d34dman/drupal-recipe-manager/internal/testutil"
	"github.com/d34dman/drupal-recipe-manager/internal/tui"
)

const testConfig = `scanDirs:
  - recipes
commands:
  echo:
    command: "echo ran ${folder_basename}"
    requiresFolder: true
  fail:
    command: "echo broken >&2; exit 3"
logsDir: logs
shell: sh
`

type (
	project struct {
		dir        string
		configPath string
	}

	fakePrompter struct {
		recipes  []string
		commands []string
		confirms []bool

		pickedFrom [][]string
		confirmed  int
	}

	cliResult struct {
		stdout string
		stderr string
		err    error
	}
)

func (p *fakePrompter) PickRecipe(_ context.Context, names []string, _ map[string]status.RecipeStatus) (string, error) {
	p.pickedFrom = append(p.pickedFrom, names)
	if len(p.recipes) == 0 {
		return "", tui.ErrCancelled
	}
	next := p.recipes[0]
	p.recipes = p.recipes[1:]
	return next, nil
}

func (p *fakePrompter) PickCommand(context.Context, config.CommandSet) (string, error) {
	if len(p.commands) == 0 {
		return "", tui.ErrCancelled
	}
	next := p.commands[0]
	p.commands = p.commands[1:]
	return next, nil
}

func (p *fakePrompter) Confirm(context.Context, string, bool) (bool, error) {
	p.confirmed++
	if len(p.confirms) == 0 {
		return false, nil
	}
	next := p.confirms[0]
	p.confirms = p.confirms[1:]
	return next, nil
}

func newProject(t *testing.T, cfg string) *project {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("POSIX shell required")
	}
	dir := t.TempDir()
	root := filepath.Join(dir, "recipes")
	testutil.MustMkdirAll(t, root, 0o755)
	testutil.WriteRecipe(t, root, "site", "blog")
	testutil.WriteRecipe(t, root, "blog", "text")
	testutil.WriteRecipe(t, root, "text")
	return &project{dir: dir, configPath: testutil.WriteConfig(t, dir, cfg)}
}

func (p *project) run(t *testing.T, prompter Prompter, interactive bool, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Prompter:    prompter,
		Stdout:      &stdout,
		Stderr:      &stderr,
		Interactive: func() bool { return interactive },
	})
	root := NewRootCommand(app)
	root.SetArgs(append([]string{"--config", p.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (p *project) statusPath() string {
	return filepath.Join(p.dir, "logs", status.StatusFileName)
}

func TestRecipe_List(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	res := p.run(t, nil, false, "recipe", "--list")
	if res.err != nil {
		t.Fatalf("recipe --list error: %v\n%s", res.err, res.stderr)
	}
	for _, want := range []string{"Recipe Status Summary", "Available Recipes", "site", "blog", "text", "Never"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestRecipe_RunByName(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	res := p.run(t, nil, false, "recipe", "blog")
	if res.err != nil {
		t.Fatalf("recipe blog error: %v\n%s", res.err, res.stderr)
	}
	for _, want := range []string{"Recipe: blog", "Actual command: echo ran", "ran blog", "executed successfully"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, res.stdout)
		}
	}
	if raw := testutil.MustReadFile(t, p.statusPath()); !strings.Contains(raw, "blog:") {
		t.Errorf("status file does not record blog:\n%s", raw)
	}
}

func TestRecipe_RunsInRecipeDirWithOperatorInput(t *testing.T) {
	t.Parallel()

	p := newProject(t, "scanDirs: [recipes]\ncommands:\n  ask:\n    command: 'read answer; echo \"$answer in $(pwd -P)\"'\nshell: sh\n")
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Prompter:    &fakePrompter{},
		Stdin:       strings.NewReader("yes\n"),
		Stdout:      &stdout,
		Stderr:      &stderr,
		Interactive: func() bool { return true },
	})
	root := NewRootCommand(app)
	root.SetArgs([]string{"--config", p.configPath, "recipe", "blog", "-c", "ask"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("recipe blog error: %v\n%s", err, stderr.String())
	}

	dir, err := filepath.EvalSymlinks(filepath.Join(p.dir, "recipes", "blog"))
	if err != nil {
		t.Fatalf("EvalSymlinks() error: %v", err)
	}
	if want := "yes in " + dir; !strings.Contains(stdout.String(), want) {
		t.Errorf("output missing %q:\n%s", want, stdout.String())
	}
}

func TestRecipe_NonZeroExitCode(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	res := p.run(t, nil, false, "recipe", "text", "-c", "fail")

	var exitErr *ExitError
	if !errors.As(res.err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("error = %v, want ExitError with code 3", res.err)
	}
	if !errors.Is(res.err, manager.ErrNonZeroExit) {
		t.Error("ExitError should wrap the non-zero exit error")
	}
	if !strings.Contains(res.stderr, "broken") {
		t.Errorf("stderr lines not relayed:\n%s", res.stderr)
	}
	if !strings.Contains(res.stdout, "failed with exit code 3") {
		t.Errorf("stdout = %s", res.stdout)
	}
}

func TestRecipe_UnknownRecipe(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	res := p.run(t, nil, false, "recipe", "blgo")
	if !errors.Is(res.err, manager.ErrRecipeNotFound) {
		t.Fatalf("error = %v, want ErrRecipeNotFound", res.err)
	}
	if _, err := os.Stat(p.statusPath()); !os.IsNotExist(err) {
		t.Error("lookup failure must not write the status file")
	}
}

func TestRecipe_DryRun(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	res := p.run(t, nil, false, "recipe", "site", "--dry-run")
	if res.err != nil {
		t.Fatalf("dry run error: %v", res.err)
	}
	if !strings.Contains(res.stdout, "Dry run") || strings.Contains(res.stdout, "executed successfully") {
		t.Errorf("dry run output:\n%s", res.stdout)
	}
	if _, err := os.Stat(p.statusPath()); !os.IsNotExist(err) {
		t.Error("dry run must not write the status file")
	}
}

func TestRecipe_DryRunInvalidShellNamesRecipeAndCommand(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	res := p.run(t, nil, false, "recipe", "text", "--dry-run", "-m", `{"broken": {"command": "echo ("}}`)

	var ae *issue.ActionableError
	if !errors.As(res.err, &ae) {
		t.Fatalf("error = %v, want an actionable error", res.err)
	}
	if want := (issue.Subject{Recipe: "text", Command: "broken"}); ae.Subject != want {
		t.Errorf("Subject = %+v, want %+v", ae.Subject, want)
	}
	if !strings.Contains(res.stderr, "Check the quoting of the command template") {
		t.Errorf("stderr missing hint:\n%s", res.stderr)
	}
}

func TestRecipe_CommandsOverride(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	res := p.run(t, nil, false, "recipe", "text", "-m", `{"hello": {"command": "echo hello ${folder_basename}", "requiresFolder": true}}`)
	if res.err != nil {
		t.Fatalf("recipe -m error: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "hello text") {
		t.Errorf("override command not used:\n%s", res.stdout)
	}

	bad := p.run(t, nil, false, "recipe", "text", "-m", `{not json`)
	if !errors.Is(bad.err, config.ErrConfiguration) {
		t.Errorf("invalid JSON error = %v, want ErrConfiguration", bad.err)
	}
}

func TestRecipe_NoNameWithoutTerminal(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	res := p.run(t, nil, false, "recipe")
	if res.err == nil || !strings.Contains(res.err.Error(), "recipe name is required") {
		t.Errorf("error = %v", res.err)
	}
}

func TestRecipe_InteractiveLoop(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	prompter := &fakePrompter{
		recipes:  []string{"blog", "text"},
		commands: []string{"echo", "fail"},
		confirms: []bool{true, false},
	}
	res := p.run(t, prompter, true, "recipe")
	if res.err != nil {
		t.Fatalf("interactive loop error: %v\n%s", res.err, res.stderr)
	}
	if len(prompter.pickedFrom) != 2 || prompter.confirmed != 2 {
		t.Errorf("picks=%d confirms=%d, want 2 and 2", len(prompter.pickedFrom), prompter.confirmed)
	}
	if !strings.Contains(res.stdout, "ran blog") || !strings.Contains(res.stdout, "failed with exit code 3") {
		t.Errorf("loop output:\n%s", res.stdout)
	}

	raw := testutil.MustReadFile(t, p.statusPath())
	if !strings.Contains(raw, "blog:") || !strings.Contains(raw, "text:") {
		t.Errorf("both runs should be recorded:\n%s", raw)
	}
}

func TestRecipe_InteractiveSingleCommand(t *testing.T) {
	t.Parallel()

	p := newProject(t, "scanDirs: [recipes]\ncommands:\n  only:\n    command: \"true\"\nshell: sh\n")
	prompter := &fakePrompter{recipes: []string{"site"}}
	res := p.run(t, prompter, true, "recipe")
	if res.err != nil {
		t.Fatalf("interactive loop error: %v", res.err)
	}
	if !strings.Contains(res.stdout, "Using command:") {
		t.Errorf("single command should be used without asking:\n%s", res.stdout)
	}
}

func TestRecipe_InteractiveCancel(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	prompter := &fakePrompter{}
	if res := p.run(t, prompter, true, "recipe"); res.err != nil {
		t.Errorf("cancelling the picker should exit cleanly, got %v", res.err)
	}
	if prompter.confirmed != 0 {
		t.Error("confirm should not be asked after cancelling")
	}
}

func TestDependencies(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "forward", args: []string{"recipe:dependencies", "site"}, want: []string{"site", "└── blog", "    └── text"}},
		{name: "inverted", args: []string{"recipe:dependencies", "text", "-i"}, want: []string{"text", "└── blog", "    └── site"}},
		{name: "order", args: []string{"recipe:dependencies", "site", "--order"}, want: []string{"1. text", "2. blog", "3. site"}},
		{name: "alias", args: []string{"deps", "blog"}, want: []string{"blog", "└── text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := p.run(t, nil, false, tt.args...)
			if res.err != nil {
				t.Fatalf("%v error: %v", tt.args, res.err)
			}
			for _, want := range tt.want {
				if !strings.Contains(res.stdout, want) {
					t.Errorf("output missing %q:\n%s", want, res.stdout)
				}
			}
		})
	}
}

func TestDependencies_UnknownRecipe(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	res := p.run(t, nil, false, "recipe:dependencies", "nope")
	if !errors.Is(res.err, manager.ErrRecipeNotFound) {
		t.Errorf("error = %v, want ErrRecipeNotFound", res.err)
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	empty := p.run(t, nil, false, "history")
	if empty.err != nil || !strings.Contains(empty.stdout, "No recipes have been executed yet") {
		t.Fatalf("history before runs = %v\n%s", empty.err, empty.stdout)
	}

	p.run(t, nil, false, "recipe", "blog")
	p.run(t, nil, false, "recipe", "text")

	res := p.run(t, nil, false, "history", "-n", "1")
	if res.err != nil {
		t.Fatalf("history error: %v", res.err)
	}
	if !strings.Contains(res.stdout, "text") || strings.Contains(res.stdout, "ran blog") {
		t.Errorf("history -n 1 output:\n%s", res.stdout)
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)

	yamlOut := p.run(t, nil, false, "config", "show")
	if yamlOut.err != nil || !strings.Contains(yamlOut.stdout, "scanDirs:") || !strings.Contains(yamlOut.stdout, "echo:") {
		t.Errorf("config show = %v\n%s", yamlOut.err, yamlOut.stdout)
	}
	tomlOut := p.run(t, nil, false, "config", "show", "--format", "toml")
	if tomlOut.err != nil || !strings.Contains(tomlOut.stdout, "logsDir") {
		t.Errorf("config show --format toml = %v\n%s", tomlOut.err, tomlOut.stdout)
	}
	bad := p.run(t, nil, false, "config", "show", "--format", "json")
	if bad.err == nil {
		t.Error("unsupported format should fail")
	}
	path := p.run(t, nil, false, "config", "path")
	if path.err != nil || strings.TrimSpace(path.stdout) != p.configPath {
		t.Errorf("config path = %q, %v; want %s", path.stdout, path.err, p.configPath)
	}
}

func TestConfigNotFound(t *testing.T) {
	t.Parallel()

	p := &project{configPath: filepath.Join(t.TempDir(), "missing.yaml")}
	res := p.run(t, nil, false, "recipe", "--list")
	if !errors.Is(res.err, config.ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", res.err)
	}
	if !strings.Contains(res.stderr, "Configuration file not found") {
		t.Errorf("issue not rendered:\n%s", res.stderr)
	}
}

func TestCompletion(t *testing.T) {
	t.Parallel()

	p := newProject(t, testConfig)
	res := p.run(t, nil, false, "completion", "bash")
	if res.err != nil || !strings.Contains(res.stdout, "drupal-recipe-manager") {
		t.Errorf("completion bash = %v", res.err)
	}
}

func TestIssueFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
		ok   bool
	}{
		{name: "config not found", err: &config.ConfigurationError{Err: config.ErrConfigNotFound}, want: issue.ConfigNotFoundId, ok: true},
		{name: "config invalid", err: &config.ConfigurationError{Field: "scanDirs", Err: errors.New("empty")}, want: issue.ConfigInvalidId, ok: true},
		{name: "recipe not found", err: fmt.Errorf("run: %w", &manager.RecipeNotFoundError{Name: "x"}), want: issue.RecipeNotFoundId, ok: true},
		{name: "command not found", err: &manager.CommandNotFoundError{Name: "x"}, want: issue.CommandNotFoundId, ok: true},
		{name: "invalid recipe", err: &manager.InvalidRecipeError{Recipe: "x", Err: os.ErrNotExist}, want: issue.InvalidRecipeId, ok: true},
		{name: "shell not found", err: &runtime.LaunchError{Command: "x", Err: runtime.ErrShellNotFound}, want: issue.ShellNotFoundId, ok: true},
		{name: "cycle", err: &depgraph.CycleError{Root: "a", Cycle: []string{"a", "b"}}, want: issue.DependencyCycleId, ok: true},
		{name: "other", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := issueFor(tt.err)
			if got != tt.want || ok != tt.ok {
				t.Errorf("issueFor() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q", got)
	}
	cause := errors.New("cause")
	err := &ExitError{Code: 1, Err: cause}
	if err.Error() != "cause" || !errors.Is(err, cause) {
		t.Errorf("ExitError does not expose its cause")
	}
}
