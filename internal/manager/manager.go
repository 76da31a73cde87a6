// SPDX-License-Identifier: MPL-2.0

// Package manager is the core facade consumed by the CLI: it scans recipes,
// answers dependency queries, expands and runs commands, and records the
// outcome.
//
// Execution is strictly sequential: a Manager runs at most one command at a
// time and is not safe for concurrent use.
package manager

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/d34dman/drupal-recipe-manager/internal/config"
	"github.com/d34dman/drupal-recipe-manager/internal/depgraph"
	"github.com/d34dman/drupal-recipe-manager/internal/discovery"
	"github.com/d34dman/drupal-recipe-manager/internal/recipe"
	"github.com/d34dman/drupal-recipe-manager/internal/runtime"
	"github.com/d34dman/drupal-recipe-manager/internal/status"
	"github.com/d34dman/drupal-recipe-manager/internal/templater"
)

type (
	// Manager wires discovery, the recipe index, templating, execution and
	// status persistence for one configuration.
	Manager struct {
		cfg       *config.Config
		scanner   *discovery.Scanner
		templater *templater.Templater
		runtime   runtime.Runtime
		status    *status.Store
		logger    *slog.Logger
		stdin     io.Reader

		store       *recipe.Store
		walker      *depgraph.Walker
		diagnostics []discovery.Diagnostic
	}

	// Option configures a Manager.
	Option func(*Manager)

	// ExecutionResult is the outcome of ExpandAndRun for a command that ran
	// to completion.
	ExecutionResult struct {
		Recipe      string
		CommandName string
		// Command is the fully expanded command line.
		Command  string
		Dir      string
		ExitCode runtime.ExitCode
		Duration time.Duration
	}

	// Prepared is an expanded command ready to run.
	Prepared struct {
		Recipe  *recipe.Recipe
		Command config.Command
		// Expanded is the command line after substitution.
		Expanded string
		// Dir is the working directory the command runs in, always the
		// recipe directory.
		Dir string
	}
)

// WithRuntime overrides the runtime selected from configuration.
func WithRuntime(rt runtime.Runtime) Option {
	return func(m *Manager) { m.runtime = rt }
}

// WithStatusStore overrides the status store rooted at the logs directory.
func WithStatusStore(s *status.Store) Option {
	return func(m *Manager) { m.status = s }
}

// WithStdin forwards r to the running command, so commands that prompt can
// read operator input.
func WithStdin(r io.Reader) Option {
	return func(m *Manager) { m.stdin = r }
}

// WithLogger sets the logger used by the manager and its components.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New creates a Manager for cfg.
func New(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	if m.runtime == nil {
		rt, err := runtime.New(runtime.Options{Mode: string(cfg.Runtime), Shell: cfg.Shell, TTY: cfg.TTY})
		if err != nil {
			return nil, &config.ConfigurationError{Field: "runtime", Err: err}
		}
		m.runtime = rt
	}
	if m.status == nil {
		m.status = status.NewStore(cfg.LogsPath(), status.WithLogger(m.logger))
	}
	m.scanner = discovery.NewScanner(discovery.WithLogger(m.logger))
	m.templater = templater.New(cfg.BaseDir, cfg.Variables)
	return m, nil
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Runtime returns the execution runtime.
func (m *Manager) Runtime() runtime.Runtime {
	return m.runtime
}

// Scan rediscovers recipes and rebuilds the index. The previous index is
// replaced. No recipes is not an error.
func (m *Manager) Scan(ctx context.Context) ([]*recipe.Recipe, error) {
	res, err := m.scanner.Scan(ctx, m.cfg.ResolvedScanDirs())
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		m.logger.Warn(d.Message, "code", d.Code, "path", d.Path)
	}
	m.store = recipe.Build(res.Locations, m.logger)
	m.walker = depgraph.NewWalker(m.store)
	m.diagnostics = res.Diagnostics
	return m.store.Recipes(), nil
}

// Diagnostics returns the warnings produced by the last scan.
func (m *Manager) Diagnostics() []discovery.Diagnostic {
	return m.diagnostics
}

// Names returns the scanned recipe names sorted alphabetically.
func (m *Manager) Names() []string {
	if m.store == nil {
		return nil
	}
	return m.store.Names()
}

// Recipe looks a scanned recipe up by name.
func (m *Manager) Recipe(name string) (*recipe.Recipe, error) {
	if m.store == nil {
		return nil, ErrNotScanned
	}
	r, ok := m.store.FindByName(name)
	if !ok {
		return nil, &RecipeNotFoundError{Name: name, Suggestions: similar(name, m.store.Names())}
	}
	return r, nil
}

// StatusOf returns the recorded status of name.
func (m *Manager) StatusOf(name string) (status.RecipeStatus, bool) {
	return m.status.StatusOf(name)
}

// Statuses returns every recorded status.
func (m *Manager) Statuses() map[string]status.RecipeStatus {
	return m.status.Load()
}

// History returns the last limit history entries.
func (m *Manager) History(limit int) ([]status.HistoryEntry, error) {
	return m.status.History(limit)
}

// DependenciesOf returns the resolved dependencies of name.
func (m *Manager) DependenciesOf(name string) ([]*recipe.Recipe, error) {
	r, err := m.Recipe(name)
	if err != nil {
		return nil, err
	}
	return m.store.DependenciesOf(r), nil
}

// DependentsOf returns the names of recipes depending on name.
func (m *Manager) DependentsOf(name string) ([]string, error) {
	if _, err := m.Recipe(name); err != nil {
		return nil, err
	}
	return m.store.DependentsOf(name), nil
}

// RenderDependencyTree renders what name needs.
func (m *Manager) RenderDependencyTree(name string) ([]string, error) {
	if _, err := m.Recipe(name); err != nil {
		return nil, err
	}
	return m.walker.RenderDependencyTree(name), nil
}

// RenderDependentTree renders what requires name.
func (m *Manager) RenderDependentTree(name string) ([]string, error) {
	if _, err := m.Recipe(name); err != nil {
		return nil, err
	}
	return m.walker.RenderDependentTree(name), nil
}

// InstallOrder returns name and its transitive dependencies, dependencies
// first.
func (m *Manager) InstallOrder(name string) ([]string, error) {
	if _, err := m.Recipe(name); err != nil {
		return nil, err
	}
	return m.walker.InstallOrder(name)
}

// Command resolves a configured command. An empty name selects the default
// command.
func (m *Manager) Command(name string) (config.Command, error) {
	if name == "" {
		name = m.cfg.DefaultCommandName()
	}
	cmd, ok := m.cfg.Commands.Lookup(name)
	if !ok {
		return config.Command{}, &CommandNotFoundError{Name: name, Available: m.cfg.Commands.Names()}
	}
	return cmd, nil
}

// Prepare resolves the recipe and command and expands the template without
// running it.
func (m *Manager) Prepare(recipeName, commandName string) (*Prepared, error) {
	r, err := m.Recipe(recipeName)
	if err != nil {
		return nil, err
	}
	cmd, err := m.Command(commandName)
	if err != nil {
		return nil, err
	}
	expanded, err := m.templater.Expand(cmd.Command, r)
	if err != nil {
		return nil, err
	}
	return &Prepared{Recipe: r, Command: cmd, Expanded: expanded, Dir: r.Path}, nil
}

// Expand returns the expanded command line for a dry run.
func (m *Manager) Expand(recipeName, commandName string) (string, error) {
	p, err := m.Prepare(recipeName, commandName)
	if err != nil {
		return "", err
	}
	return p.Expanded, nil
}

// ExpandAndRun expands the command for the recipe, runs it and records the
// outcome. Output lines are passed to onLine as they arrive.
//
// Lookup, expansion and launch failures return before anything is recorded,
// as does an interrupted run. A non-zero exit is recorded and returned as a
// *NonZeroExitError together with the result.
func (m *Manager) ExpandAndRun(ctx context.Context, recipeName, commandName string, onLine runtime.LineHandler) (*ExecutionResult, error) {
	p, err := m.Prepare(recipeName, commandName)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("running recipe", "recipe", p.Recipe.Name, "command", p.Command.Name, "runtime", m.runtime.Name())
	res, err := m.runtime.Run(ctx, runtime.Request{
		Command: p.Expanded,
		Dir:     p.Dir,
		Env:     recipeEnv(p),
		Stdin:   m.stdin,
		OnLine:  onLine,
	})
	if err != nil {
		return nil, err
	}

	m.status.Record(status.Entry{
		Recipe:          p.Recipe.Name,
		CommandName:     p.Command.Name,
		ExpandedCommand: p.Expanded,
		ExitCode:        int(res.ExitCode),
		RecipePath:      p.Recipe.Path,
	})

	out := &ExecutionResult{
		Recipe:      p.Recipe.Name,
		CommandName: p.Command.Name,
		Command:     p.Expanded,
		Dir:         p.Dir,
		ExitCode:    res.ExitCode,
		Duration:    res.Duration,
	}
	if !res.Success() {
		return out, &NonZeroExitError{Recipe: p.Recipe.Name, Command: p.Command.Name, ExitCode: res.ExitCode}
	}
	return out, nil
}

// recipeEnv exposes the recipe to the command environment.
func recipeEnv(p *Prepared) []string {
	return []string{
		"DRM_RECIPE=" + p.Recipe.Name,
		"DRM_RECIPE_PATH=" + p.Recipe.Path,
		"DRM_COMMAND=" + p.Command.Name,
	}
}

// similar returns up to three names that share a prefix or substring with
// name.
func similar(name string, names []string) []string {
	needle := strings.ToLower(name)
	if needle == "" {
		return nil
	}
	var out []string
	for _, candidate := range names {
		c := strings.ToLower(candidate)
		if strings.Contains(c, needle) || strings.Contains(needle, c) || commonPrefix(c, needle) >= 3 {
			out = append(out, candidate)
			if len(out) == 3 {
				break
			}
		}
	}
	return out
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// String describes the result for logging.
func (r *ExecutionResult) String() string {
	return fmt.Sprintf("%s/%s exit=%d in %s", r.Recipe, r.CommandName, r.ExitCode, r.Duration.Round(time.Millisecond))
}
