// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/term"

	"github.com/d34dman/drupal-recipe-manager/internal/config"
	"github.com/d34dman/drupal-recipe-manager/internal/manager"
	"github.com/d34dman/drupal-recipe-manager/internal/status"
	"github.com/d34dman/drupal-recipe-manager/internal/tui"
)

type (
	// App wires CLI services and shared dependencies. All Cobra command
	// handlers receive an App reference and delegate through it.
	App struct {
		Config   config.Provider
		Prompter Prompter
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
		// interactive reports whether prompts can be shown.
		interactive func() bool
		logger      *slog.Logger

		// Global flag values bound by the root command.
		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		Prompter    Prompter
		Stdin       io.Reader
		Stdout      io.Writer
		Stderr      io.Writer
		Interactive func() bool
	}

	// Prompter asks the operator to choose a recipe, a command, or whether to
	// continue. Implementations return tui.ErrCancelled when the operator
	// backs out.
	Prompter interface {
		PickRecipe(ctx context.Context, names []string, statuses map[string]status.RecipeStatus) (string, error)
		PickCommand(ctx context.Context, commands config.CommandSet) (string, error)
		Confirm(ctx context.Context, prompt string, def bool) (bool, error)
	}

	// managerRequest carries the CLI overrides applied on top of the loaded
	// configuration.
	managerRequest struct {
		ScanDirs     []string
		CommandsJSON string
	}

	tuiPrompter struct{}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:      deps.Config,
		Prompter:    deps.Prompter,
		stdin:       deps.Stdin,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		interactive: deps.Interactive,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Prompter == nil {
		app.Prompter = tuiPrompter{}
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.interactive == nil {
		app.interactive = stdinIsTerminal
	}
	app.logger = newLogger(app.stderr, false)
	return app
}

// openManager loads configuration, applies overrides and scans recipes.
func (a *App) openManager(ctx context.Context, req managerRequest) (*manager.Manager, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(req.ScanDirs, req.CommandsJSON); err != nil {
		return nil, err
	}
	if cfg.Verbose && !a.verbose {
		a.verbose = true
		a.logger = newLogger(a.stderr, true)
	}

	opts := []manager.Option{manager.WithLogger(a.logger)}
	if a.interactive() {
		// Commands that prompt read the operator's answers.
		opts = append(opts, manager.WithStdin(a.stdin))
	}
	m, err := manager.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := m.Scan(ctx); err != nil {
		return nil, err
	}
	a.logger.Debug("recipes scanned", "count", len(m.Names()), "config", cfg.Path)
	return m, nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

func (tuiPrompter) PickRecipe(ctx context.Context, names []string, statuses map[string]status.RecipeStatus) (string, error) {
	return tui.Pick(ctx, tui.PickOptions{
		Title: "Search and select a recipe",
		Items: tui.RecipeItems(names, statuses),
	})
}

func (tuiPrompter) PickCommand(ctx context.Context, commands config.CommandSet) (string, error) {
	items := make([]tui.Item, 0, len(commands))
	for _, c := range commands {
		items = append(items, tui.Item{Name: c.Name, Detail: c.Command})
	}
	return tui.Pick(ctx, tui.PickOptions{Title: "Select command to run", Items: items})
}

func (tuiPrompter) Confirm(ctx context.Context, prompt string, def bool) (bool, error) {
	return tui.Confirm(ctx, tui.ConfirmOptions{Prompt: prompt, Default: def})
}
