// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigNotFoundId Id = iota + 1
	ConfigInvalidId
	NoRecipesFoundId
	RecipeNotFoundId
	CommandNotFoundId
	InvalidRecipeId
	ShellNotFoundId
	DependencyCycleId
)

type MarkdownMsg string

type Issue struct {
	id    Id          // ID used to lookup the issue
	mdMsg MarkdownMsg // Markdown text that will be rendered
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the issue Markdown with the given glamour style ("dark",
// "light", "notty", or a path to a style file).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	configNotFoundIssue = &Issue{
		id: ConfigNotFoundId,
		mdMsg: `
# Configuration file not found!

The recipe manager reads **drupal-recipe-manager.yaml** from the current directory.

## Things you can try:
- Run the command from your project root
- Point to the file explicitly:
~~~
$ drupal-recipe-manager --config path/to/drupal-recipe-manager.yaml recipe
~~~

## Example configuration:
~~~yaml
scanDirs:
  - web/core/recipes
  - recipes
commands:
  drushRecipe:
    command: "ddev drush recipe ${folder}"
    requiresFolder: true
logsDir: logs
~~~`,
	}

	configInvalidIssue = &Issue{
		id: ConfigInvalidId,
		mdMsg: `
# Invalid configuration!

The configuration file could not be parsed or does not match the expected shape.

## Common issues:
- **scanDirs** must be a list of directories
- **commands** must map a name to ` + "`{command: string, requiresFolder: bool}`" + `
- **variables** entries need **name**, **input**, **search** and **replace**

## Things you can try:
- Check the error message above for the offending field
- Run with verbose mode for the full error chain:
~~~
$ drupal-recipe-manager --verbose config show
~~~`,
	}

	noRecipesFoundIssue = &Issue{
		id: NoRecipesFoundId,
		mdMsg: `
# No recipes found!

None of the configured **scanDirs** contains a directory with a **recipe.yml** file.

## Things you can try:
- Check the **scanDirs** entries in drupal-recipe-manager.yaml
- Override them for one run:
~~~
$ drupal-recipe-manager recipe --scan-dirs web/core/recipes
~~~`,
	}

	recipeNotFoundIssue = &Issue{
		id: RecipeNotFoundId,
		mdMsg: `
# Recipe not found!

The recipe name is matched against the directory name of every discovered recipe.

## Things you can try:
- List the available recipes:
~~~
$ drupal-recipe-manager recipe --list
~~~
- Check for typos in the recipe name`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found!

The command name must be one of the keys under **commands** in the configuration.

## Things you can try:
- Inspect the configured commands:
~~~
$ drupal-recipe-manager config show
~~~
- Omit **--command** to use the default command`,
	}

	invalidRecipeIssue = &Issue{
		id: InvalidRecipeId,
		mdMsg: `
# Invalid recipe!

The recipe directory or its **recipe.yml** disappeared after the scan.

## Things you can try:
- Re-run the command so the recipe directories are scanned again
- Restore the missing **recipe.yml**`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

Could not find a suitable shell for the 'native' runtime.

## Shells we look for:
- Linux/macOS: $SHELL, bash, sh
- Windows: pwsh, powershell, cmd

## Things you can try:
- Install bash or another POSIX shell
- Set **shell** in drupal-recipe-manager.yaml
- Use the built-in shell interpreter:
~~~yaml
runtime: virtual
~~~`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

The **recipes** lists of your recipe.yml files form a cycle, so no install order exists.

## Things you can try:
- Inspect the tree, cycles are marked inline:
~~~
$ drupal-recipe-manager recipe:dependencies <recipe>
~~~
- Remove one of the edges of the cycle`,
	}

	issues = map[Id]*Issue{
		configNotFoundIssue.Id():  configNotFoundIssue,
		configInvalidIssue.Id():   configInvalidIssue,
		noRecipesFoundIssue.Id():  noRecipesFoundIssue,
		recipeNotFoundIssue.Id():  recipeNotFoundIssue,
		commandNotFoundIssue.Id(): commandNotFoundIssue,
		invalidRecipeIssue.Id():   invalidRecipeIssue,
		shellNotFoundIssue.Id():   shellNotFoundIssue,
		dependencyCycleIssue.Id(): dependencyCycleIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
