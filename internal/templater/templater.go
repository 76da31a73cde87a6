// SPDX-License-Identifier: MPL-2.0

// Package templater expands command templates against per-recipe variables.
//
// Every substituted value is quoted as a single shell word. The template
// itself is operator-authored and may use any shell syntax; only values
// coming from recipes and transformations are escaped.
package templater

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/d34dman/drupal-recipe-manager/internal/config"
	"github.com/d34dman/drupal-recipe-manager/internal/discovery"
	"github.com/d34dman/drupal-recipe-manager/internal/recipe"

	"mvdan.cc/sh/v3/syntax"
)

// Built-in variable names.
const (
	VarFolder         = "folder"
	VarFolderBasename = "folder_basename"
	VarFolderDirname  = "folder_dirname"
	VarFolderRelative = "folder_relative"
)

// placeholder matches {${key}} first so the braces are consumed with it. Keys
// may hold any character but braces, so names like recipe-name or site.name
// are substituted too.
var placeholder = regexp.MustCompile(`\{\$\{([^{}]+)\}\}|\$\{([^{}]+)\}`)

type (
	// InvalidRecipeError reports a recipe whose directory or descriptor is gone
	// at expansion time.
	InvalidRecipeError struct {
		Recipe string
		Path   string
		Err    error
	}

	// Variables is an ordered variable mapping.
	Variables struct {
		keys   []string
		values map[string]string
	}

	// Templater expands command templates.
	Templater struct {
		transforms []config.VariableTransform
		baseDir    string
	}
)

func (e *InvalidRecipeError) Error() string {
	return fmt.Sprintf("invalid recipe %s at %s: %v", e.Recipe, e.Path, e.Err)
}

func (e *InvalidRecipeError) Unwrap() error { return e.Err }

// New creates a Templater. baseDir anchors folder_relative; transforms run
// in the given order.
func New(baseDir string, transforms []config.VariableTransform) *Templater {
	return &Templater{transforms: transforms, baseDir: baseDir}
}

// Variables builds the variable mapping for r: built-ins first, then each
// transformation in declaration order.
func (t *Templater) Variables(r *recipe.Recipe) *Variables {
	vars := &Variables{values: make(map[string]string)}
	folder := r.Path
	if abs, err := filepath.Abs(folder); err == nil {
		folder = abs
	}
	vars.set(VarFolder, folder)
	vars.set(VarFolderBasename, filepath.Base(folder))
	vars.set(VarFolderDirname, filepath.Dir(folder))
	vars.set(VarFolderRelative, t.relative(folder))

	for _, tr := range t.transforms {
		input, ok := vars.Get(tr.Input)
		if !ok {
			input = tr.Input
		}
		vars.set(tr.Name, substitute(tr.Search, tr.Replace, input))
	}
	return vars
}

// Expand substitutes ${key} and {${key}} for every known key, quoting each
// value. Unknown placeholders are left as written.
func (t *Templater) Expand(template string, r *recipe.Recipe) (string, error) {
	if err := Check(r); err != nil {
		return "", err
	}
	vars := t.Variables(r)
	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		sub := placeholder.FindStringSubmatch(match)
		key := sub[1]
		if key == "" {
			key = sub[2]
		}
		value, ok := vars.Get(key)
		if !ok {
			return match
		}
		return Quote(value)
	}), nil
}

// Check verifies that the recipe directory and descriptor still exist.
func Check(r *recipe.Recipe) error {
	info, err := os.Stat(r.Path)
	if err != nil {
		return &InvalidRecipeError{Recipe: r.Name, Path: r.Path, Err: fmt.Errorf("recipe directory does not exist: %w", err)}
	}
	if !info.IsDir() {
		return &InvalidRecipeError{Recipe: r.Name, Path: r.Path, Err: errors.New("recipe path is not a directory")}
	}
	if _, err := os.Stat(r.DescriptorPath()); err != nil {
		return &InvalidRecipeError{Recipe: r.Name, Path: r.Path, Err: fmt.Errorf("%s not found: %w", discovery.DescriptorFileName, err)}
	}
	return nil
}

// Quote renders s as one POSIX shell word.
func Quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return q
}

func (t *Templater) relative(folder string) string {
	if t.baseDir == "" {
		return folder
	}
	rel, err := filepath.Rel(t.baseDir, folder)
	if err != nil {
		return folder
	}
	return rel
}

// substitute replaces every match of search in input. A search that is not a
// valid regular expression is matched literally.
func substitute(search, replace, input string) string {
	if search == "" {
		return input
	}
	re, err := regexp.Compile(search)
	if err != nil {
		re = regexp.MustCompile(regexp.QuoteMeta(search))
	}
	return re.ReplaceAllString(input, replace)
}

func (v *Variables) set(key, value string) {
	if _, exists := v.values[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.values[key] = value
}

// Get returns the value of key.
func (v *Variables) Get(key string) (string, bool) {
	value, ok := v.values[key]
	return value, ok
}

// Keys returns variable names in definition order.
func (v *Variables) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}
