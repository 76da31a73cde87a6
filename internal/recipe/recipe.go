// SPDX-License-Identifier: MPL-2.0

// Package recipe holds the in-memory recipe index built from a scan.
package recipe

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/d34dman/drupal-recipe-manager/internal/discovery"
)

type (
	// Recipe is a named directory-resident unit. It is immutable once built.
	Recipe struct {
		// Name is the directory basename.
		Name string
		// Path is the absolute recipe directory.
		Path string
		// Dependencies lists declared dependency names in declaration order.
		// Names may be dangling; they are resolved at traversal time.
		Dependencies []string
		// Description comes from the descriptor, empty when absent.
		Description string
		// Type comes from the descriptor (e.g. "Site", "Content type").
		Type string
	}

	// Descriptor is the recognised subset of recipe.yml. Other keys are ignored.
	Descriptor struct {
		Name        string   `yaml:"name"`
		Type        string   `yaml:"type"`
		Description string   `yaml:"description"`
		Recipes     []string `yaml:"recipes"`
	}
)

// DescriptorPath returns the recipe's descriptor file path.
func (r *Recipe) DescriptorPath() string {
	return filepath.Join(r.Path, discovery.DescriptorFileName)
}

// String returns the recipe name.
func (r *Recipe) String() string {
	return r.Name
}

// ReadDescriptor parses dir/recipe.yml.
func ReadDescriptor(dir string) (*Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(dir, discovery.DescriptorFileName))
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Join(dir, discovery.DescriptorFileName), err)
	}
	return &d, nil
}

// DependencyNames normalises declared dependencies to recipe names. Entries
// may be written as paths ("core/recipes/standard"); only the basename
// identifies a recipe. Blank entries are dropped.
func (d *Descriptor) DependencyNames() []string {
	names := make([]string, 0, len(d.Recipes))
	for _, dep := range d.Recipes {
		dep = strings.TrimSpace(dep)
		dep = strings.TrimRight(dep, "/")
		if dep == "" {
			continue
		}
		names = append(names, path.Base(filepath.ToSlash(dep)))
	}
	return names
}
