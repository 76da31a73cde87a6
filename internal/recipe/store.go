// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"log/slog"
	"path/filepath"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/d34dman/drupal-recipe-manager/internal/discovery"
)

// Store indexes recipes by name and keeps the reverse dependency map.
// It is rebuilt on every scan and never mutated afterwards.
type Store struct {
	recipes    []*Recipe
	byName     map[string]*Recipe
	dependents map[string][]string
}

// Build reads each location's descriptor and indexes the recipes. A missing
// or malformed descriptor yields a recipe with no dependencies. When two
// locations share a name the first one is kept.
func Build(locations []discovery.Location, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		recipes:    make([]*Recipe, 0, len(locations)),
		byName:     make(map[string]*Recipe, len(locations)),
		dependents: make(map[string][]string),
	}

	for _, loc := range locations {
		name := loc.Name
		if name == "" {
			name = filepath.Base(loc.Dir)
		}
		if _, dup := s.byName[name]; dup {
			logger.Warn("duplicate recipe name ignored", "recipe", name, "path", loc.Dir)
			continue
		}

		r := &Recipe{Name: name, Path: loc.Dir}
		desc, err := ReadDescriptor(loc.Dir)
		if err != nil {
			logger.Debug("descriptor unreadable, assuming no dependencies", "recipe", name, "error", err)
		} else {
			r.Dependencies = desc.DependencyNames()
			r.Description = desc.Description
			r.Type = desc.Type
		}
		s.recipes = append(s.recipes, r)
		s.byName[name] = r
	}

	for _, r := range s.recipes {
		for _, dep := range r.Dependencies {
			if dep == r.Name {
				continue
			}
			if !slices.Contains(s.dependents[dep], r.Name) {
				s.dependents[dep] = append(s.dependents[dep], r.Name)
			}
		}
	}
	return s
}

// Len returns the number of indexed recipes.
func (s *Store) Len() int {
	return len(s.recipes)
}

// Recipes returns recipes in discovery order.
func (s *Store) Recipes() []*Recipe {
	out := make([]*Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out
}

// Names returns the recipe names sorted alphabetically.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.recipes))
	for _, r := range s.recipes {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}

// FindByName looks a recipe up by name.
func (s *Store) FindByName(name string) (*Recipe, bool) {
	r, ok := s.byName[name]
	return r, ok
}

// DependenciesOf resolves r's declared dependencies in declaration order.
// Dangling names and r itself are dropped.
func (s *Store) DependenciesOf(r *Recipe) []*Recipe {
	if r == nil {
		return nil
	}
	out := make([]*Recipe, 0, len(r.Dependencies))
	for _, name := range r.Dependencies {
		if name == r.Name {
			continue
		}
		if dep, ok := s.byName[name]; ok {
			out = append(out, dep)
		}
	}
	return out
}

// DependentsOf returns the names of recipes that declare name as a
// dependency, in discovery order. Dependents are reported even when name
// itself was not discovered.
func (s *Store) DependentsOf(name string) []string {
	deps := s.dependents[name]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// Dangling returns the declared dependency names of r that are not indexed.
func (s *Store) Dangling(r *Recipe) []string {
	var out []string
	for _, name := range r.Dependencies {
		if _, ok := s.byName[name]; !ok && name != r.Name {
			out = append(out, name)
		}
	}
	return out
}
