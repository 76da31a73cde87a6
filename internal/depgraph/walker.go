// SPDX-License-Identifier: MPL-2.0

// Package depgraph walks the recipe dependency graph in both directions and
// renders it as box-drawing trees.
//
// Cycle detection uses a path stack local to one top-level traversal. A name
// is on the stack only while it or one of its descendants is being expanded,
// so a recipe shared by sibling branches is expanded in each of them.
package depgraph

import (
	"github.com/d34dman/drupal-recipe-manager/internal/recipe"
)

const (
	// Forward follows declared dependencies (what a recipe needs).
	Forward Direction = iota
	// Inverted follows dependents (what requires a recipe).
	Inverted
)

type (
	// Direction selects the edge set a traversal follows.
	Direction int

	// Graph is the read-only view of the recipe index the walker consumes.
	Graph interface {
		FindByName(name string) (*recipe.Recipe, bool)
		DependenciesOf(r *recipe.Recipe) []*recipe.Recipe
		DependentsOf(name string) []string
	}

	// Node is one entry of a rendered tree.
	Node struct {
		Name string
		// Circular is set when Name was already on the traversal path. Such a
		// node has no children.
		Circular bool
		Children []*Node
	}

	// Walker traverses a Graph.
	Walker struct {
		graph Graph
	}

	// path is the set of names being expanded on the current recursion path.
	path map[string]struct{}
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Inverted {
		return "inverted"
	}
	return "forward"
}

// NewWalker creates a Walker over g.
func NewWalker(g Graph) *Walker {
	return &Walker{graph: g}
}

// Tree builds the tree rooted at root following direction. The root is
// always emitted even when it is unknown to the graph.
func (w *Walker) Tree(root string, direction Direction) *Node {
	return w.visit(root, direction, make(path))
}

func (w *Walker) visit(name string, direction Direction, onPath path) *Node {
	node := &Node{Name: name}
	if _, visiting := onPath[name]; visiting {
		node.Circular = true
		return node
	}

	onPath[name] = struct{}{}
	defer delete(onPath, name)

	for _, child := range w.next(name, direction) {
		if child == name {
			continue
		}
		node.Children = append(node.Children, w.visit(child, direction, onPath))
	}
	return node
}

// next returns the names adjacent to name in the given direction. Dangling
// dependencies are already dropped by the graph.
func (w *Walker) next(name string, direction Direction) []string {
	if direction == Inverted {
		return w.graph.DependentsOf(name)
	}
	r, ok := w.graph.FindByName(name)
	if !ok {
		return nil
	}
	deps := w.graph.DependenciesOf(r)
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.Name
	}
	return names
}

// RenderDependencyTree renders what root needs.
func (w *Walker) RenderDependencyTree(root string) []string {
	return Render(w.Tree(root, Forward))
}

// RenderDependentTree renders what requires root.
func (w *Walker) RenderDependentTree(root string) []string {
	return Render(w.Tree(root, Inverted))
}

// HasCycle reports whether any branch of the tree re-entered its own path.
func (n *Node) HasCycle() bool {
	if n.Circular {
		return true
	}
	for _, c := range n.Children {
		if c.HasCycle() {
			return true
		}
	}
	return false
}
