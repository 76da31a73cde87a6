// SPDX-License-Identifier: MPL-2.0

package depgraph

import (
	"fmt"
	"strings"
)

// CycleError indicates that the dependencies reachable from a recipe contain
// a cycle, so no install order exists.
type CycleError struct {
	// Root is the recipe the order was requested for.
	Root string
	// Cycle lists the recipes left unordered (enough to identify the loop).
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected for %s: %s", e.Root, strings.Join(e.Cycle, " -> "))
}

// InstallOrder returns root and everything it transitively depends on, with
// every dependency ahead of its dependents (Kahn's algorithm). Ties keep the
// order in which recipes were first reached, following declared order.
// Dangling dependencies are not part of the result.
func (w *Walker) InstallOrder(root string) ([]string, error) {
	var nodes []string
	known := make(map[string]bool)
	// mustPrecede[dep] lists recipes that may only follow dep.
	mustPrecede := make(map[string][]string)
	inDegree := make(map[string]int)

	var collect func(name string)
	collect = func(name string) {
		if known[name] {
			return
		}
		known[name] = true
		nodes = append(nodes, name)
		for _, dep := range w.next(name, Forward) {
			if dep == name {
				continue
			}
			mustPrecede[dep] = append(mustPrecede[dep], name)
			inDegree[name]++
			collect(dep)
		}
	}
	if _, ok := w.graph.FindByName(root); !ok {
		return nil, nil
	}
	collect(root)

	queue := make([]string, 0, len(nodes))
	for _, name := range nodes {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, next := range mustPrecede[name] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(nodes) {
		var cycle []string
		for _, name := range nodes {
			if inDegree[name] > 0 {
				cycle = append(cycle, name)
			}
		}
		return nil, &CycleError{Root: root, Cycle: cycle}
	}
	return order, nil
}
