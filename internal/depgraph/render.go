// SPDX-License-Identifier: MPL-2.0

package depgraph

import "strings"

const (
	branchConnector = "├── "
	lastConnector   = "└── "
	pipeIndent      = "│   "
	blankIndent     = "    "

	// CircularMarker prefixes the terminal line emitted on re-entry.
	CircularMarker = "Circular dependency detected: "
)

// Render formats a tree as lines. The root line is the bare name; each child
// line carries its ancestors' indents and its own connector. A circular node
// is followed by a single marker line below it.
func Render(root *Node) []string {
	if root == nil {
		return nil
	}
	lines := []string{root.Name}
	if root.Circular {
		return append(lines, lastConnector+CircularMarker+root.Name)
	}
	return renderChildren(lines, root, "")
}

func renderChildren(lines []string, n *Node, prefix string) []string {
	for i, child := range n.Children {
		last := i == len(n.Children)-1
		connector, indent := branchConnector, pipeIndent
		if last {
			connector, indent = lastConnector, blankIndent
		}
		lines = append(lines, prefix+connector+child.Name)

		childPrefix := prefix + indent
		if child.Circular {
			lines = append(lines, childPrefix+lastConnector+CircularMarker+child.Name)
			continue
		}
		lines = renderChildren(lines, child, childPrefix)
	}
	return lines
}

// IsCircularMarker reports whether a rendered line is a cycle marker.
func IsCircularMarker(line string) bool {
	return strings.Contains(line, lastConnector+CircularMarker)
}
