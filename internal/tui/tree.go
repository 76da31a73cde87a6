// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"strings"

	"github.com/d34dman/drupal-recipe-manager/internal/depgraph"
)

// StyleTree colors pre-rendered tree lines: the root as a title and cycle
// markers as warnings. The line structure is left untouched.
func StyleTree(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch {
		case i == 0:
			b.WriteString(TitleStyle.Render(line))
		case depgraph.IsCircularMarker(line):
			b.WriteString(WarningStyle.Render(line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}
