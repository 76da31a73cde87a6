// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/d34dman/drupal-recipe-manager/internal/status"
)

const (
	iconSucceeded   = "✓"
	iconFailed      = "✗"
	iconNotExecuted = "○"

	lastRunLayout = "2006-01-02 15:04"
	neverRun      = "Never"
)

// Icon returns the status glyph for o.
func Icon(o status.Outcome) string {
	switch o {
	case status.OutcomeSucceeded:
		return iconSucceeded
	case status.OutcomeFailed:
		return iconFailed
	default:
		return iconNotExecuted
	}
}

// OutcomeStyle returns the style used for rows with outcome o.
func OutcomeStyle(o status.Outcome) lipgloss.Style {
	switch o {
	case status.OutcomeSucceeded:
		return SuccessStyle
	case status.OutcomeFailed:
		return ErrorStyle
	default:
		return MutedStyle
	}
}

// LastRun formats the timestamp of st for display.
func LastRun(st status.RecipeStatus, ok bool) string {
	if !ok {
		return neverRun
	}
	ts := st.Time()
	if ts.IsZero() {
		return neverRun
	}
	return ts.Local().Format(lastRunLayout)
}

// SummaryTable renders the outcome counts.
func SummaryTable(sum status.Summary) string {
	rows := [][]string{
		{iconSucceeded + " Successfully executed", strconv.Itoa(sum.Succeeded)},
		{iconFailed + " Failed executions", strconv.Itoa(sum.Failed)},
		{iconNotExecuted + " Not executed yet", strconv.Itoa(sum.NotExecuted)},
		{"Total", strconv.Itoa(sum.Total)},
	}
	rowStyles := []lipgloss.Style{SuccessStyle, ErrorStyle, MutedStyle, CmdStyle}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Status", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 && row >= 0 && row < len(rowStyles) {
				return cellStyle.Foreground(rowStyles[row].GetForeground())
			}
			return cellStyle
		})
	return t.String()
}

// RecipeTable renders names in display order with their status and last
// run time.
func RecipeTable(names []string, statuses map[string]status.RecipeStatus) string {
	ordered := status.SortForDisplay(names, statuses)
	rows := make([][]string, 0, len(ordered))
	outcomes := make([]status.Outcome, 0, len(ordered))
	for _, name := range ordered {
		st, ok := statuses[name]
		o := status.OutcomeOf(st, ok)
		outcomes = append(outcomes, o)
		rows = append(rows, []string{Icon(o), name, LastRun(st, ok)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Status", "Recipe", "Last Run").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col < 2 && row >= 0 && row < len(outcomes) {
				return cellStyle.Foreground(OutcomeStyle(outcomes[row]).GetForeground())
			}
			return cellStyle
		})
	return t.String()
}

// HistoryTable renders history entries oldest first.
func HistoryTable(entries []status.HistoryEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		when := e.Timestamp
		if ts := status.ParseTimestamp(e.Timestamp); !ts.IsZero() {
			when = ts.Local().Format(lastRunLayout)
		}
		rows = append(rows, []string{when, e.Recipe, e.Command, strconv.Itoa(e.ExitCode), e.ActualCommand})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("When", "Recipe", "Command", "Exit", "Actual Command").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && row >= 0 && row < len(entries) {
				o := status.OutcomeFailed
				if entries[row].Succeeded() {
					o = status.OutcomeSucceeded
				}
				return cellStyle.Foreground(OutcomeStyle(o).GetForeground())
			}
			return cellStyle
		})
	return t.String()
}
