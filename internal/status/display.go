// SPDX-License-Identifier: MPL-2.0

package status

import (
	"golang.org/x/exp/slices"
)

const (
	// OutcomeSucceeded is a recipe whose last run exited with 0.
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed is a recipe whose last run exited non-zero.
	OutcomeFailed
	// OutcomeNotExecuted is a recipe without a recorded run.
	OutcomeNotExecuted
)

type (
	// Outcome classifies a recipe status for display.
	Outcome int

	// Summary counts recipes per outcome.
	Summary struct {
		Total       int
		Succeeded   int
		Failed      int
		NotExecuted int
	}
)

// String returns the outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "success"
	case OutcomeFailed:
		return "failed"
	default:
		return "not executed"
	}
}

// OutcomeOf classifies st.
func OutcomeOf(st RecipeStatus, ok bool) Outcome {
	switch {
	case !ok || !st.Executed:
		return OutcomeNotExecuted
	case st.Succeeded():
		return OutcomeSucceeded
	default:
		return OutcomeFailed
	}
}

// SortForDisplay orders names not executed first, then failed, then
// succeeded; within a group the most recent run comes first and ties fall
// back to the name.
func SortForDisplay(names []string, statuses map[string]RecipeStatus) []string {
	out := slices.Clone(names)
	slices.SortStableFunc(out, func(a, b string) int {
		sa, okA := statuses[a]
		sb, okB := statuses[b]
		oa, ob := OutcomeOf(sa, okA), OutcomeOf(sb, okB)
		if oa != ob {
			return int(ob) - int(oa)
		}
		ta, tb := sa.Time(), sb.Time()
		if !ta.Equal(tb) {
			if ta.After(tb) {
				return -1
			}
			return 1
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
	return out
}

// Summarize counts the outcomes of names.
func Summarize(names []string, statuses map[string]RecipeStatus) Summary {
	sum := Summary{Total: len(names)}
	for _, name := range names {
		st, ok := statuses[name]
		switch OutcomeOf(st, ok) {
		case OutcomeSucceeded:
			sum.Succeeded++
		case OutcomeFailed:
			sum.Failed++
		default:
			sum.NotExecuted++
		}
	}
	return sum
}
