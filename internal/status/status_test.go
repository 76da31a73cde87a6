// SPDX-License-Identifier: MPL-2.0

package status

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/d34dman/drupal-recipe-manager/internal/testutil"
)

func fixedClock(ts string) func() time.Time {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func TestStore_RecordLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	s := NewStore(dir, WithClock(fixedClock("2026-03-01T10:00:00Z")))

	s.Record(Entry{
		Recipe:          "blog",
		CommandName:     "drushRecipe",
		ExpandedCommand: "ddev drush recipe /srv/recipes/blog",
		ExitCode:        0,
		RecipePath:      "/srv/recipes/blog",
	})

	st, ok := s.StatusOf("blog")
	if !ok {
		t.Fatal("blog status missing after Record")
	}
	if !st.Executed || st.ExitCode == nil || *st.ExitCode != 0 {
		t.Errorf("status = %+v, want executed with exit code 0", st)
	}
	if st.Timestamp == nil || *st.Timestamp != "2026-03-01T10:00:00Z" {
		t.Errorf("Timestamp = %v", st.Timestamp)
	}
	if st.Directory == nil || *st.Directory != "/srv/recipes/blog" {
		t.Errorf("Directory = %v", st.Directory)
	}
	if st.Command != "drushRecipe" {
		t.Errorf("Command = %q", st.Command)
	}

	raw := testutil.MustReadFile(t, s.StatusPath())
	for _, key := range []string{"blog:", "exit_code: 0", "command: drushRecipe", "recipe_path: /srv/recipes/blog"} {
		if !strings.Contains(raw, key) {
			t.Errorf("status file missing %q:\n%s", key, raw)
		}
	}
}

func TestStore_RecordOverwritesOnlyOneRecipe(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	s.Record(Entry{Recipe: "a", CommandName: "run", ExpandedCommand: "run a", ExitCode: 0, RecipePath: "/a"})
	s.Record(Entry{Recipe: "b", CommandName: "run", ExpandedCommand: "run b", ExitCode: 2, RecipePath: "/b"})
	s.Record(Entry{Recipe: "a", CommandName: "run", ExpandedCommand: "run a", ExitCode: 1, RecipePath: "/a"})

	all := s.Load()
	if len(all) != 2 {
		t.Fatalf("Load() returned %d records, want 2", len(all))
	}
	if *all["a"].ExitCode != 1 || *all["b"].ExitCode != 2 {
		t.Errorf("exit codes = a:%d b:%d, want a:1 b:2", *all["a"].ExitCode, *all["b"].ExitCode)
	}

	history, err := s.History(0)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("History() returned %d entries, want 3", len(history))
	}
	statuses := []string{history[0].Status, history[1].Status, history[2].Status}
	if !slices.Equal(statuses, []string{HistorySuccess, HistoryFailed, HistoryFailed}) {
		t.Errorf("history statuses = %v", statuses)
	}
	if history[1].ActualCommand != "run b" || history[1].Command != "run" || history[1].Recipe != "b" {
		t.Errorf("history[1] = %+v", history[1])
	}

	last, err := s.History(1)
	if err != nil || len(last) != 1 || last[0].Recipe != "a" {
		t.Errorf("History(1) = %+v, %v", last, err)
	}
}

func TestStore_LoadTolerant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "missing file", want: 0},
		{name: "corrupt yaml", content: "blog: [unterminated\n", want: 0},
		{name: "not a mapping", content: "- a\n- b\n", want: 0},
		{name: "empty document", content: "", want: 0},
		{name: "legacy record", content: "blog:\n  exit_code: 1\n  command: drushRecipe\n  timestamp: '2025-01-02 03:04:05'\n  recipe_path: /x/blog\n", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			s := NewStore(dir)
			if tt.name != "missing file" {
				testutil.MustWriteFile(t, s.StatusPath(), tt.content)
			}
			got := s.Load()
			if got == nil || len(got) != tt.want {
				t.Errorf("Load() = %v, want %d entries", got, tt.want)
			}
		})
	}
}

func TestStore_RecordRecoversFromCorruptStatus(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	testutil.MustWriteFile(t, s.StatusPath(), "x: [unterminated\n")
	s.Record(Entry{Recipe: "x", CommandName: "c", ExpandedCommand: "echo x", ExitCode: 0, RecipePath: "/x"})
	if _, ok := s.StatusOf("x"); !ok {
		t.Error("Record should rewrite a corrupt status file")
	}
}

func TestStore_RecordSwallowsWriteFailures(t *testing.T) {
	t.Parallel()

	// The logs "directory" is a regular file, so every write fails.
	parent := t.TempDir()
	blocker := filepath.Join(parent, "logs")
	testutil.MustWriteFile(t, blocker, "")

	s := NewStore(blocker)
	s.Record(Entry{Recipe: "x", CommandName: "c", ExpandedCommand: "echo", ExitCode: 0, RecipePath: "/x"})

	if got := s.Load(); len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
	if info, err := os.Stat(blocker); err != nil || info.IsDir() {
		t.Errorf("blocker file changed: %v", err)
	}
}

func TestStore_HistoryMissingAndCorrupt(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	if entries, err := s.History(5); err != nil || len(entries) != 0 {
		t.Errorf("History() on missing log = %v, %v", entries, err)
	}
	testutil.MustWriteFile(t, s.HistoryPath(), "{{{")
	if _, err := s.History(5); err == nil {
		t.Error("History() on corrupt log should fail")
	}
}

func TestRecipeStatus_Invariant(t *testing.T) {
	t.Parallel()

	st := NewExecuted(0, "2026-01-01T00:00:00Z", "", "c")
	if !st.Executed || st.ExitCode == nil || st.Timestamp == nil {
		t.Errorf("NewExecuted() = %+v, want exit code and timestamp set", st)
	}
	if st.Directory != nil {
		t.Errorf("empty directory should stay unset")
	}

	partial := record{Command: "c", Timestamp: "2026-01-01T00:00:00Z"}.toStatus()
	if partial.Executed {
		t.Error("record without exit code must not be executed")
	}
	if NotExecuted().Executed {
		t.Error("NotExecuted() should not be executed")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	if ParseTimestamp("2026-01-02T03:04:05Z").IsZero() {
		t.Error("RFC3339 timestamp not parsed")
	}
	if ParseTimestamp("2026-01-02 03:04:05").IsZero() {
		t.Error("legacy timestamp not parsed")
	}
	if !ParseTimestamp("yesterday").IsZero() {
		t.Error("garbage timestamp should be zero")
	}
}

func TestSortForDisplayAndSummarize(t *testing.T) {
	t.Parallel()

	statuses := map[string]RecipeStatus{
		"ok-old":  NewExecuted(0, "2026-01-01T00:00:00Z", "", "c"),
		"ok-new":  NewExecuted(0, "2026-02-01T00:00:00Z", "", "c"),
		"bad":     NewExecuted(1, "2026-01-15T00:00:00Z", "", "c"),
		"never":   NotExecuted(),
		"bad-old": NewExecuted(7, "2025-12-01 00:00:00", "", "c"),
	}
	names := []string{"ok-old", "bad", "ok-new", "untracked", "never", "bad-old"}

	got := SortForDisplay(names, statuses)
	want := []string{"never", "untracked", "bad", "bad-old", "ok-new", "ok-old"}
	if !slices.Equal(got, want) {
		t.Errorf("SortForDisplay() = %v, want %v", got, want)
	}
	if names[0] != "ok-old" {
		t.Error("SortForDisplay must not modify its input")
	}

	sum := Summarize(names, statuses)
	if sum != (Summary{Total: 6, Succeeded: 2, Failed: 2, NotExecuted: 2}) {
		t.Errorf("Summarize() = %+v", sum)
	}
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	for o, want := range map[Outcome]string{
		OutcomeSucceeded:   "success",
		OutcomeFailed:      "failed",
		OutcomeNotExecuted: "not executed",
	} {
		if o.String() != want {
			t.Errorf("%d.String() = %q, want %q", o, o.String(), want)
		}
	}
}
