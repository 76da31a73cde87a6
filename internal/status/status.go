// SPDX-License-Identifier: MPL-2.0

// Package status persists per-recipe execution status and the execution
// history log under the configured logs directory.
//
// Persistence is advisory: write failures are logged and never change the
// outcome of the run being recorded, and unreadable files load as empty.
// No inter-process locking is provided; concurrent writers to the same logs
// directory may lose status updates (last writer wins).
package status

import (
	"time"
)

const (
	// StatusFileName holds the latest record per recipe.
	StatusFileName = "recipe_status.yaml"
	// HistoryFileName holds the append-only execution history.
	HistoryFileName = "recipe_history.yaml"

	// TimestampFormat is used for new records.
	TimestampFormat = time.RFC3339
	// legacyTimestampFormat is accepted when reading older files.
	legacyTimestampFormat = "2006-01-02 15:04:05"

	// HistorySuccess and HistoryFailed are the derived history statuses.
	HistorySuccess = "success"
	HistoryFailed  = "failed"
)

type (
	// RecipeStatus is the last known outcome of a recipe. Executed implies
	// ExitCode and Timestamp are set; use NewExecuted to build one.
	RecipeStatus struct {
		Executed  bool
		ExitCode  *int
		Timestamp *string
		Directory *string
		// Command is the configured command name of the last run.
		Command string
	}

	// HistoryEntry is one immutable record of the history log.
	HistoryEntry struct {
		Timestamp     string `yaml:"timestamp"`
		Recipe        string `yaml:"recipe"`
		Command       string `yaml:"command"`
		ActualCommand string `yaml:"actual_command"`
		ExitCode      int    `yaml:"exit_code"`
		Status        string `yaml:"status"`
	}

	// Entry describes a completed run to record.
	Entry struct {
		Recipe          string
		CommandName     string
		ExpandedCommand string
		ExitCode        int
		RecipePath      string
	}

	// record is the on-disk shape of one status file entry.
	record struct {
		ExitCode   *int   `yaml:"exit_code"`
		Command    string `yaml:"command"`
		Timestamp  string `yaml:"timestamp"`
		RecipePath string `yaml:"recipe_path"`
	}
)

// NewExecuted builds the status of a recipe that ran.
func NewExecuted(exitCode int, timestamp, directory, command string) RecipeStatus {
	s := RecipeStatus{
		Executed:  true,
		ExitCode:  &exitCode,
		Timestamp: &timestamp,
		Command:   command,
	}
	if directory != "" {
		s.Directory = &directory
	}
	return s
}

// NotExecuted is the status of a recipe without a record.
func NotExecuted() RecipeStatus {
	return RecipeStatus{}
}

// Succeeded reports whether the recipe ran and exited with 0.
func (s RecipeStatus) Succeeded() bool {
	return s.Executed && s.ExitCode != nil && *s.ExitCode == 0
}

// Time parses the timestamp. The zero time is returned when absent or
// unparsable.
func (s RecipeStatus) Time() time.Time {
	if s.Timestamp == nil {
		return time.Time{}
	}
	return ParseTimestamp(*s.Timestamp)
}

// ParseTimestamp accepts RFC 3339 and the legacy "2006-01-02 15:04:05" form.
func ParseTimestamp(v string) time.Time {
	if t, err := time.Parse(TimestampFormat, v); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(legacyTimestampFormat, v, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

func (r record) toStatus() RecipeStatus {
	if r.ExitCode == nil || r.Timestamp == "" {
		return NotExecuted()
	}
	return NewExecuted(*r.ExitCode, r.Timestamp, r.RecipePath, r.Command)
}

// Succeeded reports whether the history entry exited with 0.
func (h HistoryEntry) Succeeded() bool {
	return h.ExitCode == 0
}
