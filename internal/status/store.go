// SPDX-License-Identifier: MPL-2.0

package status

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	// Store reads and writes the status file and history log of one logs
	// directory.
	Store struct {
		dir    string
		logger *slog.Logger
		now    func() time.Time
	}

	// StoreOption configures a Store.
	StoreOption func(*Store)
)

// WithLogger sets the logger persistence failures are reported to.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store rooted at logsDir.
func NewStore(logsDir string, opts ...StoreOption) *Store {
	s := &Store{dir: logsDir, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StatusPath returns the status file path.
func (s *Store) StatusPath() string {
	return filepath.Join(s.dir, StatusFileName)
}

// HistoryPath returns the history log path.
func (s *Store) HistoryPath() string {
	return filepath.Join(s.dir, HistoryFileName)
}

// Record appends a history entry and overwrites the recipe's status.
// Failures are logged and swallowed.
func (s *Store) Record(e Entry) {
	ts := s.now().Format(TimestampFormat)

	if err := s.appendHistory(e, ts); err != nil {
		s.logger.Warn("failed to append execution history", "recipe", e.Recipe, "path", s.HistoryPath(), "error", err)
	}
	if err := s.writeStatus(e, ts); err != nil {
		s.logger.Warn("failed to update recipe status", "recipe", e.Recipe, "path", s.StatusPath(), "error", err)
	}
}

// Load returns every recorded status. A missing or corrupt file yields an
// empty map.
func (s *Store) Load() map[string]RecipeStatus {
	records, err := s.readRecords()
	if err != nil {
		s.logger.Debug("status file unreadable, treating as empty", "path", s.StatusPath(), "error", err)
	}
	out := make(map[string]RecipeStatus, len(records))
	for name, r := range records {
		out[name] = r.toStatus()
	}
	return out
}

// StatusOf returns the status recorded for name.
func (s *Store) StatusOf(name string) (RecipeStatus, bool) {
	st, ok := s.Load()[name]
	return st, ok
}

// History returns the last limit entries of the history log in the order
// they were written. A limit of zero or less returns every entry. A missing
// log yields no entries.
func (s *Store) History(limit int) ([]HistoryEntry, error) {
	data, err := os.ReadFile(s.HistoryPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var entries []HistoryEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", s.HistoryPath(), err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (s *Store) appendHistory(e Entry, ts string) error {
	entry := HistoryEntry{
		Timestamp:     ts,
		Recipe:        e.Recipe,
		Command:       e.CommandName,
		ActualCommand: e.ExpandedCommand,
		ExitCode:      e.ExitCode,
		Status:        HistoryFailed,
	}
	if e.ExitCode == 0 {
		entry.Status = HistorySuccess
	}

	// Each append is a one-element sequence, so the log stays one YAML list.
	data, err := yaml.Marshal([]HistoryEntry{entry})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.HistoryPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) writeStatus(e Entry, ts string) error {
	records, err := s.readRecords()
	if err != nil {
		s.logger.Debug("status file unreadable, starting fresh", "path", s.StatusPath(), "error", err)
		records = make(map[string]record)
	}
	code := e.ExitCode
	records[e.Recipe] = record{
		ExitCode:   &code,
		Command:    e.CommandName,
		Timestamp:  ts,
		RecipePath: e.RecipePath,
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, StatusFileName+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.StatusPath()); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (s *Store) readRecords() (map[string]record, error) {
	records := make(map[string]record)
	data, err := os.ReadFile(s.StatusPath())
	if os.IsNotExist(err) {
		return records, nil
	}
	if err != nil {
		return records, err
	}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return make(map[string]record), err
	}
	if records == nil {
		records = make(map[string]record)
	}
	return records, nil
}
