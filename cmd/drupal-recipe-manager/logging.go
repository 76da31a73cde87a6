// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

const logPrefix = "recipe-manager"

// newLogger returns a slog logger backed by charmbracelet/log. Debug records
// are only emitted in verbose mode.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          logPrefix,
		Level:           level,
		ReportTimestamp: verbose,
	})
	return slog.New(handler)
}
