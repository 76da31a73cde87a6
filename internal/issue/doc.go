// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the file, recipe or command it
// concerned, and hints for the operator. The Markdown issue catalogue in issue.go covers the well-known
// operator mistakes (missing config, unknown recipe, unknown command, ...) and is
// rendered with glamour by the CLI layer.
package issue
