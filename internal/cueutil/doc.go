// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates YAML documents against embedded CUE schemas and
// formats CUE errors with JSON-path prefixes for user-facing messages.
package cueutil
