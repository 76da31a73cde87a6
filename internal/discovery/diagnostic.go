// SPDX-License-Identifier: MPL-2.0

package discovery

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"

	// CodeWalkFailed is reported when a directory below a root cannot be read.
	CodeWalkFailed = "walk_failed"
	// CodeNameCollision is reported when a later root repeats a recipe name.
	CodeNameCollision = "recipe_name_collision"
	// CodeRootNotDirectory is reported when a configured root is a file.
	CodeRootNotDirectory = "root_not_directory"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic represents a structured discovery diagnostic that is returned
	// to callers (rather than written to stderr) for consistent rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "recipe_name_collision").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional).
		Cause error
	}

	// Location is a directory holding a recipe descriptor.
	Location struct {
		// Name is the directory basename, the recipe identity.
		Name string
		// Dir is the absolute recipe directory.
		Dir string
		// Root is the configured scan root the recipe was found under.
		Root string
	}

	// Result bundles discovered locations with the diagnostics produced while
	// scanning. Locations carry unique names.
	Result struct {
		Locations   []Location
		Diagnostics []Diagnostic
	}
)

func newWarning(code, path, message string, cause error) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Path: path, Cause: cause}
}
