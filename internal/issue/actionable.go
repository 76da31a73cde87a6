// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Subject names what a failure was about. Every field is optional; the
	// configuration loader sets File, recipe runs set Recipe and Command.
	Subject struct {
		File    string
		Recipe  string
		Command string
	}

	// ActionableError is a failure the operator can act on. It reads as
	// "failed to <Operation> (<Subject>): <Cause>" followed by the hints.
	//
	//	err := issue.For("run command").
	//		Recipe("blog").
	//		Command("install").
	//		Hint("Preview the command with --dry-run").
	//		Wrap(cause).
	//		Err()
	ActionableError struct {
		Operation string
		Subject   Subject
		Hints     []string
		Cause     error
	}

	// Builder assembles an ActionableError.
	Builder struct {
		err ActionableError
	}
)

// For starts an error for operation, a verb phrase such as "load configuration".
func For(operation string) *Builder {
	return &Builder{err: ActionableError{Operation: operation}}
}

// File records the file involved.
func (b *Builder) File(path string) *Builder {
	b.err.Subject.File = path
	return b
}

// Recipe records the recipe involved.
func (b *Builder) Recipe(name string) *Builder {
	b.err.Subject.Recipe = name
	return b
}

// Command records the configured command involved.
func (b *Builder) Command(name string) *Builder {
	b.err.Subject.Command = name
	return b
}

// Hint appends a suggestion shown under the message.
func (b *Builder) Hint(text string) *Builder {
	b.err.Hints = append(b.err.Hints, text)
	return b
}

// Wrap sets the underlying cause.
func (b *Builder) Wrap(cause error) *Builder {
	b.err.Cause = cause
	return b
}

// Err returns the assembled error, or nil without an operation.
func (b *Builder) Err() error {
	if b.err.Operation == "" {
		return nil
	}
	e := b.err
	e.Hints = append([]string(nil), b.err.Hints...)
	return &e
}

// IsZero reports whether no field is set.
func (s Subject) IsZero() bool {
	return s == Subject{}
}

// String joins the set fields, for example `recipe blog, command install`.
func (s Subject) String() string {
	parts := make([]string, 0, 3)
	if s.Recipe != "" {
		parts = append(parts, "recipe "+s.Recipe)
	}
	if s.Command != "" {
		parts = append(parts, "command "+s.Command)
	}
	if s.File != "" {
		parts = append(parts, s.File)
	}
	return strings.Join(parts, ", ")
}

func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if !e.Subject.IsZero() {
		fmt.Fprintf(&msg, " (%s)", e.Subject)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// HasHints reports whether there is anything to show below the message.
func (e *ActionableError) HasHints() bool {
	return len(e.Hints) > 0
}

// Format renders the message and its hints. Verbose output also lists every
// error in the cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())
	if len(e.Hints) > 0 {
		msg.WriteString("\n")
	}
	for _, h := range e.Hints {
		fmt.Fprintf(&msg, "\n  • %s", h)
	}
	if !verbose {
		return msg.String()
	}
	if e.Cause != nil {
		msg.WriteString("\n\nError chain:")
	}
	for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
		fmt.Fprintf(&msg, "\n  %d. %s", depth, err)
	}
	return msg.String()
}
