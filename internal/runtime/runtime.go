// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	// Stdout tags standard output lines.
	Stdout Stream = iota
	// Stderr tags standard error lines.
	Stderr
)

var (
	// ErrInterrupted is returned when the context is cancelled before the
	// command exits. The run has no exit code and must not be recorded.
	ErrInterrupted = errors.New("execution interrupted")
	// ErrShellNotFound is wrapped by LaunchError when no shell is available.
	ErrShellNotFound = errors.New("no shell found")
)

type (
	// Stream identifies an output stream.
	Stream int

	// Line is one line of command output without its trailing newline.
	Line struct {
		Stream Stream
		Text   string
	}

	// LineHandler receives output lines as they arrive. Calls are serialized.
	LineHandler func(Line)

	// Request describes one command execution.
	Request struct {
		// Command is the fully expanded shell command.
		Command string
		// Dir is the working directory.
		Dir string
		// Env is appended to the inherited environment ("KEY=value").
		Env []string
		// Stdin is forwarded to the command when set.
		Stdin io.Reader
		// OnLine receives output; nil discards it.
		OnLine LineHandler
	}

	// Result is the outcome of a command that ran to completion.
	Result struct {
		ExitCode ExitCode
		Duration time.Duration
	}

	// Runtime runs commands.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Run blocks until the command exits. A command that could not be
		// started yields a *LaunchError; cancellation yields ErrInterrupted.
		Run(ctx context.Context, req Request) (*Result, error)
	}

	// LaunchError reports a command that could not be started.
	LaunchError struct {
		Command string
		Err     error
	}
)

// String returns the stream name.
func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Success reports whether the command exited with code 0.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess()
}

func interrupted(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
}
