// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes commands in the embedded mvdan/sh interpreter.
// External programs are still run from PATH; only the shell is virtual.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return "virtual"
}

// Validate reports whether command parses as a POSIX shell program.
func Validate(command string) error {
	_, err := syntax.NewParser().Parse(strings.NewReader(command), "command")
	return err
}

// Run interprets req.Command in req.Dir.
func (r *VirtualRuntime) Run(ctx context.Context, req Request) (*Result, error) {
	if ctx.Err() != nil {
		return nil, interrupted(ctx)
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(req.Command), "command")
	if err != nil {
		return nil, &LaunchError{Command: req.Command, Err: fmt.Errorf("failed to parse command: %w", err)}
	}

	out := newRelay(req.OnLine)
	stdout, stderr := out.writer(Stdout), out.writer(Stderr)
	defer stdout.Flush()
	defer stderr.Flush()

	env := append(os.Environ(), req.Env...)
	runner, err := interp.New(
		interp.Dir(req.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(req.Stdin, stdout, stderr),
	)
	if err != nil {
		return nil, &LaunchError{Command: req.Command, Err: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	start := time.Now()
	err = runner.Run(ctx, prog)
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return nil, interrupted(ctx)
	}
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &Result{ExitCode: ExitCode(exitStatus), Duration: elapsed}, nil
		}
		return nil, &LaunchError{Command: req.Command, Err: fmt.Errorf("command execution failed: %w", err)}
	}
	return &Result{ExitCode: 0, Duration: elapsed}, nil
}
