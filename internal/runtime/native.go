// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/muesli/cancelreader"
)

// waitDelay bounds how long Wait keeps reading output after the process
// group was killed.
const waitDelay = 2 * time.Second

// NativeRuntime executes commands using the system shell.
type NativeRuntime struct {
	// Shell overrides the default shell.
	Shell string
	// ShellArgs are passed to the shell before the command.
	ShellArgs []string
	// TTY attaches the command to a pseudo-terminal. Output is then
	// reported on the Stdout stream only.
	TTY bool
	// Logger receives debug output.
	Logger *slog.Logger
}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime(shell string, tty bool) *NativeRuntime {
	return &NativeRuntime{Shell: shell, TTY: tty}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return "native"
}

// Available returns whether a shell can be found.
func (r *NativeRuntime) Available() bool {
	_, err := r.shell()
	return err == nil
}

// Run executes req.Command through the shell in req.Dir.
func (r *NativeRuntime) Run(ctx context.Context, req Request) (*Result, error) {
	shell, err := r.shell()
	if err != nil {
		return nil, &LaunchError{Command: req.Command, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, interrupted(ctx)
	}

	args := append(r.shellArgs(shell), req.Command)
	cmd := exec.CommandContext(ctx, shell, args...)
	cmd.Dir = req.Dir
	cmd.Env = append(os.Environ(), req.Env...)
	if req.Dir != "" {
		// The inherited PWD names the caller's directory.
		cmd.Env = append(cmd.Env, "PWD="+req.Dir)
	}
	if !r.TTY {
		setProcessGroup(cmd)
	}
	cmd.Cancel = func() error { return killProcessTree(cmd) }
	cmd.WaitDelay = waitDelay

	r.logger().Debug("starting command", "shell", shell, "dir", req.Dir, "tty", r.TTY)

	out := newRelay(req.OnLine)
	start := time.Now()
	if r.TTY {
		err = r.runPTY(cmd, req.Stdin, out)
	} else {
		err = r.runPipes(cmd, req.Stdin, out)
	}
	elapsed := time.Since(start)

	var launch *LaunchError
	if errors.As(err, &launch) {
		launch.Command = req.Command
		return nil, launch
	}
	if ctx.Err() != nil {
		return nil, interrupted(ctx)
	}
	if err != nil {
		if code, ok := exitCodeOf(err); ok {
			return &Result{ExitCode: code, Duration: elapsed}, nil
		}
		// The process started but Wait failed for another reason (e.g. the
		// output pipes were held open past WaitDelay).
		if cmd.ProcessState != nil {
			return &Result{ExitCode: ExitCode(cmd.ProcessState.ExitCode()), Duration: elapsed}, nil
		}
		return nil, &LaunchError{Command: req.Command, Err: err}
	}
	return &Result{ExitCode: 0, Duration: elapsed}, nil
}

func (r *NativeRuntime) runPipes(cmd *exec.Cmd, stdin io.Reader, out *relay) error {
	stdout, stderr := out.writer(Stdout), out.writer(Stderr)
	defer stdout.Flush()
	defer stderr.Flush()

	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return &LaunchError{Command: cmd.String(), Err: err}
	}
	return cmd.Wait()
}

func (r *NativeRuntime) runPTY(cmd *exec.Cmd, stdin io.Reader, out *relay) error {
	term, err := pty.Start(cmd)
	if err != nil {
		return &LaunchError{Command: cmd.String(), Err: fmt.Errorf("failed to start command on PTY: %w", err)}
	}
	defer func() { _ = term.Close() }()

	if stdin != nil {
		// A plain copy from the terminal would outlive the command and steal
		// the next prompt's input, so the reader is cancelled on return.
		in, err := cancelreader.NewReader(stdin)
		if err != nil {
			return &LaunchError{Command: cmd.String(), Err: fmt.Errorf("attach stdin: %w", err)}
		}
		defer func() { _ = in.Close() }()
		defer in.Cancel()
		go func() { _, _ = io.Copy(term, in) }()
	}

	w := out.writer(Stdout)
	copied := make(chan struct{})
	go func() {
		defer close(copied)
		// Reading the master returns EIO once the child side closes.
		_, _ = io.Copy(w, term)
		w.Flush()
	}()

	waitErr := cmd.Wait()
	select {
	case <-copied:
	case <-time.After(waitDelay):
	}
	return waitErr
}

// shell determines which shell to use.
func (r *NativeRuntime) shell() (string, error) {
	if r.Shell != "" {
		if filepath.IsAbs(r.Shell) {
			return r.Shell, nil
		}
		path, err := exec.LookPath(r.Shell)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrShellNotFound, r.Shell)
		}
		return path, nil
	}

	switch goruntime.GOOS {
	case "windows":
		for _, candidate := range []string{"pwsh", "powershell", "cmd"} {
			if path, err := exec.LookPath(candidate); err == nil {
				return path, nil
			}
		}
	default:
		if shell := os.Getenv("SHELL"); shell != "" {
			return shell, nil
		}
		for _, candidate := range []string{"bash", "sh"} {
			if path, err := exec.LookPath(candidate); err == nil {
				return path, nil
			}
		}
	}
	return "", ErrShellNotFound
}

// shellArgs returns the arguments placed before the command string.
func (r *NativeRuntime) shellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return append([]string(nil), r.ShellArgs...)
	}

	base := filepath.Base(shell)
	if i := strings.LastIndex(base, "\\"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(strings.ToLower(base), ".exe")

	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		return []string{"-c"}
	}
}

func (r *NativeRuntime) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// exitCodeOf extracts a wait status from err, if any.
func exitCodeOf(err error) (ExitCode, bool) {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, false
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return ExitCode(128 + int(status.Signal())), true
	}
	return ExitCode(exitErr.ExitCode()), true
}
