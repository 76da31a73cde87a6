// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package runtime

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts the shell in its own process group so the whole
// tree can be signalled at once.
func setProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// killProcessTree kills the process group led by the shell. PTY sessions
// are started with setsid, which also makes the shell a group leader.
func killProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
