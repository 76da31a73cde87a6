// SPDX-License-Identifier: MPL-2.0

//go:build windows

package runtime

import (
	"os/exec"
	"strconv"
)

func setProcessGroup(*exec.Cmd) {}

// killProcessTree terminates the shell and its children with taskkill,
// falling back to killing the shell alone.
func killProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	kill := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(cmd.Process.Pid))
	if err := kill.Run(); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
