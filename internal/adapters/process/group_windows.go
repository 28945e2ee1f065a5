//go:build windows

package process

import "os/exec"

// configureProcessGroup is a no-op; Windows has no POSIX process groups
func configureProcessGroup(cmd *exec.Cmd) {}

// terminateGroup has no graceful group signal here, so it kills the
// process directly
func terminateGroup(cmd *exec.Cmd) error {
	return killGroup(cmd)
}

// killGroup kills the process
func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
