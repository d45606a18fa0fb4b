//go:build windows

package command

import (
	"os/exec"
	"syscall"
)

// hideConsoleWindow keeps silent installers from flashing a console on the
// interactive desktop.
func hideConsoleWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow: true,
	}
}
