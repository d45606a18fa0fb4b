// pkg/command/command.go - synchronous process invocation for silverback.
//
// Installer and uninstaller processes run to completion or until the caller's
// deadline; on timeout the child is force-terminated rather than left
// orphaned. A non-zero exit is not an error at this layer - the exit-code
// contract belongs to the caller.

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrTimeout reports that the child process exceeded its deadline and was
// killed.
var ErrTimeout = errors.New("process timed out")

// Spec describes a command invocation.
type Spec struct {
	Path string
	Args []string
}

func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Path
	}
	return fmt.Sprintf("%s %v", s.Path, s.Args)
}

// Result captures the outcome of a completed process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes a Spec. Implementations must respect ctx cancellation.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

// killGracePeriod bounds how long Wait lingers after the context kills the
// child before closing its pipes.
const killGracePeriod = 5 * time.Second

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run blocks until the process exits or ctx expires. On expiry the process
// is killed and ErrTimeout is returned. Start failures (missing binary,
// permission denied) are returned as errors; normal exits, zero or not, are
// returned in the Result.
func (ExecRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.WaitDelay = killGracePeriod
	hideConsoleWindow(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		ExitCode: exitCodeOf(cmd, err),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if ctx.Err() != nil {
		return res, fmt.Errorf("%w: %s", ErrTimeout, spec.Path)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Process ran and exited non-zero; the exit code carries the verdict.
			return res, nil
		}
		return res, fmt.Errorf("failed to start %s: %w", spec.Path, err)
	}
	return res, nil
}

func exitCodeOf(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
