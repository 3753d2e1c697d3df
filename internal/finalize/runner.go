package finalize

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// CmdResult holds the result of a command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs external commands. Run returns an error only when the
// process could not be run; a non-zero exit is reported in ExitCode.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (CmdResult, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (CmdResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	result := CmdResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, result.setExit(runErr)
}

// setExit records the exit status of a finished command in r. A process
// that exited non-zero is not an error; a process that never ran is.
func (r *CmdResult) setExit(err error) error {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		r.ExitCode = 0
	case errors.As(err, &exitErr):
		r.ExitCode = exitErr.ExitCode()
	default:
		return err
	}
	return nil
}
