package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// Runner executes an accepted command
type Runner interface {
	Run(ctx context.Context, command string) error
}

// ExecRunner runs commands through the user's shell with the given streams.
type ExecRunner struct {
	Shell  string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner uses $SHELL and the process streams
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Shell:  os.Getenv("SHELL"),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Command builds the exec.Cmd for command without starting it.
func (r *ExecRunner) Command(ctx context.Context, command string) *exec.Cmd {
	var cmd *exec.Cmd
	switch {
	case runtime.GOOS == "windows" && r.Shell == "":
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	case r.Shell != "":
		cmd = exec.CommandContext(ctx, r.Shell, "-c", command)
	default:
		cmd = exec.CommandContext(ctx, "/bin/sh", "-c", command)
	}
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd
}

// Run waits for the command. A non-zero exit is reported as EXECUTION_NON_ZERO.
func (r *ExecRunner) Run(ctx context.Context, command string) error {
	err := r.Command(ctx, command).Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return aerrors.ErrExecutionFailed(exitErr.ExitCode(), err)
	}
	return aerrors.ErrExecutionFailed(-1, err)
}
