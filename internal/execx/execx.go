// Package execx wraps subprocess invocation behind an interface so scanner
// adapters can be tested without spawning real tools.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Runner invokes external commands. The context deadline is enforced by
// exec.CommandContext, which kills the process on expiry so no orphaned
// tool processes are left behind.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	LookPath(file string) (string, error)
}

// OSRunner executes commands against the real OS
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return stdout.Bytes(), fmt.Errorf("%s: %w", name, ctx.Err())
		}
		if stderr.Len() > 0 {
			return stdout.Bytes(), fmt.Errorf("%s %v: %w: %s", name, args, err, stderr.String())
		}
		return stdout.Bytes(), fmt.Errorf("%s %v: %w", name, args, err)
	}
	return stdout.Bytes(), nil
}

func (OSRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// ExitCode extracts the process exit code from a Run error, or -1 if the
// error does not carry one.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
