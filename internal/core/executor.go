package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single command when none is configured.
const DefaultTimeout = 5 * time.Minute

// Runner executes a resolved command.
type Runner interface {
	Execute(ctx context.Context, cmd Command) (*Result, error)
}

// Executor handles command execution
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates a new executor. A non-positive timeout uses
// DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		timeout: timeout,
	}
}

// Timeout returns the per-command limit.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Result represents command execution result
type Result struct {
	Output   string
	ExitCode int
	Duration time.Duration
	Error    error
}

// Execute runs cmd and returns its combined output. A process that starts
// but fails is reported through Result.Error; the returned error is only
// set when cmd is unusable.
func (e *Executor) Execute(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Cmd == "" {
		return nil, errors.New("executor: empty command")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	execCmd := exec.CommandContext(ctx, cmd.Cmd, cmd.Args...)
	execCmd.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	start := time.Now()
	err := execCmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n" + stderr.String()
	}

	result := &Result{
		Output:   strings.TrimSpace(output),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			result.ExitCode = exitError.ExitCode()
		} else {
			result.ExitCode = -1
		}
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %s: %w", e.timeout, err)
		}
		result.Error = err
	}

	return result, nil
}
