// Package gateways implements adapters around the external tools the
// pipeline orchestrates. Every gateway is a thin wrapper over a child
// process; the pipeline's own logic stays in services and orchestrators.
package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"trainpipe/internal/domain/interfaces"
)

// CommandRunner executes external tool processes.
type CommandRunner struct {
	defaultTimeout time.Duration
	log            interfaces.Logger
}

// NewCommandRunner creates a runner with a 30 minute default timeout.
func NewCommandRunner(log interfaces.Logger) *CommandRunner {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &CommandRunner{
		defaultTimeout: 30 * time.Minute,
		log:            log,
	}
}

// CommandSpec describes one external-process invocation. Exactly one of
// Argv and Script must be set: Argv executes the program directly, Script
// runs through /bin/sh -c for free-form command strings.
type CommandSpec struct {
	Argv        []string
	Script      string
	WorkingDir  string
	Env         map[string]string
	Timeout     time.Duration
	Description string
}

// CommandResult contains the outcome of a process invocation.
type CommandResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error
}

// Run executes the spec and blocks until the process exits or the context
// is canceled. A failure to start the process is reported with ExitCode -1.
func (r *CommandRunner) Run(ctx context.Context, spec CommandSpec) *CommandResult {
	startTime := time.Now()
	result := &CommandResult{}

	timeout := spec.Timeout
	if timeout == 0 {
		timeout = r.defaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	switch {
	case len(spec.Argv) > 0:
		//nolint:gosec // G204: tool invocation is the purpose of this runner
		cmd = exec.CommandContext(execCtx, spec.Argv[0], spec.Argv[1:]...)
	case spec.Script != "":
		//nolint:gosec // G204: free-form commands are operator-provided run parameters
		cmd = exec.CommandContext(execCtx, "/bin/sh", "-c", spec.Script)
	default:
		result.Err = errors.New("command spec has neither argv nor script")
		result.ExitCode = -1
		return result
	}

	if spec.WorkingDir != "" {
		cmd.Dir = spec.WorkingDir
	}

	env := os.Environ()
	for key, value := range spec.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if spec.Description != "" {
		r.log.Info("executing", interfaces.F("step", spec.Description))
	}

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Err = err
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		case execCtx.Err() == context.DeadlineExceeded:
			result.Err = fmt.Errorf("command timeout after %v", timeout)
			result.ExitCode = -1
		default:
			result.ExitCode = -1
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}
