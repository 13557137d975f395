package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

const (
	defaultShell     = "sh"
	defaultShellFlag = "-c"
)

// SecretRegistrar marks a value for redaction in all later log output.
type SecretRegistrar interface {
	RegisterSecret(value string)
}

// ExecutionResult is what one child process produced.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Executor runs an assembled invocation.
type Executor interface {
	Execute(ctx context.Context, inv Invocation, silent bool) (ExecutionResult, error)
}

// ShellExecutor runs invocations as a single shell command line. The query
// clause carries shell quoting, so argv-style exec would pass the quotes
// through literally. The line is operator supplied.
type ShellExecutor struct {
	// Shell and ShellFlag default to "sh" and "-c".
	Shell     string
	ShellFlag string
	// Secrets receives the command line before execution when silent.
	Secrets SecretRegistrar
	// Echo receives the command line and live output when not silent.
	Echo io.Writer
	// Env is appended to the current process environment.
	Env []string
}

// Execute runs inv and waits for it to exit. A nonzero exit is a normal
// result; only a failure to start (or to collect output) returns an error.
func (e *ShellExecutor) Execute(ctx context.Context, inv Invocation, silent bool) (ExecutionResult, error) {
	if e == nil {
		return ExecutionResult{}, newError(ErrorCodeExecutionStart, "invoke: executor is nil", nil)
	}
	if silent && e.Secrets != nil {
		e.Secrets.RegisterSecret(inv.Line)
	}

	shell := e.Shell
	if shell == "" {
		shell = defaultShell
	}
	flag := e.ShellFlag
	if flag == "" {
		flag = defaultShellFlag
	}

	// #nosec G204 -- the line is assembled from workflow inputs owned by the operator.
	cmd := exec.CommandContext(ctx, shell, flag, inv.Line)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if !silent && e.Echo != nil {
		fmt.Fprintf(e.Echo, "[command]%s\n", inv.Line)
		cmd.Stdout = io.MultiWriter(&stdout, e.Echo)
		cmd.Stderr = io.MultiWriter(&stderr, e.Echo)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return ExecutionResult{}, newError(ErrorCodeExecutionStart, "invoke: start command", err)
	}

	result := ExecutionResult{}
	waitErr := cmd.Wait()
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return ExecutionResult{}, newError(ErrorCodeExecutionStart, "invoke: wait for command", waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	return result, nil
}

var _ Executor = (*ShellExecutor)(nil)
