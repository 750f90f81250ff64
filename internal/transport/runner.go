package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds a single external command.
const DefaultCommandTimeout = 30 * time.Second

// CommandRunner executes an external command and returns its standard
// output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands on the local machine with a per-command timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// Run executes the command and returns its trimmed stdout. Stderr never
// reaches the returned output; PowerShell writes progress records there.
// A non-zero exit is reported as an error that includes both streams,
// because sc.exe prints the reason for failures on stdout.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	// Grandchildren can hold the output pipe open after the kill.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	output := strings.TrimSpace(stdoutBuf.String())
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return output, fmt.Errorf("command %q timed out after %s", name, timeout)
	}
	if err != nil {
		err = fmt.Errorf("failed to execute '%s %s': %w", name, strings.Join(args, " "), err)
		if output != "" {
			err = fmt.Errorf("%w: %s", err, output)
		}
		if stderr := strings.TrimSpace(stderrBuf.String()); stderr != "" {
			err = fmt.Errorf("%w. Stderr: %s", err, stderr)
		}
		return output, err
	}
	return output, nil
}
