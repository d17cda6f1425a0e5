// Package command runs external programs and locates them on the host.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/alexisbeaulieu97/installkit/internal/logger"
)

// Result captures the outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Lines splits stdout into non-empty lines.
func (r Result) Lines() []string {
	var out []string
	for _, line := range strings.Split(r.Stdout, "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Check returns an error when the command exited non-zero.
func (r Result) Check(name string) error {
	if r.ExitCode == 0 {
		return nil
	}
	return fmt.Errorf("command '%s' failed with exit code %d: %s", name, r.ExitCode, PrimaryOutput(r))
}

// PrimaryOutput returns stderr if present, otherwise stdout.
func PrimaryOutput(res Result) string {
	if res.Stderr != "" {
		return res.Stderr
	}
	return res.Stdout
}

// Runner executes a program to completion. A non-zero exit is reported in
// Result.ExitCode; err is reserved for programs that could not run at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs programs with os/exec. Output is captured, never streamed,
// because the standard handles may carry the dialog.
type ExecRunner struct {
	Log *logger.Logger
	Env map[string]string
}

var _ Runner = (*ExecRunner)(nil)

// Run executes name with args.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdoutBuf, stderrBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = nil
	cmd.Env = buildEnv(r.Env)

	r.Log.Debug("executing command", "command", name, "args", args)
	err := cmd.Run()

	res := Result{
		Stdout: strings.TrimSpace(stdoutBuf.String()),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		err = nil
	}
	if err != nil {
		return res, fmt.Errorf("execute %s: %w", name, err)
	}

	r.Log.Debug("command finished", "command", name, "rc", res.ExitCode, "stdout", res.Stdout, "stderr", res.Stderr)
	return res, nil
}

func buildEnv(custom map[string]string) []string {
	env := append([]string{}, os.Environ()...)
	env = append(env, "LC_ALL=C")
	for k, v := range custom {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
