package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/installkit/internal/logger"
)

func TestExecRunner_Success(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	runner := &ExecRunner{Log: logger.Nop()}
	res, err := runner.Run(context.Background(), "sh", "-c", "echo hello world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
	assert.NoError(t, res.Check("sh"))
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	runner := &ExecRunner{Log: logger.Nop()}
	res, err := runner.Run(context.Background(), "sh", "-c", "echo 'error message' >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "error message", PrimaryOutput(res))
	assert.ErrorContains(t, res.Check("sh"), "exit code 3")
}

func TestExecRunner_PassesEnvironment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	runner := &ExecRunner{Log: logger.Nop(), Env: map[string]string{"INSTALLKIT_TEST": "value"}}
	res, err := runner.Run(context.Background(), "sh", "-c", "echo $INSTALLKIT_TEST")
	require.NoError(t, err)
	assert.Equal(t, "value", res.Stdout)
}

func TestExecRunner_MissingProgram(t *testing.T) {
	t.Parallel()

	runner := &ExecRunner{Log: logger.Nop()}
	_, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}

func TestResultLines(t *testing.T) {
	t.Parallel()

	res := Result{Stdout: "a\r\n\nb"}
	assert.Equal(t, []string{"a", "b"}, res.Lines())
}

func writeScript(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}

func TestCommandsResolve(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	want := writeScript(t, second, "systemctl")
	writeScript(t, second, "rc")
	require.NoError(t, os.WriteFile(filepath.Join(first, "rc"), []byte("not executable"), 0o644))

	cmds := NewCommands()
	cmds.Detect("systemctl")
	cmds.Detect("rc")
	cmds.Detect("initctl")
	cmds.Set("service", "/custom/service")
	cmds.Resolve([]string{first, second})

	got, err := cmds.Get("systemctl")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	rc, err := cmds.Get("rc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "rc"), rc)

	_, err = cmds.Get("initctl")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, cmds.Has("initctl"))

	svc, err := cmds.Get("service")
	require.NoError(t, err)
	assert.Equal(t, "/custom/service", svc)

	assert.Equal(t, []string{"initctl", "rc", "service", "systemctl"}, cmds.Names())
}
