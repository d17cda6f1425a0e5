package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/installkit/internal/engine"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

func executeCommand(args ...string) (string, error) {
	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func stubPlugins(t *testing.T, plugins ...engine.Plugin) {
	t.Helper()
	original := builtinPlugins
	t.Cleanup(func() { builtinPlugins = original })
	builtinPlugins = func() []engine.Plugin { return plugins }
}

func TestInstallCommandParsesFlags(t *testing.T) {
	original := installCmdRunner
	t.Cleanup(func() { installCmdRunner = original })

	cfgPath := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("environment: {}\n"), 0o644))

	var got installOptions
	installCmdRunner = func(_ context.Context, opts installOptions, _ io.Writer) error {
		got = opts
		return nil
	}

	_, err := executeCommand("install", "--config", cfgPath, "--dialect", "machine",
		"--log-dir", "/var/log/kit", "-e", "Net.SSHEnable=bool:true", "--verbose")
	require.NoError(t, err)
	require.Equal(t, installOptions{
		ConfigPath: cfgPath,
		Dialect:    environment.DialectMachine,
		LogDir:     "/var/log/kit",
		Env:        []string{"Net.SSHEnable=bool:true"},
		Verbose:    true,
	}, got)
}

func TestInstallCommandValidatesOptions(t *testing.T) {
	_, err := executeCommand("install", "--config", "/path/does/not/exist")
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")

	_, err = executeCommand("install", "--dialect", "telepathy")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown dialect")

	_, err = executeCommand("install", "-e", "novalue")
	require.Error(t, err)
	require.Contains(t, err.Error(), "KEY=type:value")
}

func TestValidateInstallOptions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    installOptions
		wantErr string
	}{
		{name: "defaults", opts: installOptions{}},
		{name: "directory as config", opts: installOptions{ConfigPath: dir}, wantErr: "is a directory"},
		{name: "untyped override", opts: installOptions{Env: []string{"A=plain"}}, wantErr: "type prefix"},
		{name: "unknown type", opts: installOptions{Env: []string{"A=float:1.5"}}, wantErr: "unknown value type"},
		{name: "typed override", opts: installOptions{Env: []string{"A=int:3"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateInstallOptions(tt.opts)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildEnvironment(t *testing.T) {
	t.Parallel()

	env, err := buildEnvironment(installOptions{
		ConfigPath: "answers.yaml",
		LogFile:    "/tmp/kit.log",
		Env:        []string{"Net.SSHUser=str:deploy", "Core.Retries=int:2"},
	})
	require.NoError(t, err)

	abs, err := filepath.Abs("answers.yaml")
	require.NoError(t, err)
	require.Equal(t, abs, env.String(environment.ConfigFile, ""))
	require.Equal(t, environment.DialectHuman, env.String(environment.DialogDialect, ""))
	require.Equal(t, "/tmp/kit.log", env.String(environment.LogFileName, ""))
	require.Equal(t, "deploy", env.String(environment.SSHUser, ""))
	require.Equal(t, 2, env.Get("Core.Retries", nil))
	require.False(t, env.Bool(environment.LogVerbose, true))
}

func TestRunInstallExecutesPlugins(t *testing.T) {
	var seen string
	stubPlugins(t, engine.NewPlugin("probe", engine.Event{
		Name:  "probe.misc",
		Stage: engine.StageMisc,
		Handler: func(_ context.Context, c *engine.Context) error {
			seen = c.Env.String("Probe.Value", "")
			c.Log.Debug("probe ran")
			return nil
		},
	}))

	var stderr bytes.Buffer
	err := runInstall(context.Background(), installOptions{Env: []string{"Probe.Value=str:ok"}, Verbose: true}, &stderr)
	require.NoError(t, err)
	require.Equal(t, "ok", seen)
	require.Contains(t, stderr.String(), "probe ran")
}

func TestRunInstallExitCodes(t *testing.T) {
	stubPlugins(t, engine.NewPlugin("probe", engine.Event{
		Name:  "probe.customization",
		Stage: engine.StageCustomization,
		Handler: func(_ context.Context, c *engine.Context) error {
			if c.Env.Bool("Probe.Abort", false) {
				return kiterrors.NewAbortError("user said no")
			}
			return errors.New("boom")
		},
	}))

	err := runInstall(context.Background(), installOptions{Env: []string{"Probe.Abort=bool:true"}}, io.Discard)
	require.Equal(t, exitAbort, exitCode(err))

	err = runInstall(context.Background(), installOptions{}, io.Discard)
	require.Equal(t, exitError, exitCode(err))

	require.Equal(t, exitOK, exitCode(nil))
}

func TestStagesCommandPrintsPlan(t *testing.T) {
	noop := func(context.Context, *engine.Context) error { return nil }
	stubPlugins(t, engine.NewPlugin("demo",
		engine.Event{Name: "demo.late", Stage: engine.StageMisc, Priority: engine.PriorityLow, Handler: noop},
		engine.Event{Name: "demo.early", Stage: engine.StageMisc, Priority: engine.PriorityHigh, Handler: noop},
		engine.Event{Name: "demo.boot", Stage: engine.StageBoot, Handler: noop},
	))

	out, err := executeCommand("stages")
	require.NoError(t, err)
	require.Contains(t, out, "Stage BOOT (1 handlers): demo.boot\n")
	require.Contains(t, out, "Stage MISC (2 handlers): demo.early, demo.late\n")
}

func TestStagesCommandReportsCycles(t *testing.T) {
	noop := func(context.Context, *engine.Context) error { return nil }
	stubPlugins(t, engine.NewPlugin("demo",
		engine.Event{Name: "demo.a", Stage: engine.StageMisc, After: []string{"demo.b"}, Handler: noop},
		engine.Event{Name: "demo.b", Stage: engine.StageMisc, After: []string{"demo.a"}, Handler: noop},
	))

	_, err := executeCommand("stages")
	require.Error(t, err)
	var cfgErr *kiterrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, exitError, exitCode(err))
}
