package miscplugin

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/installkit/internal/dialog"
	"github.com/alexisbeaulieu97/installkit/internal/engine"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
	"github.com/alexisbeaulieu97/installkit/internal/filetx"
	"github.com/alexisbeaulieu97/installkit/internal/logger"
)

func run(t *testing.T, env *environment.Environment, out *bytes.Buffer, extra ...engine.Plugin) error {
	t.Helper()
	reg := engine.NewRegistry()
	require.NoError(t, reg.Register(append([]engine.Plugin{New()}, extra...)...))
	c := engine.New(engine.Options{Registry: reg, Env: env})
	c.SetDialog(dialog.NewMachine(strings.NewReader(""), out, logger.Nop()))
	return c.Run(context.Background())
}

func TestBootSetsDefaultsOnce(t *testing.T) {
	t.Parallel()

	env := environment.New()
	env.Set(environment.SessionID, "fixed")
	var out bytes.Buffer
	require.NoError(t, run(t, env, &out))

	require.Equal(t, "fixed", env.String(environment.SessionID, ""))
	_, ok := env.Get(environment.ModifiedFiles, nil).(*filetx.ModifiedList)
	require.True(t, ok)
	require.NotEmpty(t, env.String(environment.ExecutablePath, ""))
	require.Contains(t, out.String(), "### Installation completed successfully\n")
	require.NotContains(t, out.String(), "MODIFIED_FILES")
}

func TestCloseupDisplaysModifiedFiles(t *testing.T) {
	t.Parallel()

	env := environment.New()
	list := filetx.NewModifiedList()
	list.Add("/etc/ssh/sshd_config")
	list.Add("/root/.ssh/authorized_keys")
	env.Set(environment.ModifiedFiles, list)

	var out bytes.Buffer
	require.NoError(t, run(t, env, &out))

	require.Contains(t, out.String(),
		"***D:MULTI-STRING MODIFIED_FILES "+dialog.Boundary+"\n/etc/ssh/sshd_config\n/root/.ssh/authorized_keys\n"+dialog.Boundary+"\n")
}

func TestStatusReportsFailure(t *testing.T) {
	t.Parallel()

	failing := engine.NewPlugin("failing", engine.Event{
		Name:    "failing.misc",
		Stage:   engine.StageMisc,
		Handler: func(context.Context, *engine.Context) error { return errors.New("boom") },
	})

	var out bytes.Buffer
	require.Error(t, run(t, environment.New(), &out, failing))
	require.Contains(t, out.String(), "### Installation failed, please check the log file for details\n")
}
