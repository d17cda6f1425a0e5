package humanplugin

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/installkit/internal/dialog"
	"github.com/alexisbeaulieu97/installkit/internal/engine"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
	"github.com/alexisbeaulieu97/installkit/internal/logger"
)

func TestHumanDialogIsDefault(t *testing.T) {
	t.Parallel()

	var out, console bytes.Buffer
	p := &humanPlugin{in: strings.NewReader("b\n"), out: &out, console: &console}

	var answer string
	asker := engine.NewPlugin("asker", engine.Event{
		Name:  "asker.customization",
		Stage: engine.StageCustomization,
		Handler: func(_ context.Context, c *engine.Context) error {
			c.Log.Warn("disk almost full")
			c.Log.Info("quiet detail")
			var err error
			answer, err = c.Dialog().QueryString(dialog.StringQuery{Name: "Host", ValidValues: []string{"a", "b"}})
			return err
		},
	})

	router := logger.NewRouter()
	log, err := logger.New(logger.Options{Level: "debug", Writer: router})
	require.NoError(t, err)
	reg := engine.NewRegistry()
	require.NoError(t, reg.Register(p, asker))
	env := environment.New()
	c := engine.New(engine.Options{Registry: reg, Env: env, Log: log, Router: router})

	require.NoError(t, c.Run(context.Background()))
	require.Equal(t, "b", answer)
	require.Equal(t, environment.DialectHuman, env.String(environment.DialogDialect, ""))
	require.Contains(t, out.String(), "Please specify 'Host'")
	require.Contains(t, console.String(), "disk almost full")
	require.NotContains(t, console.String(), "quiet detail")
	require.NotContains(t, router.Sinks(), SinkName)
}

func TestHumanDialogInactiveForMachineDialect(t *testing.T) {
	t.Parallel()

	p := &humanPlugin{in: strings.NewReader(""), out: &bytes.Buffer{}, console: &bytes.Buffer{}}
	reg := engine.NewRegistry()
	require.NoError(t, reg.Register(p))
	env := environment.New()
	env.Set(environment.DialogDialect, environment.DialectMachine)
	c := engine.New(engine.Options{Registry: reg, Env: env})

	require.NoError(t, c.Run(context.Background()))
	require.Equal(t, engine.StateSkipped, c.State("dialog.human.init"))
	require.Equal(t, engine.StateSkipped, c.State("dialog.human.terminate"))
}
