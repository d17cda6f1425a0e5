package humanplugin

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/alexisbeaulieu97/installkit/internal/dialog"
	"github.com/alexisbeaulieu97/installkit/internal/engine"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
	"github.com/alexisbeaulieu97/installkit/internal/logger"
)

// SinkName is the router sink printing warnings to the terminal.
const SinkName = "console"

type humanPlugin struct {
	in      io.Reader
	out     io.Writer
	console io.Writer
	dlg     *dialog.Human
}

// New creates the interactive terminal dialog plugin, active unless another
// dialect was requested.
func New() engine.Plugin {
	return &humanPlugin{in: os.Stdin, out: os.Stdout, console: os.Stderr}
}

var _ engine.Plugin = (*humanPlugin)(nil)

func (p *humanPlugin) Name() string { return "dialog.human" }

func (p *humanPlugin) Events() []engine.Event {
	return []engine.Event{
		{
			Name:     "dialog.human.init",
			Stage:    engine.StageBoot,
			Priority: engine.PriorityMedium,
			Condition: func(env *environment.Environment) bool {
				return env.String(environment.DialogDialect, environment.DialectHuman) == environment.DialectHuman
			},
			Handler: p.init,
		},
		{
			Name:      "dialog.human.terminate",
			Stage:     engine.StageTerminate,
			Priority:  engine.PriorityLast + 10,
			Condition: func(*environment.Environment) bool { return p.dlg != nil },
			Handler:   p.terminate,
		},
	}
}

func (p *humanPlugin) init(_ context.Context, c *engine.Context) error {
	p.dlg = dialog.NewHuman(p.in, p.out, c.Log)
	c.Router.Attach(SinkName, zerolog.WarnLevel, logger.NewConsoleWriter(p.console))
	c.SetDialog(p.dlg)
	return nil
}

func (p *humanPlugin) terminate(_ context.Context, c *engine.Context) error {
	c.Router.Detach(SinkName)
	return p.dlg.Terminate()
}
