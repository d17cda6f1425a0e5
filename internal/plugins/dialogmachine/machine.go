package machineplugin

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

// SinkName is the router sink forwarding log records to the controller.
const SinkName = "dialog"

// channel is the pair of streams the dialog talks over.
type channel struct {
	in     io.Reader
	out    io.Writer
	closer io.Closer
}

type machinePlugin struct {
	open    func(sink *os.File) (*channel, error)
	ch      *channel
	dlg     *dialog.Machine
	enabled bool
}

// New creates the machine dialog plugin. It activates when Dialog.Dialect is
// "machine" and takes over the process standard handles.
func New() engine.Plugin {
	return &machinePlugin{open: openStdChannel}
}

var _ engine.Plugin = (*machinePlugin)(nil)

func openStdChannel(sink *os.File) (*channel, error) {
	ch, err := dialog.OpenChannel(sink)
	if err != nil {
		return nil, err
	}
	return &channel{in: ch.In, out: ch.Out, closer: ch}, nil
}

func (p *machinePlugin) Name() string { return "dialog.machine" }

func (p *machinePlugin) Events() []engine.Event {
	return []engine.Event{
		{
			Name:     "dialog.machine.init",
			Stage:    engine.StageBoot,
			Priority: engine.PriorityMedium,
			Condition: func(env *environment.Environment) bool {
				return env.String(environment.DialogDialect, "") == environment.DialectMachine
			},
			Handler: p.init,
		},
		{
			Name:      "dialog.machine.terminate",
			Stage:     engine.StageTerminate,
			Priority:  engine.PriorityLast + 10,
			Condition: func(*environment.Environment) bool { return p.enabled },
			Handler:   p.terminate,
		},
	}
}

func (p *machinePlugin) init(_ context.Context, c *engine.Context) error {
	c.Env.Set(environment.DialogBoundary, dialog.Boundary)

	sink, _ := c.Env.Get(environment.LogFileHandle, nil).(*os.File)
	ch, err := p.open(sink)
	if err != nil {
		return err
	}
	p.ch = ch
	p.dlg = dialog.NewMachine(ch.in, ch.out, c.Log)

	c.Router.Attach(SinkName, zerolog.InfoLevel, logger.NewLineWriter(p.dlg.Writer(), dialog.LogLinePrefix))
	c.SetDialog(p.dlg)
	p.enabled = true

	c.RegisterNotification(func(n engine.Notification) error {
		if n == engine.NotifyReexec {
			return p.close(c)
		}
		return nil
	})
	return nil
}

func (p *machinePlugin) terminate(_ context.Context, c *engine.Context) error {
	if err := p.dlg.Terminate(); err != nil {
		_ = p.close(c)
		return err
	}
	return p.close(c)
}

// close restores the standard handles; safe to call more than once.
func (p *machinePlugin) close(c *engine.Context) error {
	c.Router.Detach(SinkName)
	p.enabled = false
	if p.ch == nil || p.ch.closer == nil {
		return nil
	}
	closer := p.ch.closer
	p.ch.closer = nil
	return closer.Close()
}
