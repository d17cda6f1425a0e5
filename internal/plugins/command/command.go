package commandplugin

import (
	"context"

	"github.com/alexisbeaulieu97/installkit/internal/command"
	"github.com/alexisbeaulieu97/installkit/internal/engine"
)

// DetectionEvent is the handler after which detected command paths are known.
const DetectionEvent = "core.command.detection"

type commandPlugin struct {
	searchPath []string
}

// New creates the plugin that resolves every command requested during SETUP.
func New() engine.Plugin {
	return &commandPlugin{searchPath: command.DefaultSearchPath}
}

var _ engine.Plugin = (*commandPlugin)(nil)

func (p *commandPlugin) Name() string { return "core.command" }

func (p *commandPlugin) Events() []engine.Event {
	return []engine.Event{
		{Name: DetectionEvent, Stage: engine.StagePrograms, Priority: engine.PriorityFirst, Handler: p.detect},
	}
}

func (p *commandPlugin) detect(_ context.Context, c *engine.Context) error {
	cmds := c.Commands()
	cmds.Resolve(p.searchPath)
	for _, name := range cmds.Names() {
		path, err := cmds.Get(name)
		if err != nil {
			c.Log.Debug("command not found", "command", name)
			continue
		}
		c.Log.Debug("command detected", "command", name, "path", path)
	}
	return nil
}
