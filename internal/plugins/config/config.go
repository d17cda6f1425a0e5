package configplugin

import (
	"context"

	"github.com/alexisbeaulieu97/installkit/internal/config"
	"github.com/alexisbeaulieu97/installkit/internal/engine"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
)

type configPlugin struct{}

// New creates the plugin that loads the answer file named by Core.ConfigFile
// into the environment before anything else boots.
func New() engine.Plugin {
	return &configPlugin{}
}

var _ engine.Plugin = (*configPlugin)(nil)

func (p *configPlugin) Name() string { return "core.config" }

func (p *configPlugin) Events() []engine.Event {
	return []engine.Event{
		{
			Name:      "core.config.load",
			Stage:     engine.StageBoot,
			Priority:  engine.PriorityFirst,
			Condition: func(env *environment.Environment) bool { return env.String(environment.ConfigFile, "") != "" },
			Handler:   p.load,
		},
	}
}

func (p *configPlugin) load(_ context.Context, c *engine.Context) error {
	path := c.Env.String(environment.ConfigFile, "")
	cfg, err := config.ParseConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Apply(c.Env); err != nil {
		return err
	}
	c.Log.Debug("answer file loaded", "path", path, "keys", len(cfg.Environment))
	return nil
}
