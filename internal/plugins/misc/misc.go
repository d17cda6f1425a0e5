package miscplugin

import (
	"context"
	"os"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/installkit/internal/engine"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
	"github.com/alexisbeaulieu97/installkit/internal/filetx"
)

type miscPlugin struct{}

// New creates the plugin owning run-wide bookkeeping: the session id, the
// modified-files collector and the final status message.
func New() engine.Plugin {
	return &miscPlugin{}
}

var _ engine.Plugin = (*miscPlugin)(nil)

func (p *miscPlugin) Name() string { return "core.misc" }

func (p *miscPlugin) Events() []engine.Event {
	return []engine.Event{
		{Name: "core.misc.boot", Stage: engine.StageBoot, Priority: engine.PriorityFirst, Handler: p.boot},
		{
			Name:     "core.misc.log-session",
			Stage:    engine.StageBoot,
			Priority: engine.PriorityLow,
			After:    []string{"core.log.init"},
			Handler:  p.logSession,
		},
		{
			Name:      "core.misc.modified-files",
			Stage:     engine.StageCloseup,
			Priority:  engine.PriorityLast,
			Condition: hasModifiedFiles,
			Handler:   p.showModified,
		},
		{Name: "core.misc.status", Stage: engine.StageTerminate, Priority: engine.PriorityLast, Handler: p.status},
	}
}

func (p *miscPlugin) boot(_ context.Context, c *engine.Context) error {
	c.Env.SetDefault(environment.SessionID, uuid.NewString())
	c.Env.SetDefault(environment.ModifiedFiles, filetx.NewModifiedList())
	if _, ok := c.Env.Lookup(environment.ExecutablePath); !ok {
		if path, err := os.Executable(); err == nil {
			c.Env.Set(environment.ExecutablePath, path)
		}
	}
	return nil
}

func (p *miscPlugin) logSession(_ context.Context, c *engine.Context) error {
	c.Log.Debug("session started",
		"engine", engine.Name,
		"version", engine.Version,
		"session", c.Env.String(environment.SessionID, ""),
		"pid", os.Getpid(),
		"executable", c.Env.String(environment.ExecutablePath, ""),
	)
	for _, key := range c.Env.Keys() {
		if key == environment.MainTransaction || key == environment.ModifiedFiles || key == environment.LogFileHandle {
			continue
		}
		c.Log.Debug("environment", "key", key, "value", environment.FormatTyped(c.Env.Get(key, nil)))
	}
	return nil
}

func modifiedFiles(env *environment.Environment) *filetx.ModifiedList {
	list, _ := env.Get(environment.ModifiedFiles, nil).(*filetx.ModifiedList)
	return list
}

func hasModifiedFiles(env *environment.Environment) bool {
	list := modifiedFiles(env)
	return list != nil && list.Len() > 0
}

func (p *miscPlugin) showModified(_ context.Context, c *engine.Context) error {
	return c.Dialog().DisplayMultiString("MODIFIED_FILES", modifiedFiles(c.Env).Paths(), "Modified files")
}

func (p *miscPlugin) status(_ context.Context, c *engine.Context) error {
	switch {
	case c.Env.Bool(environment.Aborted, false):
		return c.Dialog().Note("Installation aborted by user")
	case c.Env.Bool(environment.Error, false):
		return c.Dialog().Note("Installation failed, please check the log file for details")
	default:
		return c.Dialog().Note("Installation completed successfully")
	}
}
