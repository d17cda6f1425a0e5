package logplugin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexisbeaulieu97/installkit/internal/engine"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
	"github.com/alexisbeaulieu97/installkit/internal/logger"
)

// SinkName is the router sink carrying the log file.
const SinkName = "file"

type logPlugin struct {
	file    *os.File
	openErr error

	now    func() time.Time
	getenv func(string) string
	setenv func(string, string) error
}

// New creates the plugin that opens the log file at boot and closes it at
// the very end of the run or before a re-exec.
func New() engine.Plugin {
	return &logPlugin{now: time.Now, getenv: os.Getenv, setenv: os.Setenv}
}

var _ engine.Plugin = (*logPlugin)(nil)

func (p *logPlugin) Name() string { return "core.log" }

func (p *logPlugin) Events() []engine.Event {
	return []engine.Event{
		{Name: "core.log.init", Stage: engine.StageBoot, Priority: engine.PriorityHigh, Handler: p.init},
		{Name: "core.log.setup", Stage: engine.StageSetup, Priority: engine.PriorityHigh, Handler: p.setup},
		{Name: "core.log.terminate", Stage: engine.StageTerminate, Priority: engine.PriorityLast + 1000, Handler: p.terminate},
	}
}

// fileName resolves the log path. Process variables win over the
// environment so a re-exec keeps writing to the same file.
func (p *logPlugin) fileName(env *environment.Environment) (string, error) {
	env.SetDefault(environment.LogFileNamePrefix, environment.DefaultLogPrefix)
	prefix := env.String(environment.LogFileNamePrefix, environment.DefaultLogPrefix)

	dir := p.getenv(environment.SystemLogDir)
	if dir == "" {
		dir = env.String(environment.LogDir, environment.DefaultLogDirectory)
	}
	if dir == "" {
		dir = os.TempDir()
	}
	env.Set(environment.LogDir, dir)

	name := p.getenv(environment.SystemLogFile)
	if name == "" {
		name = env.String(environment.LogFileName, "")
	}
	if name == "" {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
		name = filepath.Join(dir, fmt.Sprintf("%s-%s-%s.log", prefix, p.now().Format("20060102150405"), suffix))
	}
	return filepath.Abs(name)
}

func (p *logPlugin) init(_ context.Context, c *engine.Context) error {
	env := c.Env
	env.SetDefault(environment.LogRemoveAtExit, false)
	env.SetDefault(environment.LogFilterKeys, []string{})

	name, err := p.fileName(env)
	if err != nil {
		return err
	}
	env.Set(environment.LogFileName, name)
	if err := p.setenv(environment.SystemLogFile, name); err != nil {
		return err
	}

	var out io.Writer = io.Discard
	file, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		p.openErr = err
	} else {
		p.file = file
		out = file
		env.Set(environment.LogFileHandle, file)
	}

	redactor := logger.NewRedactor(out)
	redactor.AddSource(func() []string { return filterValues(env) })
	c.Router.Attach(SinkName, zerolog.DebugLevel, logger.NewFileWriter(redactor))

	c.RegisterNotification(func(n engine.Notification) error {
		if n == engine.NotifyReexec {
			return p.close(c, false)
		}
		return nil
	})
	return nil
}

// filterValues returns the current values of the keys listed under
// Core.LogFilterKeys.
func filterValues(env *environment.Environment) []string {
	var values []string
	for _, key := range env.Strings(environment.LogFilterKeys) {
		switch v := env.Get(key, nil).(type) {
		case string:
			if v != "" {
				values = append(values, v)
			}
		case []string:
			values = append(values, v...)
		}
	}
	return values
}

func (p *logPlugin) setup(_ context.Context, c *engine.Context) error {
	name := c.Env.String(environment.LogFileName, "")
	if p.openErr != nil {
		c.Log.Warn(fmt.Sprintf("Cannot open log file '%s': %v", name, p.openErr))
		return nil
	}
	return c.Dialog().Note(fmt.Sprintf("Log file: %s", name))
}

func (p *logPlugin) terminate(_ context.Context, c *engine.Context) error {
	return p.close(c, true)
}

// close detaches and closes the log file. The file itself is removed only at
// the end of the run, never across a re-exec that keeps appending to it.
func (p *logPlugin) close(c *engine.Context, final bool) error {
	c.Router.Detach(SinkName)
	c.Env.Delete(environment.LogFileHandle)

	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		if err != nil {
			return err
		}
	}

	name := c.Env.String(environment.LogFileName, "")
	if final && c.Env.Bool(environment.LogRemoveAtExit, false) && name != "" {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			c.Log.Debug("cannot remove log file", "path", name, "error", err.Error())
		}
	}
	return nil
}
