package engine

import (
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/installkit/internal/command"
	"github.com/alexisbeaulieu97/installkit/internal/dialog"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
	"github.com/alexisbeaulieu97/installkit/internal/logger"
	"github.com/alexisbeaulieu97/installkit/internal/services"
	"github.com/alexisbeaulieu97/installkit/internal/transaction"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// ExecFunc replaces the running process image.
type ExecFunc func(argv0 string, argv, envv []string) error

// Options configures a Context.
type Options struct {
	Registry *Registry
	Env      *environment.Environment
	Log      *logger.Logger
	// Router receives sinks attached by plugins. It should be the writer
	// behind Log. A nil Log becomes a debug logger writing to Router.
	Router *logger.Router
	Runner command.Runner
	// Exec defaults to execve(2).
	Exec ExecFunc
	Args []string
}

// Context is the state shared by every handler of a run: the environment,
// the active dialog and transaction, detected commands and the registered
// service provider.
type Context struct {
	Env    *environment.Environment
	Log    *logger.Logger
	Router *logger.Router

	mu            sync.Mutex
	registry      *Registry
	plan          *Plan
	dialog        dialog.Dialog
	tx            *transaction.Transaction
	runner        command.Runner
	commands      *command.Commands
	services      services.Provider
	notifications []NotificationHandler
	states        map[string]State
	stage         Stage
	exec          ExecFunc
	args          []string
}

// New creates a Context. Missing options get working defaults.
func New(opts Options) *Context {
	router := opts.Router
	if router == nil {
		router = logger.NewRouter()
	}
	log := opts.Log
	if log == nil {
		// sinks attached later by plugins decide what is kept
		routed, err := logger.New(logger.Options{Level: "debug", Writer: router})
		if err != nil {
			routed = logger.Nop()
		}
		log = routed
	}
	env := opts.Env
	if env == nil {
		env = environment.New()
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	runner := opts.Runner
	if runner == nil {
		runner = &command.ExecRunner{Log: log}
	}
	exec := opts.Exec
	if exec == nil {
		exec = defaultExec
	}
	tx := transaction.New(log)
	env.Set(environment.MainTransaction, tx)

	return &Context{
		Env:      env,
		Log:      log,
		Router:   router,
		registry: registry,
		dialog:   &dialog.Unavailable{Log: log},
		tx:       tx,
		runner:   runner,
		commands: command.NewCommands(),
		states:   make(map[string]State),
		exec:     exec,
		args:     opts.Args,
	}
}

// Dialog returns the active dialog.
func (c *Context) Dialog() dialog.Dialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog
}

// SetDialog makes d the active dialog.
func (c *Context) SetDialog(d dialog.Dialog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = d
	c.Env.Set(environment.DialogDialect, d.Name())
}

// Transaction returns the main transaction of the run.
func (c *Context) Transaction() *transaction.Transaction { return c.tx }

func (c *Context) Commands() *command.Commands { return c.commands }

func (c *Context) Runner() command.Runner { return c.runner }

// ServiceDeps bundles what a service provider needs from the context.
func (c *Context) ServiceDeps() services.Deps {
	return services.Deps{Runner: c.runner, Commands: c.commands, Log: c.Log}
}

// RegisterServices activates p. Only one provider may be active.
func (c *Context) RegisterServices(p services.Provider) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.services != nil {
		return kiterrors.NewPluginError(p.Name(), fmt.Errorf("service provider %s is already registered", c.services.Name()))
	}
	c.services = p
	c.Env.Set(environment.ServicesProvider, p.Name())
	c.Log.Debug("service provider registered", "provider", p.Name())
	return nil
}

// Services returns the active provider, or nil when none was detected.
func (c *Context) Services() services.Provider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.services
}

// Stage returns the stage currently executing.
func (c *Context) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// State returns the state of the named handler in this run.
func (c *Context) State(name string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[name]
}

func (c *Context) setState(name string, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[name] = state
}

// Plan computes, once, the handler order of the registered plugins.
func (c *Context) Plan() (*Plan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plan != nil {
		return c.plan, nil
	}
	plan, err := c.registry.Plan()
	if err != nil {
		return nil, err
	}
	c.plan = plan
	return plan, nil
}
