// Package services controls system services through whichever init system
// the host runs.
package services

import (
	"context"
	"os"
	"path/filepath"

	"github.com/alexisbeaulieu97/installkit/internal/command"
	"github.com/alexisbeaulieu97/installkit/internal/logger"
)

// Provider controls services for one init-system family.
type Provider interface {
	// Name identifies the variant, e.g. "systemd".
	Name() string
	// RequiredCommands lists the programs the provider needs detected.
	RequiredCommands() []string
	// Probe reports whether this variant governs the host.
	Probe(ctx context.Context) (bool, error)

	Exists(ctx context.Context, name string) (bool, error)
	Status(ctx context.Context, name string) (bool, error)
	Startup(ctx context.Context, name string, enable bool) error
	State(ctx context.Context, name string, running bool) error
}

// Deps are the collaborators shared by every provider.
type Deps struct {
	Runner   command.Runner
	Commands *command.Commands
	Log      *logger.Logger
	// Root prefixes filesystem lookups such as /etc/init.d. Empty means "/".
	Root string
}

func (d Deps) path(parts ...string) string {
	root := d.Root
	if root == "" {
		root = "/"
	}
	return filepath.Join(append([]string{root}, parts...)...)
}

func (d Deps) exists(parts ...string) bool {
	_, err := os.Stat(d.path(parts...))
	return err == nil
}

// run executes a detected command. A command that was not detected yields
// ok=false without running anything.
func (d Deps) run(ctx context.Context, program string, args ...string) (res command.Result, ok bool, err error) {
	path, err := d.Commands.Get(program)
	if err != nil {
		return command.Result{}, false, nil
	}
	res, err = d.Runner.Run(ctx, path, args...)
	if err != nil {
		return res, false, err
	}
	return res, true, nil
}

// Select probes candidates in order and returns the first that governs the
// host, or nil when none does.
func Select(ctx context.Context, candidates ...Provider) (Provider, error) {
	for _, candidate := range candidates {
		ok, err := candidate.Probe(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
	}
	return nil, nil
}

func action(running bool) string {
	if running {
		return "start"
	}
	return "stop"
}
