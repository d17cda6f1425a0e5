package services

import (
	"context"
	"strings"

	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// OpenRC drives services through their /etc/init.d scripts and rc-update.
type OpenRC struct {
	Deps
}

var _ Provider = (*OpenRC)(nil)

// NewOpenRC builds the OpenRC provider.
func NewOpenRC(deps Deps) *OpenRC {
	return &OpenRC{Deps: deps}
}

func (o *OpenRC) Name() string { return "openrc" }

func (o *OpenRC) RequiredCommands() []string { return []string{"rc", "rc-update"} }

// Probe succeeds when rc --version prints a single OpenRC line.
func (o *OpenRC) Probe(ctx context.Context) (bool, error) {
	res, ok, err := o.run(ctx, "rc", "--version")
	if err != nil || !ok {
		return false, err
	}
	lines := res.Lines()
	return res.ExitCode == 0 && len(lines) == 1 && strings.Contains(lines[0], "OpenRC"), nil
}

func (o *OpenRC) script(name string) string {
	return o.path("etc", "init.d", name)
}

func (o *OpenRC) Exists(_ context.Context, name string) (bool, error) {
	o.Log.Debug("check if service exists", "service", name)
	return o.exists("etc", "init.d", name), nil
}

func (o *OpenRC) Status(ctx context.Context, name string) (bool, error) {
	o.Log.Debug("check service status", "service", name)
	res, err := o.Runner.Run(ctx, o.script(name), "-q", "status")
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// Startup ignores the rc-update result.
func (o *OpenRC) Startup(ctx context.Context, name string, enable bool) error {
	verb := "del"
	if enable {
		verb = "add"
	}
	o.Log.Debug("set service startup", "service", name, "enable", enable)
	res, ok, err := o.run(ctx, "rc-update", verb, name)
	if err != nil || !ok || res.ExitCode != 0 {
		o.Log.Debug("rc-update did not succeed", "service", name, "rc", res.ExitCode)
	}
	return nil
}

func (o *OpenRC) State(ctx context.Context, name string, running bool) error {
	verb := action(running)
	o.Log.Debug("change service state", "service", name, "action", verb)
	res, err := o.Runner.Run(ctx, o.script(name), "-q", verb)
	if err != nil {
		return kiterrors.NewServiceError(name, verb, err)
	}
	if res.ExitCode != 0 {
		return kiterrors.NewServiceError(name, verb, res.Check(o.script(name)))
	}
	return nil
}
