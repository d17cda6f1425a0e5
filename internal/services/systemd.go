package services

import (
	"context"
	"fmt"
	"strings"

	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// Systemd drives services through systemctl.
type Systemd struct {
	Deps
}

var _ Provider = (*Systemd)(nil)

// NewSystemd builds the systemd provider.
func NewSystemd(deps Deps) *Systemd {
	return &Systemd{Deps: deps}
}

func (s *Systemd) Name() string { return "systemd" }

func (s *Systemd) RequiredCommands() []string { return []string{"systemctl"} }

// Probe succeeds when systemctl show-environment exits zero.
func (s *Systemd) Probe(ctx context.Context) (bool, error) {
	res, ok, err := s.run(ctx, "systemctl", "show-environment")
	if err != nil || !ok {
		return false, err
	}
	return res.ExitCode == 0, nil
}

func unit(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".service"
}

func (s *Systemd) Exists(ctx context.Context, name string) (bool, error) {
	s.Log.Debug("check if service exists", "service", name)
	res, ok, err := s.run(ctx, "systemctl", "show", "-p", "LoadState", unit(name))
	if err != nil || !ok {
		return false, err
	}
	if res.ExitCode != 0 {
		return false, nil
	}
	for _, line := range res.Lines() {
		if strings.TrimSpace(line) == "LoadState=loaded" {
			return true, nil
		}
	}
	return false, nil
}

func (s *Systemd) Status(ctx context.Context, name string) (bool, error) {
	s.Log.Debug("check service status", "service", name)
	res, ok, err := s.run(ctx, "systemctl", "is-active", unit(name))
	if err != nil || !ok {
		return false, err
	}
	return res.ExitCode == 0, nil
}

func (s *Systemd) Startup(ctx context.Context, name string, enable bool) error {
	verb := "disable"
	if enable {
		verb = "enable"
	}
	s.Log.Debug("set service startup", "service", name, "enable", enable)
	res, ok, err := s.run(ctx, "systemctl", verb, unit(name))
	if err != nil {
		return kiterrors.NewServiceError(name, verb, err)
	}
	if !ok {
		return kiterrors.NewServiceError(name, verb, fmt.Errorf("systemctl not available"))
	}
	if res.ExitCode != 0 {
		return kiterrors.NewServiceError(name, verb, res.Check("systemctl"))
	}
	return nil
}

func (s *Systemd) State(ctx context.Context, name string, running bool) error {
	verb := action(running)
	s.Log.Debug("change service state", "service", name, "action", verb)
	res, ok, err := s.run(ctx, "systemctl", verb, unit(name))
	if err != nil {
		return kiterrors.NewServiceError(name, verb, err)
	}
	if !ok {
		return kiterrors.NewServiceError(name, verb, fmt.Errorf("systemctl not available"))
	}
	if res.ExitCode != 0 {
		return kiterrors.NewServiceError(name, verb, res.Check("systemctl"))
	}
	return nil
}
