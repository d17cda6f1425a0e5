package services

import (
	"context"
	"fmt"
	"strings"

	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// SysV drives services through service/chkconfig, preferring initctl for
// upstart jobs.
type SysV struct {
	Deps
}

var _ Provider = (*SysV)(nil)

// NewSysV builds the SysV provider.
func NewSysV(deps Deps) *SysV {
	return &SysV{Deps: deps}
}

func (s *SysV) Name() string { return "sysv" }

func (s *SysV) RequiredCommands() []string {
	return []string{"service", "chkconfig", "systemctl", "initctl"}
}

// Probe succeeds when service is installed and systemd is not running.
func (s *SysV) Probe(ctx context.Context) (bool, error) {
	res, ok, err := s.run(ctx, "systemctl", "show-environment")
	if err != nil {
		return false, err
	}
	if ok && res.ExitCode == 0 {
		return false, nil
	}
	return s.Commands.Has("service"), nil
}

// upstart reports whether name is an upstart job and whether it runs.
// initctl status exits zero whatever the state, so the output decides.
func (s *SysV) upstart(ctx context.Context, name string) (job, running bool, err error) {
	res, ok, err := s.run(ctx, "initctl", "status", name)
	if err != nil || !ok {
		return false, false, err
	}
	lines := res.Lines()
	if res.ExitCode == 0 && len(lines) == 1 {
		return true, strings.Contains(lines[0], "start/"), nil
	}
	return false, false, nil
}

func (s *SysV) Exists(ctx context.Context, name string) (bool, error) {
	s.Log.Debug("check if service exists", "service", name)
	job, _, err := s.upstart(ctx, name)
	if err != nil {
		return false, err
	}
	exists := job || s.exists("etc", "rc.d", "init.d", name)
	s.Log.Debug("service existence", "service", name, "exists", exists, "upstart", job)
	return exists, nil
}

func (s *SysV) Status(ctx context.Context, name string) (bool, error) {
	s.Log.Debug("check service status", "service", name)
	job, running, err := s.upstart(ctx, name)
	if err != nil {
		return false, err
	}
	if job {
		return running, nil
	}
	res, ok, err := s.run(ctx, "service", name, "status")
	if err != nil || !ok {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// Startup is a no-op for upstart jobs, which have no boot enablement.
func (s *SysV) Startup(ctx context.Context, name string, enable bool) error {
	s.Log.Debug("set service startup", "service", name, "enable", enable)
	job, _, err := s.upstart(ctx, name)
	if err != nil {
		return kiterrors.NewServiceError(name, "configure startup of", err)
	}
	if job {
		return nil
	}

	state := "off"
	if enable {
		state = "on"
	}
	res, ok, err := s.run(ctx, "chkconfig", name, state)
	switch {
	case err != nil:
		return kiterrors.NewServiceError(name, "set boot startup "+state+" for", err)
	case !ok:
		return kiterrors.NewServiceError(name, "set boot startup "+state+" for", fmt.Errorf("chkconfig not available"))
	case res.ExitCode != 0:
		return kiterrors.NewServiceError(name, "set boot startup "+state+" for", res.Check("chkconfig"))
	}
	return nil
}

// State skips upstart jobs already in the desired state since initctl
// fails on a repeated start or stop.
func (s *SysV) State(ctx context.Context, name string, running bool) error {
	verb := action(running)
	s.Log.Debug("change service state", "service", name, "action", verb)

	job, current, err := s.upstart(ctx, name)
	if err != nil {
		return kiterrors.NewServiceError(name, verb, err)
	}

	program, args := "service", []string{name, verb}
	if job {
		if current == running {
			return nil
		}
		program, args = "initctl", []string{verb, name}
	}

	res, ok, err := s.run(ctx, program, args...)
	switch {
	case err != nil:
		return kiterrors.NewServiceError(name, verb, err)
	case !ok:
		return kiterrors.NewServiceError(name, verb, fmt.Errorf("%s not available", program))
	case res.ExitCode != 0:
		return kiterrors.NewServiceError(name, verb, res.Check(program))
	}
	return nil
}
