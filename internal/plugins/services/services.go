package servicesplugin

import (
	"context"

	"github.com/alexisbeaulieu97/installkit/internal/engine"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
	commandplugin "github.com/alexisbeaulieu97/installkit/internal/plugins/command"
	"github.com/alexisbeaulieu97/installkit/internal/services"
)

type servicesPlugin struct {
	variant  string
	build    func(services.Deps) services.Provider
	provider services.Provider
}

// NewSystemd registers the systemd provider when systemd runs the host.
func NewSystemd() engine.Plugin {
	return &servicesPlugin{variant: "systemd", build: func(d services.Deps) services.Provider { return services.NewSystemd(d) }}
}

// NewSysV registers the SysV provider, with upstart support, on hosts
// without systemd.
func NewSysV() engine.Plugin {
	return &servicesPlugin{variant: "sysv", build: func(d services.Deps) services.Provider { return services.NewSysV(d) }}
}

// NewOpenRC registers the OpenRC provider.
func NewOpenRC() engine.Plugin {
	return &servicesPlugin{variant: "openrc", build: func(d services.Deps) services.Provider { return services.NewOpenRC(d) }}
}

var _ engine.Plugin = (*servicesPlugin)(nil)

func (p *servicesPlugin) Name() string { return "services." + p.variant }

func (p *servicesPlugin) Events() []engine.Event {
	return []engine.Event{
		{Name: p.Name() + ".setup", Stage: engine.StageSetup, Handler: p.setup},
		{
			Name:      p.Name() + ".probe",
			Stage:     engine.StagePrograms,
			After:     []string{commandplugin.DetectionEvent},
			Condition: noProvider,
			Handler:   p.probe,
		},
	}
}

func noProvider(env *environment.Environment) bool {
	_, registered := env.Lookup(environment.ServicesProvider)
	return !registered
}

func (p *servicesPlugin) setup(_ context.Context, c *engine.Context) error {
	p.provider = p.build(c.ServiceDeps())
	for _, name := range p.provider.RequiredCommands() {
		c.Commands().Detect(name)
	}
	return nil
}

func (p *servicesPlugin) probe(ctx context.Context, c *engine.Context) error {
	ok, err := p.provider.Probe(ctx)
	if err != nil {
		return err
	}
	if !ok {
		c.Log.Debug("service provider not applicable", "provider", p.variant)
		return nil
	}
	return c.RegisterServices(p.provider)
}
