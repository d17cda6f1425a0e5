// Package plugins assembles the statically registered plugin set.
package plugins

import (
	"github.com/alexisbeaulieu97/installkit/internal/engine"
	commandplugin "github.com/alexisbeaulieu97/installkit/internal/plugins/command"
	configplugin "github.com/alexisbeaulieu97/installkit/internal/plugins/config"
	humanplugin "github.com/alexisbeaulieu97/installkit/internal/plugins/dialoghuman"
	machineplugin "github.com/alexisbeaulieu97/installkit/internal/plugins/dialogmachine"
	logplugin "github.com/alexisbeaulieu97/installkit/internal/plugins/log"
	miscplugin "github.com/alexisbeaulieu97/installkit/internal/plugins/misc"
	servicesplugin "github.com/alexisbeaulieu97/installkit/internal/plugins/services"
	sshplugin "github.com/alexisbeaulieu97/installkit/internal/plugins/ssh"
)

// All returns fresh instances of every built-in plugin. Service providers
// are listed in probing order.
func All() []engine.Plugin {
	return []engine.Plugin{
		configplugin.New(),
		miscplugin.New(),
		logplugin.New(),
		machineplugin.New(),
		humanplugin.New(),
		commandplugin.New(),
		servicesplugin.NewSystemd(),
		servicesplugin.NewOpenRC(),
		servicesplugin.NewSysV(),
		sshplugin.New(),
	}
}

// Register adds All to reg.
func Register(reg *engine.Registry) error {
	return reg.Register(All()...)
}
