package engine

import (
	"fmt"
	"strings"
	"sync"

	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// Plugin contributes event handlers to the lifecycle.
type Plugin interface {
	Name() string
	Events() []Event
}

type staticPlugin struct {
	name   string
	events []Event
}

func (p *staticPlugin) Name() string    { return p.name }
func (p *staticPlugin) Events() []Event { return p.events }

// NewPlugin wraps a fixed set of events as a Plugin.
func NewPlugin(name string, events ...Event) Plugin {
	return &staticPlugin{name: name, events: events}
}

// Registry holds plugins in registration order, which is also the discovery
// order used to break ordering ties.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	names   map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds plugins in order.
func (r *Registry) Register(plugins ...Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range plugins {
		if p == nil {
			return kiterrors.NewPluginError("", fmt.Errorf("plugin is nil"))
		}
		name := strings.TrimSpace(p.Name())
		if name == "" {
			return kiterrors.NewPluginError("", fmt.Errorf("plugin name is empty"))
		}
		if _, exists := r.names[name]; exists {
			return kiterrors.NewPluginError(name, fmt.Errorf("plugin already registered"))
		}
		r.names[name] = struct{}{}
		r.plugins = append(r.plugins, p)
	}
	return nil
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Plugin(nil), r.plugins...)
}

// Plan computes the handler order of every stage.
func (r *Registry) Plan() (*Plan, error) {
	return BuildPlan(r.Plugins())
}
