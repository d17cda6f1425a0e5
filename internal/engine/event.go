package engine

import (
	"context"

	"github.com/alexisbeaulieu97/installkit/internal/environment"
)

// HandlerFunc is the body of an event handler.
type HandlerFunc func(ctx context.Context, c *Context) error

// Condition decides, right before a handler would run, whether it runs.
type Condition func(env *environment.Environment) bool

// Event declares one handler of a plugin.
type Event struct {
	// Name identifies the handler for After/Before references. Unnamed
	// events get a generated name.
	Name     string
	Stage    Stage
	Priority Priority // zero means PriorityMedium
	// After and Before name handlers of the same stage. Unknown names are
	// ignored so optional plugins can be referenced.
	After     []string
	Before    []string
	Condition Condition
	Handler   HandlerFunc

	plugin string
	index  int
}

// Plugin returns the name of the plugin that declared the event.
func (e *Event) Plugin() string { return e.plugin }

// State is the lifecycle state of a handler within a run.
type State int

const (
	StatePending State = iota
	StateRunning
	StateDone
	StateSkipped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateSkipped || s == StateFailed
}
