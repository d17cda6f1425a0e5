package engine

import (
	"context"
	"sync"
)

// recorder collects handler names in execution order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) handler(name string) HandlerFunc {
	return r.handlerErr(name, nil)
}

func (r *recorder) handlerErr(name string, err error) HandlerFunc {
	return func(context.Context, *Context) error {
		r.mu.Lock()
		r.calls = append(r.calls, name)
		r.mu.Unlock()
		return err
	}
}

func (r *recorder) order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// ev declares a named event recorded by r.
func (r *recorder) ev(name string, stage Stage, priority Priority) Event {
	return Event{Name: name, Stage: stage, Priority: priority, Handler: r.handler(name)}
}
