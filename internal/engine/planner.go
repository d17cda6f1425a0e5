package engine

import (
	"fmt"
	"strings"

	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// Plan is the handler execution order of every stage.
type Plan struct {
	stages map[Stage][]*Event
}

// BuildPlan collects the events of plugins in discovery order and orders
// each stage. Ordering cycles in any stage fail the whole plan.
func BuildPlan(plugins []Plugin) (*Plan, error) {
	byStage := make(map[Stage][]*Event)
	names := make(map[string]string)
	index := 0

	for _, p := range plugins {
		for i, declared := range p.Events() {
			ev := declared
			ev.plugin = p.Name()
			ev.index = index
			index++

			if ev.Handler == nil {
				return nil, kiterrors.NewPluginError(p.Name(), fmt.Errorf("event %d has no handler", i))
			}
			if !ev.Stage.Valid() {
				return nil, kiterrors.NewPluginError(p.Name(), fmt.Errorf("event %d has invalid stage %d", i, int(ev.Stage)))
			}
			if ev.Priority == 0 {
				ev.Priority = PriorityMedium
			}
			if ev.Name == "" {
				ev.Name = fmt.Sprintf("%s.%s.%d", p.Name(), strings.ToLower(ev.Stage.String()), i)
			}
			if owner, exists := names[ev.Name]; exists {
				return nil, kiterrors.NewConfigurationError(ev.Stage.String(),
					fmt.Sprintf("handler name %q declared by %s and %s", ev.Name, owner, p.Name()))
			}
			names[ev.Name] = p.Name()

			byStage[ev.Stage] = append(byStage[ev.Stage], &ev)
		}
	}

	plan := &Plan{stages: make(map[Stage][]*Event, len(byStage))}
	for _, stage := range Stages() {
		events := byStage[stage]
		if len(events) == 0 {
			continue
		}
		ordered, err := newGraph(stage, events).sort()
		if err != nil {
			return nil, err
		}
		plan.stages[stage] = ordered
	}
	return plan, nil
}

// Events returns the ordered handlers of stage.
func (p *Plan) Events(stage Stage) []*Event {
	if p == nil {
		return nil
	}
	return p.stages[stage]
}

// Names returns the ordered handler names of stage.
func (p *Plan) Names(stage Stage) []string {
	events := p.Events(stage)
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}
	return names
}

// Len counts the planned handlers across all stages.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, events := range p.stages {
		total += len(events)
	}
	return total
}

// String renders a human readable summary of the plan.
func (p *Plan) String() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	for _, stage := range Stages() {
		events := p.stages[stage]
		if len(events) == 0 {
			continue
		}
		fmt.Fprintf(&b, "Stage %s (%d handlers): %s\n", stage, len(events), strings.Join(p.Names(stage), ", "))
	}
	return b.String()
}
