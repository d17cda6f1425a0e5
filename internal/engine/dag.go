package engine

import (
	"sort"

	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// node is a handler vertex in a stage's ordering graph.
type node struct {
	event      *Event
	dependents []*node
	indegree   int
}

// graph holds the handlers of one stage and their After/Before edges.
type graph struct {
	stage  Stage
	nodes  []*node
	byName map[string]*node
}

func newGraph(stage Stage, events []*Event) *graph {
	g := &graph{stage: stage, byName: make(map[string]*node, len(events))}
	for _, ev := range events {
		n := &node{event: ev}
		g.nodes = append(g.nodes, n)
		g.byName[ev.Name] = n
	}
	for _, n := range g.nodes {
		for _, name := range n.event.After {
			if dep, ok := g.byName[name]; ok {
				g.addEdge(dep, n)
			}
		}
		for _, name := range n.event.Before {
			if dep, ok := g.byName[name]; ok {
				g.addEdge(n, dep)
			}
		}
	}
	return g
}

// addEdge makes to wait for from.
func (g *graph) addEdge(from, to *node) {
	from.dependents = append(from.dependents, to)
	to.indegree++
}

// sort orders the stage with Kahn's algorithm. Among ready handlers the
// lowest priority value wins, then discovery order.
func (g *graph) sort() ([]*Event, error) {
	indegree := make(map[*node]int, len(g.nodes))
	var ready []*node
	for _, n := range g.nodes {
		indegree[n] = n.indegree
		if n.indegree == 0 {
			ready = append(ready, n)
		}
	}

	ordered := make([]*Event, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool {
			a, b := ready[i].event, ready[j].event
			if a.Priority != b.Priority {
				return a.Priority < b.Priority
			}
			return a.index < b.index
		})

		current := ready[0]
		ready = ready[1:]
		ordered = append(ordered, current.event)

		for _, dependent := range current.dependents {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(ordered) != len(g.nodes) {
		return nil, kiterrors.NewCycleError(g.stage.String(), g.cycle(indegree))
	}
	return ordered, nil
}

// cycle walks predecessors among the handlers Kahn could not release until
// one repeats, and returns that loop in execution direction.
func (g *graph) cycle(indegree map[*node]int) []string {
	preds := make(map[*node][]*node)
	var start *node
	for _, n := range g.nodes {
		if indegree[n] == 0 {
			continue
		}
		if start == nil {
			start = n
		}
		for _, dependent := range n.dependents {
			if indegree[dependent] > 0 {
				preds[dependent] = append(preds[dependent], n)
			}
		}
	}
	if start == nil {
		return nil
	}

	seen := make(map[*node]int)
	var path []*node
	current := start
	for {
		if pos, ok := seen[current]; ok {
			path = path[pos:]
			break
		}
		seen[current] = len(path)
		path = append(path, current)
		if len(preds[current]) == 0 {
			break
		}
		current = preds[current][0]
	}

	names := make([]string, len(path))
	for i, n := range path {
		names[len(path)-1-i] = n.event.Name
	}
	return names
}
