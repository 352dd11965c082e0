package graph

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/udisondev/statcalc/internal/calc"
	"github.com/udisondev/statcalc/internal/stat"
)

// Graph is the write API of the calculation graph. AddModifier and
// RemoveModifier are the only structural mutations and must not be called
// from a notification handler they triggered.
type Graph interface {
	GetOrAdd(s *stat.Stat) *StatGraph
	Lookup(s *stat.Stat) (*StatGraph, bool)
	AddModifier(m *stat.Modifier) error
	RemoveModifier(m *stat.Modifier) bool
	RemoveStat(s *stat.Stat) bool
	StatGraphs() []*StatGraph
}

// modifierEntry is one registered occurrence of a modifier.
type modifierEntry struct {
	modifier *stat.Modifier
	node     *calc.CachingNode
	release  func()
}

// CalculationGraph maps stats to their stat graphs and registers modifiers
// into them.
type CalculationGraph struct {
	factory NodeFactory
	graphs  map[stat.Key]*StatGraph
	// stacks holds the occurrences of equal modifiers, most recent last.
	stacks map[string][]*modifierEntry
}

var _ Graph = (*CalculationGraph)(nil)

// NewCalculationGraph returns an empty graph building nodes with factory.
func NewCalculationGraph(factory NodeFactory) *CalculationGraph {
	return &CalculationGraph{
		factory: factory,
		graphs:  make(map[stat.Key]*StatGraph),
		stacks:  make(map[string][]*modifierEntry),
	}
}

// GetOrAdd returns the stat graph of s, creating it if needed.
func (g *CalculationGraph) GetOrAdd(s *stat.Stat) *StatGraph {
	if sg, ok := g.graphs[s.Key()]; ok {
		return sg
	}
	sg := newStatGraph(s, g.factory)
	g.graphs[s.Key()] = sg
	return sg
}

// Lookup returns the stat graph of s if it exists.
func (g *CalculationGraph) Lookup(s *stat.Stat) (*StatGraph, bool) {
	sg, ok := g.graphs[s.Key()]
	return sg, ok
}

// AddModifier builds a node for m and registers it into the form collection
// of every targeted stat.
func (g *CalculationGraph) AddModifier(m *stat.Modifier) error {
	sel, err := stat.NewFormSelector(m.Form, m.Path)
	if err != nil {
		return fmt.Errorf("adding modifier %s: %w", m, err)
	}
	if len(m.Stats) == 0 {
		return fmt.Errorf("adding modifier %s: no target stats", m)
	}

	n, release := g.factory.CreateModifierNode(m)
	id := m.Identity()
	g.stacks[id] = append(g.stacks[id], &modifierEntry{modifier: m, node: n, release: release})
	for _, s := range m.Stats {
		g.GetOrAdd(s).addModifier(n, m, sel)
	}

	if calc.IsDebugEnabled() {
		slog.Debug("modifier added", "modifier", id, "stacked", len(g.stacks[id]))
	}
	return nil
}

// RemoveModifier unregisters the most recent occurrence of a modifier equal
// to m and releases its node. It returns false if no such modifier is
// registered.
func (g *CalculationGraph) RemoveModifier(m *stat.Modifier) bool {
	id := m.Identity()
	stack := g.stacks[id]
	if len(stack) == 0 {
		return false
	}
	e := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(g.stacks, id)
	} else {
		g.stacks[id] = stack[:len(stack)-1]
	}

	sel := stat.FormSelector{Form: e.modifier.Form, Path: e.modifier.Path}
	for _, s := range e.modifier.Stats {
		if sg, ok := g.graphs[s.Key()]; ok {
			sg.removeModifier(e.node, e.modifier, sel)
		}
	}
	e.release()

	if calc.IsDebugEnabled() {
		slog.Debug("modifier removed", "modifier", id, "stacked", len(stack)-1)
	}
	return true
}

// RemoveStat releases the graph of s with all its nodes and collections.
// Modifiers registered to s stay registered for their other stats.
func (g *CalculationGraph) RemoveStat(s *stat.Stat) bool {
	sg, ok := g.graphs[s.Key()]
	if !ok {
		return false
	}
	delete(g.graphs, s.Key())
	sg.dispose()
	return true
}

// StatGraphs returns every stat graph ordered by stat key.
func (g *CalculationGraph) StatGraphs() []*StatGraph {
	out := make([]*StatGraph, 0, len(g.graphs))
	for _, sg := range g.graphs {
		out = append(out, sg)
	}
	slices.SortFunc(out, func(a, b *StatGraph) int {
		return strings.Compare(a.stat.Key().String(), b.stat.Key().String())
	})
	return out
}

// ModifierCount returns the number of registered modifier occurrences.
func (g *CalculationGraph) ModifierCount() int {
	n := 0
	for _, stack := range g.stacks {
		n += len(stack)
	}
	return n
}
