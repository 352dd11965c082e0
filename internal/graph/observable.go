package graph

import (
	"slices"

	"github.com/udisondev/statcalc/internal/calc"
	"github.com/udisondev/statcalc/internal/stat"
)

// ObservableGraph decorates a Graph with notifications about the set of
// stat graphs and about modifier registration.
type ObservableGraph struct {
	inner Graph

	statAdded       calc.Event[*StatGraph]
	statRemoved     calc.Event[*stat.Stat]
	modifierAdded   calc.Event[*stat.Modifier]
	modifierRemoved calc.Event[*stat.Modifier]
}

var _ Graph = (*ObservableGraph)(nil)

// NewObservableGraph decorates inner.
func NewObservableGraph(inner Graph) *ObservableGraph {
	return &ObservableGraph{inner: inner}
}

// GetOrAdd returns the stat graph of s and fires StatAdded if it was created.
func (g *ObservableGraph) GetOrAdd(s *stat.Stat) *StatGraph {
	if sg, ok := g.inner.Lookup(s); ok {
		return sg
	}
	sg := g.inner.GetOrAdd(s)
	g.statAdded.Fire(sg)
	return sg
}

// Lookup returns the stat graph of s if it exists.
func (g *ObservableGraph) Lookup(s *stat.Stat) (*StatGraph, bool) {
	return g.inner.Lookup(s)
}

// AddModifier registers m and fires StatAdded for every stat graph it
// created, then ModifierAdded.
func (g *ObservableGraph) AddModifier(m *stat.Modifier) error {
	var created []*stat.Stat
	for _, s := range m.Stats {
		_, ok := g.inner.Lookup(s)
		if !ok && !slices.ContainsFunc(created, func(c *stat.Stat) bool { return stat.Same(c, s) }) {
			created = append(created, s)
		}
	}
	if err := g.inner.AddModifier(m); err != nil {
		return err
	}
	for _, s := range created {
		if sg, ok := g.inner.Lookup(s); ok {
			g.statAdded.Fire(sg)
		}
	}
	g.modifierAdded.Fire(m)
	return nil
}

// RemoveModifier unregisters m and fires ModifierRemoved.
func (g *ObservableGraph) RemoveModifier(m *stat.Modifier) bool {
	if !g.inner.RemoveModifier(m) {
		return false
	}
	g.modifierRemoved.Fire(m)
	return true
}

// RemoveStat releases the graph of s and fires StatRemoved.
func (g *ObservableGraph) RemoveStat(s *stat.Stat) bool {
	if !g.inner.RemoveStat(s) {
		return false
	}
	g.statRemoved.Fire(s)
	return true
}

// StatGraphs returns every stat graph.
func (g *ObservableGraph) StatGraphs() []*StatGraph {
	return g.inner.StatGraphs()
}

// OnStatAdded registers fn for newly created stat graphs.
func (g *ObservableGraph) OnStatAdded(fn func(*StatGraph)) (cancel func()) {
	return g.statAdded.Subscribe(fn)
}

// OnStatRemoved registers fn for released stat graphs.
func (g *ObservableGraph) OnStatRemoved(fn func(*stat.Stat)) (cancel func()) {
	return g.statRemoved.Subscribe(fn)
}

// OnModifierAdded registers fn for registered modifiers.
func (g *ObservableGraph) OnModifierAdded(fn func(*stat.Modifier)) (cancel func()) {
	return g.modifierAdded.Subscribe(fn)
}

// OnModifierRemoved registers fn for unregistered modifiers.
func (g *ObservableGraph) OnModifierRemoved(fn func(*stat.Modifier)) (cancel func()) {
	return g.modifierRemoved.Subscribe(fn)
}
