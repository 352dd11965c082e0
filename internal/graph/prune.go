package graph

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/udisondev/statcalc/internal/stat"
)

// RemovalPolicy decides what the Pruner may release.
type RemovalPolicy interface {
	// Considers reports whether s may become a pruning candidate at all.
	Considers(s *stat.Stat) bool
	CanRemoveNode(sg *StatGraph, n *StatNode) bool
	CanRemoveCollection(sg *StatGraph, c *FormCollection) bool
	CanRemoveStatGraph(sg *StatGraph) bool
}

// DefaultPolicy releases whatever has no subscribers. A node that is the
// target of an explicit endpoint may keep that one subscriber as long as
// nobody observes the endpoint.
type DefaultPolicy struct {
	Explicit *ExplicitRegistry
}

// Considers implements RemovalPolicy.
func (DefaultPolicy) Considers(*stat.Stat) bool { return true }

// CanRemoveNode implements RemovalPolicy.
func (p DefaultPolicy) CanRemoveNode(sg *StatGraph, n *StatNode) bool {
	switch n.Node.SubscriberCount() {
	case 0:
		return true
	case 1:
		return p.Explicit != nil && p.Explicit.IsSelfReferenced(sg.Stat(), n)
	}
	return false
}

// CanRemoveCollection implements RemovalPolicy.
func (DefaultPolicy) CanRemoveCollection(_ *StatGraph, c *FormCollection) bool {
	return c.Collection.Len() == 0 && c.Collection.SubscriberCount() == 0
}

// CanRemoveStatGraph implements RemovalPolicy.
func (DefaultPolicy) CanRemoveStatGraph(sg *StatGraph) bool {
	return sg.IsEmpty()
}

// ExplicitValuePolicy is DefaultPolicy restricted to explicit stats, i.e.
// stats whose value the user enters directly.
type ExplicitValuePolicy struct {
	DefaultPolicy
}

// Considers implements RemovalPolicy.
func (ExplicitValuePolicy) Considers(s *stat.Stat) bool { return s.Explicit }

// PruneReport counts what one Prune call released.
type PruneReport struct {
	Nodes       int
	Collections int
	Stats       int
}

// Empty reports whether nothing was released.
func (r PruneReport) Empty() bool {
	return r.Nodes == 0 && r.Collections == 0 && r.Stats == 0
}

// Pruner releases unreferenced nodes, collections and stat graphs of stats
// without modifiers.
//
// Candidates are the stats whose graph has no modifiers. They are tracked
// from the graph's notifications: a stat stops being a candidate when a
// modifier is added to it and becomes one again when its last modifier is
// removed.
type Pruner struct {
	graph      *ObservableGraph
	policy     RemovalPolicy
	candidates map[stat.Key]*stat.Stat
	cancels    []func()
}

// NewPruner tracks candidates of g. Stat graphs already present are
// considered too.
func NewPruner(g *ObservableGraph, policy RemovalPolicy) *Pruner {
	p := &Pruner{
		graph:      g,
		policy:     policy,
		candidates: make(map[stat.Key]*stat.Stat),
	}
	for _, sg := range g.StatGraphs() {
		p.consider(sg)
	}
	p.cancels = append(p.cancels,
		g.OnStatAdded(p.consider),
		g.OnStatRemoved(func(s *stat.Stat) {
			delete(p.candidates, s.Key())
		}),
		g.OnModifierAdded(func(m *stat.Modifier) {
			for _, s := range m.Stats {
				delete(p.candidates, s.Key())
			}
		}),
		g.OnModifierRemoved(func(m *stat.Modifier) {
			for _, s := range m.Stats {
				if sg, ok := g.Lookup(s); ok {
					p.consider(sg)
				}
			}
		}),
	)
	return p
}

// Candidates returns the current candidates ordered by key.
func (p *Pruner) Candidates() []*stat.Stat {
	out := make([]*stat.Stat, 0, len(p.candidates))
	for _, s := range p.candidates {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *stat.Stat) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

// Prune sweeps the candidates until nothing more can be released. Releasing
// a node drops its subscriptions, which may make nodes of other candidates
// removable in the next round.
func (p *Pruner) Prune() PruneReport {
	var total PruneReport
	for {
		r := p.sweep()
		if r.Empty() {
			break
		}
		total.Nodes += r.Nodes
		total.Collections += r.Collections
		total.Stats += r.Stats
	}
	if !total.Empty() {
		slog.Debug("graph pruned",
			"nodes", total.Nodes,
			"collections", total.Collections,
			"stats", total.Stats,
			"candidates", len(p.candidates))
	}
	return total
}

// Close stops tracking the graph.
func (p *Pruner) Close() {
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
}

func (p *Pruner) sweep() PruneReport {
	var r PruneReport
	for _, s := range p.Candidates() {
		sg, ok := p.graph.Lookup(s)
		if !ok || sg.ModifierCount() > 0 {
			delete(p.candidates, s.Key())
			continue
		}
		for _, n := range sg.Nodes() {
			if p.policy.CanRemoveNode(sg, n) && sg.RemoveNode(n.Selector) {
				r.Nodes++
			}
		}
		for _, c := range sg.FormNodeCollections() {
			if p.policy.CanRemoveCollection(sg, c) && sg.RemoveFormNodeCollection(c.Selector) {
				r.Collections++
			}
		}
		if p.policy.CanRemoveStatGraph(sg) && p.graph.RemoveStat(s) {
			r.Stats++
		}
	}
	return r
}

func (p *Pruner) consider(sg *StatGraph) {
	if sg.ModifierCount() == 0 && p.policy.Considers(sg.Stat()) {
		p.candidates[sg.Stat().Key()] = sg.Stat()
	}
}
