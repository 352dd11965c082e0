// Package graph holds the containers of the calculation graph: one StatGraph
// per stat owning its nodes and form collections, the CalculationGraph mapping
// stats to stat graphs and carrying the modifier write API, and the Pruner
// that releases what nobody references anymore.
package graph

import (
	"slices"
	"strings"

	"github.com/udisondev/statcalc/internal/calc"
	"github.com/udisondev/statcalc/internal/pipeline"
	"github.com/udisondev/statcalc/internal/stat"
)

// StatNode is one stage node of a stat graph.
type StatNode struct {
	Selector stat.NodeSelector
	Node     *calc.CachingNode
	// Transformable is the transformation list of computed stages; nil for
	// stages aggregating a form collection directly.
	Transformable *pipeline.Transformable

	release func()
}

// FormCollection is one form collection of a stat graph.
type FormCollection struct {
	Selector   stat.FormSelector
	Collection *calc.NodeCollection
}

// StatGraph owns every node and form collection of one stat. Nodes and
// collections are created on first access.
type StatGraph struct {
	stat    *stat.Stat
	factory NodeFactory

	nodes         map[string]*StatNode
	collections   map[string]*FormCollection
	paths         *calc.PathCollection
	modifierCount int

	nodeRemoved calc.Event[*StatNode]
}

func newStatGraph(s *stat.Stat, factory NodeFactory) *StatGraph {
	return &StatGraph{
		stat:        s,
		factory:     factory,
		nodes:       make(map[string]*StatNode),
		collections: make(map[string]*FormCollection),
		paths:       calc.NewPathCollection(),
	}
}

// Stat returns the stat of the graph.
func (g *StatGraph) Stat() *stat.Stat {
	return g.stat
}

// GetNode returns the node of sel, creating it if needed.
func (g *StatGraph) GetNode(sel stat.NodeSelector) *StatNode {
	k := sel.String()
	if n, ok := g.nodes[k]; ok {
		return n
	}
	n := g.factory.CreateNode(g.stat, sel)
	g.nodes[k] = n
	return n
}

// Node returns the node of sel if it exists.
func (g *StatGraph) Node(sel stat.NodeSelector) (*StatNode, bool) {
	n, ok := g.nodes[sel.String()]
	return n, ok
}

// Nodes returns every existing node ordered by selector.
func (g *StatGraph) Nodes() []*StatNode {
	out := make([]*StatNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *StatNode) int {
		return strings.Compare(a.Selector.String(), b.Selector.String())
	})
	return out
}

// GetFormNodeCollection returns the collection of sel, creating it if needed.
func (g *StatGraph) GetFormNodeCollection(sel stat.FormSelector) *calc.NodeCollection {
	k := sel.String()
	if c, ok := g.collections[k]; ok {
		return c.Collection
	}
	c := &FormCollection{Selector: sel, Collection: g.factory.CreateFormNodeCollection(g.stat, sel)}
	g.collections[k] = c
	return c.Collection
}

// FormNodeCollections returns every existing collection ordered by selector.
func (g *StatGraph) FormNodeCollections() []*FormCollection {
	out := make([]*FormCollection, 0, len(g.collections))
	for _, c := range g.collections {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *FormCollection) int {
		return strings.Compare(a.Selector.String(), b.Selector.String())
	})
	return out
}

// Paths returns the paths the stat is known on.
func (g *StatGraph) Paths() *calc.PathCollection {
	return g.paths
}

// ModifierCount returns the number of modifier occurrences registered.
func (g *StatGraph) ModifierCount() int {
	return g.modifierCount
}

// NodeCount returns the number of existing nodes.
func (g *StatGraph) NodeCount() int {
	return len(g.nodes)
}

// CollectionCount returns the number of existing form collections.
func (g *StatGraph) CollectionCount() int {
	return len(g.collections)
}

// RemoveNode releases the node of sel. It returns false if there is none.
func (g *StatGraph) RemoveNode(sel stat.NodeSelector) bool {
	k := sel.String()
	n, ok := g.nodes[k]
	if !ok {
		return false
	}
	delete(g.nodes, k)
	n.release()
	g.nodeRemoved.Fire(n)
	return true
}

// RemoveFormNodeCollection drops the collection of sel. It returns false if
// there is none.
func (g *StatGraph) RemoveFormNodeCollection(sel stat.FormSelector) bool {
	k := sel.String()
	if _, ok := g.collections[k]; !ok {
		return false
	}
	delete(g.collections, k)
	return true
}

// SubscribeNodeRemoved registers fn for nodes released by RemoveNode.
func (g *StatGraph) SubscribeNodeRemoved(fn func(*StatNode)) (cancel func()) {
	return g.nodeRemoved.Subscribe(fn)
}

// IsEmpty reports whether the graph holds no nodes, no collections and no
// modifiers, and nobody observes its path set.
func (g *StatGraph) IsEmpty() bool {
	return len(g.nodes) == 0 && len(g.collections) == 0 &&
		g.modifierCount == 0 && g.paths.SubscriberCount() == 0
}

func (g *StatGraph) addModifier(n calc.Node, m *stat.Modifier, sel stat.FormSelector) {
	g.GetFormNodeCollection(sel).Add(n, m)
	g.paths.Add(m.Path)
	g.modifierCount++
}

func (g *StatGraph) removeModifier(n calc.Node, m *stat.Modifier, sel stat.FormSelector) {
	c, ok := g.collections[sel.String()]
	if !ok || !c.Collection.Remove(n, m) {
		return
	}
	g.paths.Remove(m.Path)
	g.modifierCount--
}

func (g *StatGraph) dispose() {
	for _, n := range g.Nodes() {
		g.RemoveNode(n.Selector)
	}
	clear(g.collections)
	g.nodeRemoved.Clear()
}
