package graph

import (
	"github.com/udisondev/statcalc/internal/calc"
	"github.com/udisondev/statcalc/internal/stat"
)

// internalRepository is what the nodes of the graph read each other through.
// Nodes are handed out with their immediate view so invalidation reaches
// dependants right away; collections with their buffering view so a batch of
// modifier edits reaches an aggregation as one change.
type internalRepository struct {
	graph Graph
}

// NewInternalRepository returns the repository node computations read
// through.
func NewInternalRepository(g Graph) calc.NodeRepository {
	return internalRepository{graph: g}
}

func (r internalRepository) GetNode(s *stat.Stat, sel stat.NodeSelector) calc.Node {
	return r.graph.GetOrAdd(s).GetNode(sel).Node.DefaultView()
}

func (r internalRepository) GetFormNodeCollection(s *stat.Stat, sel stat.FormSelector) calc.Collection {
	return r.graph.GetOrAdd(s).GetFormNodeCollection(sel).BufferingView()
}

func (r internalRepository) GetPaths(s *stat.Stat) calc.PathSet {
	return r.graph.GetOrAdd(s).Paths()
}

// publicRepository is handed to consumers outside the graph. Nodes notify
// through their suspendable view, so a consumer sees at most one change per
// Calculator.Update.
type publicRepository struct {
	graph Graph
}

func (r publicRepository) GetNode(s *stat.Stat, sel stat.NodeSelector) calc.Node {
	return r.graph.GetOrAdd(s).GetNode(sel).Node.SuspendableView()
}

func (r publicRepository) GetFormNodeCollection(s *stat.Stat, sel stat.FormSelector) calc.Collection {
	return r.graph.GetOrAdd(s).GetFormNodeCollection(sel).DefaultView()
}

func (r publicRepository) GetPaths(s *stat.Stat) calc.PathSet {
	return r.graph.GetOrAdd(s).Paths()
}
