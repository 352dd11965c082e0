package graph

import (
	"fmt"

	"github.com/udisondev/statcalc/internal/aggregate"
	"github.com/udisondev/statcalc/internal/calc"
	"github.com/udisondev/statcalc/internal/pipeline"
	"github.com/udisondev/statcalc/internal/stat"
)

// NodeFactory builds the nodes and collections of stat graphs.
type NodeFactory interface {
	CreateNode(s *stat.Stat, sel stat.NodeSelector) *StatNode
	CreateFormNodeCollection(s *stat.Stat, sel stat.FormSelector) *calc.NodeCollection
	CreateModifierNode(m *stat.Modifier) (n *calc.CachingNode, release func())
}

// CoreNodeFactory wires stage computations into caching nodes.
//
// Computed stages become CachingNode(ValueNode(Transformable(stage))), each
// with an evaluation context of its own. Form stages on the main path
// aggregate the buffering view of their collection directly, unless they
// also read influencing stats (pipeline.IsMultiPath). Every caching
// node joins Suspender for the lifetime of the node.
type CoreNodeFactory struct {
	// Repository is what computations read other nodes through. It must
	// hand out default node views and buffering collection views.
	Repository calc.NodeRepository
	Buffer     *calc.EventBuffer
	Suspender  *calc.SuspenderGroup
}

var _ NodeFactory = (*CoreNodeFactory)(nil)

// CreateNode implements NodeFactory.
func (f *CoreNodeFactory) CreateNode(s *stat.Stat, sel stat.NodeSelector) *StatNode {
	label := fmt.Sprintf("%s/%s", s, sel)

	if form, ok := stat.FormOf(sel.NodeType); ok && sel.Path.IsMain() && !pipeline.IsMultiPath(s, sel) {
		coll := f.Repository.GetFormNodeCollection(s, stat.FormSelector{Form: form, Path: sel.Path})
		c := f.track(calc.NewCachingNode(label, calc.NewAggregatingNode(coll, aggregate.For(form))))
		return &StatNode{Selector: sel, Node: c, release: f.releaser(c)}
	}

	tr := pipeline.NewTransformable(pipeline.StageValue(s, sel))
	vn := calc.NewValueNode(tr, calc.NewEvaluationContext(f.Repository))
	c := f.track(calc.NewCachingNode(label, vn))
	return &StatNode{Selector: sel, Node: c, Transformable: tr, release: f.releaser(c)}
}

// CreateFormNodeCollection implements NodeFactory.
func (f *CoreNodeFactory) CreateFormNodeCollection(*stat.Stat, stat.FormSelector) *calc.NodeCollection {
	return calc.NewNodeCollection(f.Buffer)
}

// CreateModifierNode implements NodeFactory.
func (f *CoreNodeFactory) CreateModifierNode(m *stat.Modifier) (*calc.CachingNode, func()) {
	vn := calc.NewValueNode(m.Value, calc.NewEvaluationContext(f.Repository))
	c := f.track(calc.NewCachingNode(m.String(), vn))
	return c, f.releaser(c)
}

func (f *CoreNodeFactory) track(c *calc.CachingNode) *calc.CachingNode {
	if f.Suspender != nil {
		f.Suspender.Add(c)
	}
	return c
}

func (f *CoreNodeFactory) releaser(c *calc.CachingNode) func() {
	return func() {
		if f.Suspender != nil {
			f.Suspender.Remove(c)
		}
		c.Dispose()
	}
}
