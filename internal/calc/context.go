package calc

import (
	"github.com/udisondev/statcalc/internal/stat"
)

// NodeRepository resolves the nodes and collections of stat graphs,
// creating them on first access.
type NodeRepository interface {
	GetNode(s *stat.Stat, sel stat.NodeSelector) Node
	GetFormNodeCollection(s *stat.Stat, sel stat.FormSelector) Collection
	GetPaths(s *stat.Stat) PathSet
}

// EvaluationContext implements stat.Context on top of a NodeRepository and
// records every node and collection read through it.
type EvaluationContext struct {
	repo            NodeRepository
	usedNodes       []Node
	nodeSet         map[Node]struct{}
	usedCollections []Observable
	collectionSet   map[Observable]struct{}
}

// NewEvaluationContext returns an empty context reading from repo.
func NewEvaluationContext(repo NodeRepository) *EvaluationContext {
	return &EvaluationContext{
		repo:          repo,
		nodeSet:       make(map[Node]struct{}),
		collectionSet: make(map[Observable]struct{}),
	}
}

var _ stat.Context = (*EvaluationContext)(nil)

// GetValue reads stage t of s on path p. Main-path-only stages on other paths
// are rejected before anything is read.
func (c *EvaluationContext) GetValue(s *stat.Stat, t stat.NodeType, p stat.Path) (*stat.NodeValue, error) {
	sel, err := stat.NewNodeSelector(t, p)
	if err != nil {
		return nil, err
	}
	n := c.repo.GetNode(s, sel)
	c.useNode(n)
	return n.Value()
}

// GetValues reads the values of all modifiers of form f on each stat/path.
func (c *EvaluationContext) GetValues(f stat.Form, paths []stat.StatPath) ([]*stat.NodeValue, error) {
	var out []*stat.NodeValue
	for _, sp := range paths {
		sel, err := stat.NewFormSelector(f, sp.Path)
		if err != nil {
			return nil, err
		}
		coll := c.repo.GetFormNodeCollection(sp.Stat, sel)
		c.useCollection(coll)
		for _, it := range coll.Items() {
			c.useNode(it.Node)
			v, err := it.Node.Value()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// GetPaths returns the known paths of s.
func (c *EvaluationContext) GetPaths(s *stat.Stat) []stat.Path {
	ps := c.repo.GetPaths(s)
	c.useCollection(ps)
	return ps.Paths()
}

// UsedNodes returns the nodes read since the last Clear, in read order.
func (c *EvaluationContext) UsedNodes() []Node {
	return c.usedNodes
}

// UsedCollections returns the collections read since the last Clear.
func (c *EvaluationContext) UsedCollections() []Observable {
	return c.usedCollections
}

// Clear forgets everything recorded.
func (c *EvaluationContext) Clear() {
	c.usedNodes = nil
	c.usedCollections = nil
	clear(c.nodeSet)
	clear(c.collectionSet)
}

func (c *EvaluationContext) useNode(n Node) {
	if _, ok := c.nodeSet[n]; ok {
		return
	}
	c.nodeSet[n] = struct{}{}
	c.usedNodes = append(c.usedNodes, n)
}

func (c *EvaluationContext) useCollection(o Observable) {
	if _, ok := c.collectionSet[o]; ok {
		return
	}
	c.collectionSet[o] = struct{}{}
	c.usedCollections = append(c.usedCollections, o)
}
