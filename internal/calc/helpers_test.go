package calc

import (
	"github.com/udisondev/statcalc/internal/stat"
)

// fakeNode is a settable node that counts its reads.
type fakeNode struct {
	value   *stat.NodeValue
	err     error
	reads   int
	changed Signal
}

func newFakeNode(v float64) *fakeNode {
	return &fakeNode{value: stat.NewValue(v)}
}

func (n *fakeNode) Value() (*stat.NodeValue, error) {
	n.reads++
	return n.value, n.err
}

func (n *fakeNode) Subscribe(fn func()) func() { return n.changed.Subscribe(fn) }
func (n *fakeNode) SubscriberCount() int        { return n.changed.Len() }

func (n *fakeNode) set(v float64) {
	n.value = stat.NewValue(v)
	n.changed.Fire()
}

// fakeRepository resolves nodes from maps populated by the test.
type fakeRepository struct {
	nodes       map[string]Node
	collections map[string]*NodeCollection
	paths       map[stat.Key]*PathCollection
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		nodes:       make(map[string]Node),
		collections: make(map[string]*NodeCollection),
		paths:       make(map[stat.Key]*PathCollection),
	}
}

func (r *fakeRepository) put(s *stat.Stat, t stat.NodeType, n Node) {
	r.nodes[s.Key().String()+"/"+stat.MainSelector(t).String()] = n
}

func (r *fakeRepository) GetNode(s *stat.Stat, sel stat.NodeSelector) Node {
	if n, ok := r.nodes[s.Key().String()+"/"+sel.String()]; ok {
		return n
	}
	return Null
}

func (r *fakeRepository) GetFormNodeCollection(s *stat.Stat, sel stat.FormSelector) Collection {
	k := s.Key().String() + "/" + sel.String()
	c, ok := r.collections[k]
	if !ok {
		c = NewNodeCollection(nil)
		r.collections[k] = c
	}
	return c
}

func (r *fakeRepository) GetPaths(s *stat.Stat) PathSet {
	p, ok := r.paths[s.Key()]
	if !ok {
		p = NewPathCollection()
		r.paths[s.Key()] = p
	}
	return p
}
