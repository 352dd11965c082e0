package calc

import (
	"slices"

	"github.com/udisondev/statcalc/internal/stat"
)

// PathSet is a read-only, observable set of paths.
type PathSet interface {
	Observable
	Paths() []stat.Path
	SubscriberCount() int
}

// PathCollection is the reference-counted set of paths a stat is known on.
// The main path is always present.
type PathCollection struct {
	paths   []stat.Path
	counts  map[string]int
	changed Signal
}

// NewPathCollection returns a collection containing only the main path.
func NewPathCollection() *PathCollection {
	return &PathCollection{
		paths:  []stat.Path{stat.MainPath()},
		counts: make(map[string]int),
	}
}

// Paths returns a copy of the known paths, main path first.
func (c *PathCollection) Paths() []stat.Path {
	return slices.Clone(c.paths)
}

// Len returns the number of known paths.
func (c *PathCollection) Len() int {
	return len(c.paths)
}

// Add increments the reference count of p. Subscribers are notified when p
// becomes known.
func (c *PathCollection) Add(p stat.Path) {
	if p.IsMain() {
		return
	}
	k := p.Key()
	c.counts[k]++
	if c.counts[k] == 1 {
		c.paths = append(c.paths, p)
		c.changed.Fire()
	}
}

// Remove decrements the reference count of p. Subscribers are notified when
// p is no longer known.
func (c *PathCollection) Remove(p stat.Path) {
	if p.IsMain() {
		return
	}
	k := p.Key()
	if c.counts[k] == 0 {
		return
	}
	c.counts[k]--
	if c.counts[k] > 0 {
		return
	}
	delete(c.counts, k)
	c.paths = slices.DeleteFunc(c.paths, func(q stat.Path) bool { return q.Key() == k })
	c.changed.Fire()
}

// Subscribe registers fn for changes of the path set.
func (c *PathCollection) Subscribe(fn func()) func() {
	return c.changed.Subscribe(fn)
}

// SubscriberCount returns the number of subscribers.
func (c *PathCollection) SubscriberCount() int {
	return c.changed.Len()
}
