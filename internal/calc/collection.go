package calc

import (
	"slices"

	"github.com/udisondev/statcalc/internal/stat"
)

// Item is one member of a node collection: a modifier's value node.
type Item struct {
	Node     Node
	Modifier *stat.Modifier
}

// ChangeKind tells how a collection changed.
type ChangeKind int8

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	// ChangeReset carries the full new membership instead of a delta.
	ChangeReset
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	default:
		return "reset"
	}
}

// Change describes one structural change of a collection.
type Change struct {
	Kind  ChangeKind
	Items []Item
}

// Collection is a read-only, observable view of a node collection.
type Collection interface {
	Observable
	Items() []Item
	Len() int
	SubscribeChanges(fn func(Change)) (cancel func())
	SubscriberCount() int
}

// NodeCollection is the set of modifier nodes of one form on one path of a
// stat. The collection itself is the default view and notifies immediately;
// BufferingView returns a view over the same items whose notifications go
// through an EventBuffer.
type NodeCollection struct {
	items    []Item
	changed  Event[Change]
	buffered bufferingView
}

// NewNodeCollection returns an empty collection. buf may be nil, in which
// case the buffering view delivers immediately.
func NewNodeCollection(buf *EventBuffer) *NodeCollection {
	c := &NodeCollection{}
	c.buffered.owner = c
	c.buffered.buf = buf
	return c
}

// Items returns a copy of the members in insertion order.
func (c *NodeCollection) Items() []Item {
	return slices.Clone(c.items)
}

// Len returns the number of members.
func (c *NodeCollection) Len() int {
	return len(c.items)
}

// Add appends a member.
func (c *NodeCollection) Add(n Node, m *stat.Modifier) {
	it := Item{Node: n, Modifier: m}
	c.items = append(c.items, it)
	c.notify(Change{Kind: ChangeAdded, Items: []Item{it}})
}

// Remove removes the first member equal to (n, m). It returns false if there
// is none.
func (c *NodeCollection) Remove(n Node, m *stat.Modifier) bool {
	it := Item{Node: n, Modifier: m}
	i := slices.Index(c.items, it)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	c.notify(Change{Kind: ChangeRemoved, Items: []Item{it}})
	return true
}

// Reset replaces all members.
func (c *NodeCollection) Reset(items []Item) {
	c.items = slices.Clone(items)
	c.notify(Change{Kind: ChangeReset, Items: c.Items()})
}

// Subscribe registers fn for any change on the default view.
func (c *NodeCollection) Subscribe(fn func()) func() {
	return c.changed.Subscribe(func(Change) { fn() })
}

// SubscribeChanges registers fn on the default view.
func (c *NodeCollection) SubscribeChanges(fn func(Change)) func() {
	return c.changed.Subscribe(fn)
}

// SubscriberCount returns the subscribers of both views.
func (c *NodeCollection) SubscriberCount() int {
	return c.changed.Len() + c.buffered.changed.Len()
}

// DefaultView returns the immediately notifying view.
func (c *NodeCollection) DefaultView() Collection {
	return c
}

// BufferingView returns the view notifying through the event buffer.
func (c *NodeCollection) BufferingView() Collection {
	return &c.buffered
}

func (c *NodeCollection) notify(ch Change) {
	c.changed.Fire(ch)
	c.buffered.notify(ch)
}

// bufferingView delivers changes when its buffer flushes. One held-back
// change is delivered as is; several are collapsed into one Reset.
type bufferingView struct {
	owner   *NodeCollection
	buf     *EventBuffer
	changed Event[Change]
	pending []Change
}

func (v *bufferingView) Items() []Item {
	return v.owner.Items()
}

func (v *bufferingView) Len() int {
	return v.owner.Len()
}

func (v *bufferingView) Subscribe(fn func()) func() {
	return v.changed.Subscribe(func(Change) { fn() })
}

func (v *bufferingView) SubscribeChanges(fn func(Change)) func() {
	return v.changed.Subscribe(fn)
}

func (v *bufferingView) SubscriberCount() int {
	return v.changed.Len()
}

func (v *bufferingView) notify(ch Change) {
	if v.buf == nil || !v.buf.Buffering() {
		v.changed.Fire(ch)
		return
	}
	v.pending = append(v.pending, ch)
	v.buf.enqueue(v)
}

func (v *bufferingView) flush() {
	pending := v.pending
	v.pending = nil
	switch len(pending) {
	case 0:
	case 1:
		v.changed.Fire(pending[0])
	default:
		v.changed.Fire(Change{Kind: ChangeReset, Items: v.owner.Items()})
	}
}
