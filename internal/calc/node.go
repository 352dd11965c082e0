// Package calc implements the calculation nodes of a stat graph: observable
// cells holding an optional stat.NodeValue, the decorators that cache,
// suspend and aggregate them, and the evaluation context that records which
// nodes a computation read.
//
// Everything in this package is single-threaded. Reads pull values through
// the nodes; notifications push invalidation the other way and never compute.
package calc

import "github.com/udisondev/statcalc/internal/stat"

// Observable is anything whose changes can be subscribed to.
type Observable interface {
	Subscribe(fn func()) (cancel func())
}

// Node is a cell of the calculation graph.
type Node interface {
	Observable
	// Value returns the current value; nil means absent.
	Value() (*stat.NodeValue, error)
	// SubscriberCount returns the number of change subscribers.
	SubscriberCount() int
}

// DisposableNode is a node that holds subscriptions it must release.
type DisposableNode interface {
	Node
	Dispose()
}

// Null is the node that is always absent and never changes.
var Null Node = nullNode{}

type nullNode struct{}

func (nullNode) Value() (*stat.NodeValue, error) { return nil, nil }
func (nullNode) Subscribe(func()) func()         { return func() {} }
func (nullNode) SubscriberCount() int            { return 0 }

// WrappingNode forwards the value and notifications of a target node. The
// target can be swapped without touching the wrapper's subscribers.
type WrappingNode struct {
	target  Node
	cancel  func()
	changed Signal
}

// NewWrappingNode wraps target. A nil target is replaced by Null.
func NewWrappingNode(target Node) *WrappingNode {
	n := &WrappingNode{}
	n.attach(target)
	return n
}

func (n *WrappingNode) attach(target Node) {
	if target == nil {
		target = Null
	}
	n.target = target
	n.cancel = target.Subscribe(n.changed.Fire)
}

// Value returns the target's value.
func (n *WrappingNode) Value() (*stat.NodeValue, error) {
	return n.target.Value()
}

// Subscribe registers fn for changes of the target.
func (n *WrappingNode) Subscribe(fn func()) func() {
	return n.changed.Subscribe(fn)
}

// SubscriberCount returns the number of the wrapper's own subscribers.
func (n *WrappingNode) SubscriberCount() int {
	return n.changed.Len()
}

// Target returns the current target.
func (n *WrappingNode) Target() Node {
	return n.target
}

// SetTarget replaces the target and notifies subscribers once.
func (n *WrappingNode) SetTarget(target Node) {
	if target == nil {
		target = Null
	}
	if target == n.target {
		return
	}
	n.cancel()
	n.attach(target)
	n.changed.Fire()
}

// Dispose releases the subscription to the target. The target itself is not
// owned by the wrapper and stays alive.
func (n *WrappingNode) Dispose() {
	n.cancel()
	n.target = Null
	n.cancel = func() {}
	n.changed.Clear()
}
