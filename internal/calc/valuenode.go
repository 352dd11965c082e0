package calc

import (
	"log/slog"

	"github.com/udisondev/statcalc/internal/stat"
)

// ValueNode evaluates a stat.Value and keeps itself subscribed to exactly
// the nodes and collections the last evaluation read.
//
// ValueNode does not cache; it is meant to be decorated by a CachingNode.
type ValueNode struct {
	value       stat.Value
	ctx         *EvaluationContext
	changed     Signal
	deps        map[Observable]func()
	valueCancel func()
}

// NewValueNode evaluates value through ctx. If value is Observable itself
// (e.g. a transformable value) its changes are forwarded too.
func NewValueNode(value stat.Value, ctx *EvaluationContext) *ValueNode {
	n := &ValueNode{
		value:       value,
		ctx:         ctx,
		deps:        make(map[Observable]func()),
		valueCancel: func() {},
	}
	if o, ok := value.(Observable); ok {
		n.valueCancel = o.Subscribe(n.changed.Fire)
	}
	return n
}

// Value runs the computation against a cleared context and then diffs the
// recorded dependencies against the current subscriptions. Dependencies are
// updated on failure too, so a fix in a dependency triggers recomputation.
func (n *ValueNode) Value() (*stat.NodeValue, error) {
	n.ctx.Clear()
	v, err := n.value.Calculate(n.ctx)
	n.resubscribe()
	return v, err
}

// Subscribe registers fn for changes of any dependency.
func (n *ValueNode) Subscribe(fn func()) func() {
	return n.changed.Subscribe(fn)
}

// SubscriberCount returns the number of subscribers.
func (n *ValueNode) SubscriberCount() int {
	return n.changed.Len()
}

// DependencyCount returns the number of nodes and collections subscribed to.
func (n *ValueNode) DependencyCount() int {
	return len(n.deps)
}

// DependsOn reports whether the node is subscribed to o.
func (n *ValueNode) DependsOn(o Observable) bool {
	_, ok := n.deps[o]
	return ok
}

// Dispose releases every dependency.
func (n *ValueNode) Dispose() {
	for o, cancel := range n.deps {
		cancel()
		delete(n.deps, o)
	}
	n.valueCancel()
	n.valueCancel = func() {}
	n.changed.Clear()
	n.ctx.Clear()
}

func (n *ValueNode) resubscribe() {
	used := make(map[Observable]struct{}, len(n.ctx.UsedNodes())+len(n.ctx.UsedCollections()))
	for _, u := range n.ctx.UsedNodes() {
		used[u] = struct{}{}
	}
	for _, u := range n.ctx.UsedCollections() {
		used[u] = struct{}{}
	}

	var added, removed int
	for o, cancel := range n.deps {
		if _, ok := used[o]; !ok {
			cancel()
			delete(n.deps, o)
			removed++
		}
	}
	for o := range used {
		if _, ok := n.deps[o]; !ok {
			n.deps[o] = o.Subscribe(n.changed.Fire)
			added++
		}
	}
	if IsDebugEnabled() && (added > 0 || removed > 0) {
		slog.Debug("dependencies updated", "added", added, "removed", removed, "total", len(n.deps))
	}
}
