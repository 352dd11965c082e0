package calc

import (
	"log/slog"

	"github.com/udisondev/statcalc/internal/stat"
)

// AggregatingNode reduces the values of a live collection of nodes.
//
// It subscribes to the collection's structural changes and to every member's
// value changes. A Reset swaps the whole membership at once; Added and
// Removed only touch the delta.
type AggregatingNode struct {
	coll       Collection
	reduce     stat.Aggregator
	changed    Signal
	collCancel func()
	members    map[Item]func()
}

// NewAggregatingNode aggregates coll with reduce.
func NewAggregatingNode(coll Collection, reduce stat.Aggregator) *AggregatingNode {
	n := &AggregatingNode{
		coll:    coll,
		reduce:  reduce,
		members: make(map[Item]func()),
	}
	n.collCancel = coll.SubscribeChanges(n.onChange)
	for _, it := range coll.Items() {
		n.join(n.members, it)
	}
	return n
}

// Value reduces the current values of all members.
func (n *AggregatingNode) Value() (*stat.NodeValue, error) {
	items := n.coll.Items()
	values := make([]*stat.NodeValue, 0, len(items))
	for _, it := range items {
		v, err := it.Node.Value()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return n.reduce(values)
}

// Subscribe registers fn for changes of the aggregated value.
func (n *AggregatingNode) Subscribe(fn func()) func() {
	return n.changed.Subscribe(fn)
}

// SubscriberCount returns the number of subscribers.
func (n *AggregatingNode) SubscriberCount() int {
	return n.changed.Len()
}

// MemberCount returns the number of members currently subscribed to.
func (n *AggregatingNode) MemberCount() int {
	return len(n.members)
}

// Dispose releases the collection and all members.
func (n *AggregatingNode) Dispose() {
	n.collCancel()
	n.collCancel = func() {}
	for it, cancel := range n.members {
		cancel()
		delete(n.members, it)
	}
	n.changed.Clear()
}

func (n *AggregatingNode) onChange(ch Change) {
	switch ch.Kind {
	case ChangeReset:
		next := make(map[Item]func(), len(ch.Items))
		for _, it := range ch.Items {
			if cancel, ok := n.members[it]; ok {
				next[it] = cancel
				delete(n.members, it)
				continue
			}
			n.join(next, it)
		}
		for _, cancel := range n.members {
			cancel()
		}
		n.members = next
	case ChangeAdded:
		for _, it := range ch.Items {
			if _, ok := n.members[it]; !ok {
				n.join(n.members, it)
			}
		}
	case ChangeRemoved:
		for _, it := range ch.Items {
			if cancel, ok := n.members[it]; ok {
				cancel()
				delete(n.members, it)
			}
		}
	}
	if IsDebugEnabled() {
		slog.Debug("aggregation membership changed", "change", ch.Kind, "items", len(ch.Items), "members", len(n.members))
	}
	n.changed.Fire()
}

func (n *AggregatingNode) join(set map[Item]func(), it Item) {
	set[it] = it.Node.Subscribe(n.changed.Fire)
}
