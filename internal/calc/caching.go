package calc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/statcalc/internal/stat"
)

// ErrDisposed is returned by reads of a node that was released from its
// graph. Fetch the node again to read the current value.
var ErrDisposed = errors.New("calc: node disposed")

// Suspendable batches notification delivery between Suspend and Resume.
type Suspendable interface {
	Suspend()
	Resume()
}

// CachingNode memoizes the value of a decorated node until the decorated
// node notifies a change.
//
// It exposes two views over the same cache. The default view (the
// CachingNode itself) notifies immediately. The suspendable view notifies
// immediately too, except while the node is suspended: then notifications
// are remembered and Resume fires exactly one if any arrived.
type CachingNode struct {
	label     string
	decorated Node
	cancel    func()
	guard     CycleGuard

	value *stat.NodeValue
	valid bool

	changed     Signal
	suspendable suspendableView
	suspended   bool
	pending     bool
	disposed    bool
}

// NewCachingNode decorates n. The label only shows up in logs and errors.
func NewCachingNode(label string, n Node) *CachingNode {
	c := &CachingNode{label: label, decorated: n}
	c.suspendable.owner = c
	c.cancel = n.Subscribe(c.invalidate)
	return c
}

// Label returns the node's label.
func (c *CachingNode) Label() string {
	return c.label
}

// Value returns the cached value, evaluating the decorated node on a miss.
// Evaluation is guarded: reading the node again while it is being evaluated
// fails with stat.ErrCyclicEvaluation. Failures are not cached. A disposed
// node fails with ErrDisposed.
func (c *CachingNode) Value() (*stat.NodeValue, error) {
	if c.disposed {
		return nil, fmt.Errorf("%s: %w", c.label, ErrDisposed)
	}
	if c.valid {
		return c.value, nil
	}
	release, err := c.guard.Enter()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.label, err)
	}
	defer release()

	v, err := c.decorated.Value()
	if err != nil {
		return nil, err
	}
	c.value, c.valid = v, true
	if IsDebugEnabled() {
		slog.Debug("node recalculated", "node", c.label, "value", v)
	}
	return v, nil
}

// Subscribe registers fn on the default view.
func (c *CachingNode) Subscribe(fn func()) func() {
	return c.changed.Subscribe(fn)
}

// SubscriberCount returns the subscribers of both views.
func (c *CachingNode) SubscriberCount() int {
	return c.changed.Len() + c.suspendable.changed.Len()
}

// DefaultView returns the view notifying immediately.
func (c *CachingNode) DefaultView() Node {
	return c
}

// SuspendableView returns the view whose notifications are held back while
// the node is suspended.
func (c *CachingNode) SuspendableView() Node {
	return &c.suspendable
}

// Suspend holds back notifications of the suspendable view.
func (c *CachingNode) Suspend() {
	c.suspended = true
}

// Resume ends suspension and fires one notification if any was held back.
func (c *CachingNode) Resume() {
	c.suspended = false
	if c.pending {
		c.pending = false
		c.suspendable.changed.Fire()
	}
}

// Dispose releases the decorated node and drops all subscribers. Later
// reads fail with ErrDisposed.
func (c *CachingNode) Dispose() {
	c.cancel()
	c.cancel = func() {}
	if d, ok := c.decorated.(DisposableNode); ok {
		d.Dispose()
	}
	c.decorated = Null
	c.disposed = true
	c.value, c.valid = nil, false
	c.pending = false
	c.changed.Clear()
	c.suspendable.changed.Clear()
}

func (c *CachingNode) invalidate() {
	c.value, c.valid = nil, false
	c.changed.Fire()
	if c.suspended {
		c.pending = true
		return
	}
	c.suspendable.changed.Fire()
}

type suspendableView struct {
	owner   *CachingNode
	changed Signal
}

func (v *suspendableView) Value() (*stat.NodeValue, error) {
	return v.owner.Value()
}

func (v *suspendableView) Subscribe(fn func()) func() {
	return v.changed.Subscribe(fn)
}

func (v *suspendableView) SubscriberCount() int {
	return v.changed.Len()
}
