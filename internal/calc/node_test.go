package calc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcalc/internal/stat"
)

func TestEvent_CancelDuringFire(t *testing.T) {
	var e Event[int]
	var got []int
	var cancelSecond func()
	e.Subscribe(func(v int) {
		got = append(got, v)
		cancelSecond()
	})
	cancelSecond = e.Subscribe(func(v int) { got = append(got, -v) })

	e.Fire(1)
	e.Fire(2)

	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 1, e.Len())

	cancelSecond()
	assert.Equal(t, 1, e.Len(), "second cancel is a no-op")
}

func TestNullNode(t *testing.T) {
	v, err := Null.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
	Null.Subscribe(func() { t.Fatal("null node never notifies") })()
	assert.Zero(t, Null.SubscriberCount())
}

func TestWrappingNode_SetTarget(t *testing.T) {
	a := newFakeNode(1)
	b := newFakeNode(2)
	w := NewWrappingNode(a)

	fired := 0
	w.Subscribe(func() { fired++ })

	v, err := w.Value()
	require.NoError(t, err)
	assert.Equal(t, stat.NewValue(1), v)

	a.set(10)
	assert.Equal(t, 1, fired)

	w.SetTarget(b)
	assert.Equal(t, 2, fired, "swapping targets notifies once")
	assert.Zero(t, a.SubscriberCount())
	assert.Equal(t, 1, b.SubscriberCount())

	a.set(11)
	assert.Equal(t, 2, fired, "old target is no longer observed")

	v, err = w.Value()
	require.NoError(t, err)
	assert.Equal(t, stat.NewValue(2), v)

	w.SetTarget(nil)
	v, err = w.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	w.Dispose()
	assert.Zero(t, w.SubscriberCount())
}

func TestCycleGuard(t *testing.T) {
	var g CycleGuard

	release, err := g.Enter()
	require.NoError(t, err)
	assert.True(t, g.Held())

	_, err = g.Enter()
	assert.ErrorIs(t, err, stat.ErrCyclicEvaluation)

	release()
	release()
	assert.False(t, g.Held())

	release2, err := g.Enter()
	require.NoError(t, err)
	release2()
}

func TestCachingNode_Memoizes(t *testing.T) {
	inner := newFakeNode(5)
	c := NewCachingNode("test", inner)

	for i := 0; i < 3; i++ {
		v, err := c.Value()
		require.NoError(t, err)
		assert.Equal(t, stat.NewValue(5), v)
	}
	assert.Equal(t, 1, inner.reads)

	inner.set(7)
	v, err := c.Value()
	require.NoError(t, err)
	assert.Equal(t, stat.NewValue(7), v)
	assert.Equal(t, 2, inner.reads)
}

func TestCachingNode_ErrorsAreNotCached(t *testing.T) {
	inner := newFakeNode(5)
	inner.err = errors.New("boom")
	c := NewCachingNode("test", inner)

	_, err := c.Value()
	require.Error(t, err)

	inner.err = nil
	v, err := c.Value()
	require.NoError(t, err)
	assert.Equal(t, stat.NewValue(5), v)
}

func TestCachingNode_Suspension(t *testing.T) {
	tests := []struct {
		name          string
		notifications int
		wantOnResume  int
	}{
		{name: "none while suspended", notifications: 0, wantOnResume: 0},
		{name: "one while suspended", notifications: 1, wantOnResume: 1},
		{name: "many while suspended", notifications: 5, wantOnResume: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := newFakeNode(1)
			c := NewCachingNode("test", inner)

			immediate, suspendable := 0, 0
			c.DefaultView().Subscribe(func() { immediate++ })
			c.SuspendableView().Subscribe(func() { suspendable++ })
			assert.Equal(t, 2, c.SubscriberCount())

			c.Suspend()
			for i := 0; i < tt.notifications; i++ {
				inner.set(float64(i))
			}
			assert.Equal(t, tt.notifications, immediate, "default view is never held back")
			assert.Zero(t, suspendable)

			c.Resume()
			assert.Equal(t, tt.wantOnResume, suspendable)

			inner.set(100)
			assert.Equal(t, tt.wantOnResume+1, suspendable, "notifications pass through after resume")
		})
	}
}

// selfReadingNode reads a node it is itself decorated by.
type selfReadingNode struct {
	target  Node
	changed Signal
}

func (n *selfReadingNode) Value() (*stat.NodeValue, error) { return n.target.Value() }
func (n *selfReadingNode) Subscribe(fn func()) func()      { return n.changed.Subscribe(fn) }
func (n *selfReadingNode) SubscriberCount() int            { return n.changed.Len() }

func TestCachingNode_CycleFails(t *testing.T) {
	a := &selfReadingNode{}
	b := &selfReadingNode{}
	ca := NewCachingNode("a", a)
	cb := NewCachingNode("b", b)
	a.target = cb
	b.target = ca

	_, err := ca.Value()
	require.ErrorIs(t, err, stat.ErrCyclicEvaluation)

	// The guard is released on the failure path: breaking the cycle works.
	b.target = newFakeNode(3)
	v, err := ca.Value()
	require.NoError(t, err)
	assert.Equal(t, stat.NewValue(3), v)
}

func TestCachingNode_Dispose(t *testing.T) {
	inner := NewWrappingNode(newFakeNode(1))
	c := NewCachingNode("test", inner)
	c.Subscribe(func() {})
	assert.Equal(t, 1, inner.SubscriberCount())

	c.Dispose()
	assert.Zero(t, inner.SubscriberCount())
	assert.Zero(t, c.SubscriberCount())
	assert.Equal(t, Null, inner.Target(), "dispose is forwarded to the decorated node")

	_, err := c.Value()
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = c.SuspendableView().Value()
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestSuspenderGroup(t *testing.T) {
	a := NewCachingNode("a", newFakeNode(1))
	var g SuspenderGroup
	g.Add(a)
	g.Suspend()

	inner := newFakeNode(2)
	b := NewCachingNode("b", inner)
	g.Add(b)

	fired := 0
	b.SuspendableView().Subscribe(func() { fired++ })
	inner.set(3)
	assert.Zero(t, fired, "members joining a suspended group are suspended")

	g.Resume()
	assert.Equal(t, 1, fired)

	g.Remove(a)
	assert.Equal(t, 1, g.Len())
}
