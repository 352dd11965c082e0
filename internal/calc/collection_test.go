package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcalc/internal/aggregate"
	"github.com/udisondev/statcalc/internal/stat"
)

func TestAggregatingNode_DeltaSubscriptions(t *testing.T) {
	coll := NewNodeCollection(nil)
	a, b := newFakeNode(1), newFakeNode(2)
	coll.Add(a, nil)

	n := NewAggregatingNode(coll, aggregate.Sum)
	fired := 0
	n.Subscribe(func() { fired++ })
	assert.Equal(t, 1, a.SubscriberCount())

	coll.Add(b, nil)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, a.SubscriberCount(), "existing member untouched")
	assert.Equal(t, 1, b.SubscriberCount())

	v, err := n.Value()
	require.NoError(t, err)
	assert.Equal(t, stat.NewValue(3), v)

	b.set(5)
	assert.Equal(t, 2, fired, "member value change propagates")

	require.True(t, coll.Remove(a, nil))
	assert.Zero(t, a.SubscriberCount())
	assert.Equal(t, 1, b.SubscriberCount())
	assert.Equal(t, 1, n.MemberCount())

	a.set(100)
	assert.Equal(t, 3, fired, "removed member no longer observed")

	assert.False(t, coll.Remove(a, nil))
}

func TestAggregatingNode_Reset(t *testing.T) {
	coll := NewNodeCollection(nil)
	a, b, c := newFakeNode(1), newFakeNode(2), newFakeNode(3)
	coll.Add(a, nil)
	coll.Add(b, nil)

	n := NewAggregatingNode(coll, aggregate.Sum)
	coll.Reset([]Item{{Node: b}, {Node: c}})

	assert.Zero(t, a.SubscriberCount())
	assert.Equal(t, 1, b.SubscriberCount())
	assert.Equal(t, 1, c.SubscriberCount())
	assert.Equal(t, 2, n.MemberCount())

	v, err := n.Value()
	require.NoError(t, err)
	assert.Equal(t, stat.NewValue(5), v)

	n.Dispose()
	assert.Zero(t, b.SubscriberCount())
	assert.Zero(t, c.SubscriberCount())
	assert.Zero(t, coll.SubscriberCount())
}

func TestNodeCollection_BufferingView(t *testing.T) {
	buf := NewEventBuffer()
	coll := NewNodeCollection(buf)

	var immediate, buffered []Change
	coll.DefaultView().SubscribeChanges(func(c Change) { immediate = append(immediate, c) })
	coll.BufferingView().SubscribeChanges(func(c Change) { buffered = append(buffered, c) })
	assert.Equal(t, 2, coll.SubscriberCount())

	a, b := newFakeNode(1), newFakeNode(2)

	buf.Buffer()
	coll.Add(a, nil)
	coll.Add(b, nil)
	coll.Remove(a, nil)
	assert.Len(t, immediate, 3)
	assert.Empty(t, buffered)

	buf.Flush()
	require.Len(t, buffered, 1, "several buffered changes collapse")
	assert.Equal(t, ChangeReset, buffered[0].Kind)
	assert.Equal(t, []Item{{Node: b}}, buffered[0].Items)

	buf.Buffer()
	coll.Add(a, nil)
	buf.Flush()
	require.Len(t, buffered, 2)
	assert.Equal(t, Change{Kind: ChangeAdded, Items: []Item{{Node: a}}}, buffered[1], "a single change is kept")

	coll.Remove(b, nil)
	require.Len(t, buffered, 3, "delivered immediately when not buffering")
	assert.Equal(t, ChangeRemoved, buffered[2].Kind)
}

func TestAggregatingNode_OverBufferingView(t *testing.T) {
	buf := NewEventBuffer()
	coll := NewNodeCollection(buf)
	a, b := newFakeNode(1), newFakeNode(2)
	n := NewAggregatingNode(coll.BufferingView(), aggregate.Sum)

	fired := 0
	n.Subscribe(func() { fired++ })

	buf.Buffer()
	coll.Add(a, nil)
	coll.Add(b, nil)
	assert.Zero(t, fired)
	assert.Zero(t, a.SubscriberCount())

	buf.Flush()
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, a.SubscriberCount())
	assert.Equal(t, 1, b.SubscriberCount())
}

func TestPathCollection(t *testing.T) {
	pc := NewPathCollection()
	fired := 0
	pc.Subscribe(func() { fired++ })

	item := stat.SourcePath(stat.Source{Kind: stat.SourceItem, Name: "Weapon"})
	pc.Add(stat.MainPath())
	assert.Equal(t, 1, pc.Len())
	assert.Zero(t, fired)

	pc.Add(item)
	pc.Add(item)
	assert.Equal(t, 2, pc.Len())
	assert.Equal(t, 1, fired)

	pc.Remove(item)
	assert.Equal(t, 2, pc.Len(), "still referenced once")
	pc.Remove(item)
	assert.Equal(t, 1, pc.Len())
	assert.Equal(t, 2, fired)
	assert.True(t, pc.Paths()[0].IsMain())

	pc.Remove(item)
	assert.Equal(t, 2, fired, "removing an unknown path is a no-op")
}
