package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcalc/internal/calc"
	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/pipeline"
	"github.com/udisondev/statcalc/internal/stat"
	"github.com/udisondev/statcalc/internal/testutil"
)

func readTotal(t *testing.T, c *Calculator, s *stat.Stat) {
	t.Helper()
	_, err := c.Total(s)
	require.NoError(t, err)
}

func TestPruner_RemovesUnreferencedStat(t *testing.T) {
	life := stat.New("Life")
	c := newTestCalculator(t)
	m := mod(stat.FormBaseSet, 50, life)
	add(t, c, m)
	readTotal(t, c, life)

	assert.Empty(t, c.Pruner().Candidates())
	assert.True(t, c.Prune().Empty(), "stats with modifiers are not pruned")

	remove(t, c, m)
	assert.Equal(t, []*stat.Stat{life}, c.Pruner().Candidates())

	r := c.Prune()
	assert.Equal(t, PruneReport{Nodes: 11, Collections: 6, Stats: 1}, r)
	_, ok := c.Graph().Lookup(life)
	assert.False(t, ok)
	assert.Empty(t, c.Pruner().Candidates())

	// The stat is rebuilt on demand.
	add(t, c, mod(stat.FormBaseSet, 70, life))
	v, err := c.Total(life)
	testutil.RequireValue(t, 70, v, err)
}

func TestPruner_KeepsSubscribedStat(t *testing.T) {
	mana := stat.New("Mana")
	c := newTestCalculator(t)
	m := mod(stat.FormBaseSet, 40, mana)
	add(t, c, m)

	total := c.Repository().GetNode(mana, stat.MainSelector(stat.Total))
	_, err := total.Value()
	require.NoError(t, err)
	cancel := total.Subscribe(func() {})

	remove(t, c, m)
	assert.True(t, c.Prune().Empty())
	sg, ok := c.Graph().Lookup(mana)
	require.True(t, ok)
	_, ok = sg.Node(stat.MainSelector(stat.Total))
	assert.True(t, ok)

	cancel()
	assert.Equal(t, 1, c.Prune().Stats)
	_, ok = c.Graph().Lookup(mana)
	assert.False(t, ok)
}

func TestPruner_ReleasesAcrossStats(t *testing.T) {
	life := stat.New("Life")
	str := stat.New("Strength")
	c := newTestCalculator(t)
	perStr := stat.NewModifier(stat.FormBaseAdd, pipeline.PerStat{Amount: 1, Stat: str, Every: 2}, stat.Global, life)
	add(t, c, mod(stat.FormBaseSet, 50, life), perStr)
	readTotal(t, c, life)

	// Strength only exists because Life reads it.
	assert.Equal(t, []*stat.Stat{str}, c.Pruner().Candidates())
	assert.True(t, c.Prune().Empty())

	remove(t, c, perStr)
	r := c.Prune()
	assert.Equal(t, 1, r.Stats)
	_, ok := c.Graph().Lookup(str)
	assert.False(t, ok)
	_, ok = c.Graph().Lookup(life)
	assert.True(t, ok)

	v, err := c.Total(life)
	testutil.RequireValue(t, 50, v, err)
}

func TestPruner_ExplicitEndpointRetargets(t *testing.T) {
	str := &stat.Stat{Identity: "Strength", Explicit: true}
	c := newTestCalculator(t)
	m := mod(stat.FormBaseSet, 10, str)
	add(t, c, m)

	ep := c.Explicit().Endpoint(str)
	v, err := ep.Value()
	testutil.RequireValue(t, 10, v, err)
	assert.Equal(t, []*stat.Stat{str}, c.Explicit().Stats())

	remove(t, c, m)
	assert.Equal(t, 1, c.Prune().Stats, "the endpoint alone does not keep the stat alive")
	v, err = ep.Value()
	testutil.RequireAbsent(t, v, err)

	var n testutil.Counter
	ep.Subscribe(n.Inc)
	add(t, c, mod(stat.FormBaseSet, 20, str))
	assert.Equal(t, 1, n.Count(), "reattaching notifies the endpoint")
	v, err = ep.Value()
	testutil.RequireValue(t, 20, v, err)

	// An observed endpoint keeps its Total alive.
	remove(t, c, mod(stat.FormBaseSet, 20, str))
	c.Prune()
	sg, ok := c.Graph().Lookup(str)
	require.True(t, ok)
	_, ok = sg.Node(stat.MainSelector(stat.Total))
	assert.True(t, ok)
}

func TestPruner_ExplicitValuePolicy(t *testing.T) {
	life := stat.New("Life")
	str := &stat.Stat{Identity: "Strength", Explicit: true}
	c := newTestCalculator(t, func(cfg *config.Calculator) {
		cfg.RemovalPolicy = config.PolicyExplicit
	})
	lifeMod := mod(stat.FormBaseSet, 50, life)
	strMod := mod(stat.FormBaseSet, 10, str)
	add(t, c, lifeMod, strMod)
	readTotal(t, c, life)
	readTotal(t, c, str)

	remove(t, c, lifeMod, strMod)
	assert.Equal(t, []*stat.Stat{str}, c.Pruner().Candidates())

	assert.Equal(t, 1, c.Prune().Stats)
	_, ok := c.Graph().Lookup(str)
	assert.False(t, ok)
	_, ok = c.Graph().Lookup(life)
	assert.True(t, ok, "non-explicit stats are left alone")
}

func TestCalculator_PruneAfterUpdate(t *testing.T) {
	life := stat.New("Life")
	c := newTestCalculator(t, func(cfg *config.Calculator) {
		cfg.PruneAfterUpdate = true
	})
	m := mod(stat.FormBaseSet, 50, life)
	add(t, c, m)
	readTotal(t, c, life)

	remove(t, c, m)
	_, ok := c.Graph().Lookup(life)
	assert.False(t, ok)
}

func TestDefaultPolicy_Collections(t *testing.T) {
	life := stat.New("Life")
	c := newTestCalculator(t)
	sg := c.Graph().GetOrAdd(life)
	sel := stat.FormSelector{Form: stat.FormBaseAdd, Path: stat.MainPath()}
	coll := sg.GetFormNodeCollection(sel)
	fc := sg.FormNodeCollections()[0]
	p := DefaultPolicy{}

	assert.True(t, p.CanRemoveCollection(sg, fc))

	cancel := coll.Subscribe(func() {})
	assert.False(t, p.CanRemoveCollection(sg, fc), "subscribed")
	cancel()

	coll.Add(calc.Null, nil)
	assert.False(t, p.CanRemoveCollection(sg, fc), "not empty")
}

func TestCalculator_PrunedHandleFails(t *testing.T) {
	life := stat.New("Life")
	c := newTestCalculator(t, func(cfg *config.Calculator) {
		cfg.PruneAfterUpdate = true
	})
	m := mod(stat.FormBaseSet, 50, life)
	add(t, c, m)

	held := c.Repository().GetNode(life, stat.MainSelector(stat.Total))
	v, err := held.Value()
	testutil.RequireValue(t, 50, v, err)

	remove(t, c, m)
	add(t, c, mod(stat.FormBaseSet, 70, life))

	_, err = held.Value()
	assert.ErrorIs(t, err, calc.ErrDisposed)

	v, err = c.Total(life)
	testutil.RequireValue(t, 70, v, err)
}
