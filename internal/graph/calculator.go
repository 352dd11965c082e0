package graph

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/statcalc/internal/calc"
	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/pipeline"
	"github.com/udisondev/statcalc/internal/stat"
)

// ErrReentrantUpdate is returned when Update is called from a change
// notification that an Update is delivering.
var ErrReentrantUpdate = errors.New("graph: update called during update")

// Update is one batch of modifier edits.
type Update struct {
	Added   []*stat.Modifier
	Removed []*stat.Modifier
}

// Calculator wires a calculation graph together with its pruner and explicit
// endpoints and applies modifier edits in batches. It is not safe for
// concurrent use.
type Calculator struct {
	core      *CalculationGraph
	graph     *ObservableGraph
	buffer    *calc.EventBuffer
	suspender *calc.SuspenderGroup
	repo      publicRepository
	explicit  *ExplicitRegistry
	pruner    *Pruner

	pruneAfterUpdate bool
	updating         bool
}

// NewCalculator builds an empty calculator configured by cfg.
func NewCalculator(cfg config.Calculator) *Calculator {
	buf := calc.NewEventBuffer()
	group := &calc.SuspenderGroup{}
	factory := &CoreNodeFactory{Buffer: buf, Suspender: group}
	core := NewCalculationGraph(factory)
	g := NewObservableGraph(core)
	factory.Repository = NewInternalRepository(g)

	c := &Calculator{
		core:             core,
		graph:            g,
		buffer:           buf,
		suspender:        group,
		repo:             publicRepository{graph: g},
		pruneAfterUpdate: cfg.PruneAfterUpdate,
	}
	c.explicit = NewExplicitRegistry(g, c.repo)

	var policy RemovalPolicy = DefaultPolicy{Explicit: c.explicit}
	if cfg.RemovalPolicy == config.PolicyExplicit {
		policy = ExplicitValuePolicy{DefaultPolicy{Explicit: c.explicit}}
	}
	c.pruner = NewPruner(g, policy)
	return c
}

// Update applies removals, then additions. Caching nodes are suspended and
// collection notifications buffered meanwhile, so every consumer sees at most
// one change per Update. Modifiers that fail to register are skipped and
// reported together; the rest of the batch is still applied.
func (c *Calculator) Update(u Update) error {
	if c.updating {
		return ErrReentrantUpdate
	}
	c.updating = true
	defer func() { c.updating = false }()

	c.suspender.Suspend()
	c.buffer.Buffer()

	var errs []error
	removed := 0
	for _, m := range u.Removed {
		if c.graph.RemoveModifier(m) {
			removed++
			continue
		}
		slog.Warn("removing unregistered modifier", "modifier", m)
	}
	added := 0
	for _, m := range u.Added {
		if err := c.graph.AddModifier(m); err != nil {
			errs = append(errs, err)
			continue
		}
		added++
	}

	c.buffer.Flush()
	c.suspender.Resume()

	slog.Debug("calculator updated",
		"added", added,
		"removed", removed,
		"modifiers", c.core.ModifierCount(),
		"stats", len(c.core.graphs))

	if c.pruneAfterUpdate {
		c.pruner.Prune()
	}
	if len(errs) > 0 {
		return fmt.Errorf("updating calculator: %w", errors.Join(errs...))
	}
	return nil
}

// Repository returns the repository consumers read and subscribe through.
// Its nodes notify at most once per Update.
//
// A node held without a subscription may be pruned by Update or Prune;
// reads of it then fail with calc.ErrDisposed. Subscribe to keep a node
// alive, or fetch it again from the repository.
func (c *Calculator) Repository() calc.NodeRepository {
	return c.repo
}

// Total returns the current Total of s.
func (c *Calculator) Total(s *stat.Stat) (*stat.NodeValue, error) {
	v, err := c.repo.GetNode(s, stat.MainSelector(stat.Total)).Value()
	if err != nil {
		return nil, fmt.Errorf("total of %s: %w", s, err)
	}
	return v, nil
}

// Transformable returns the transformation list of a computed stage. Form
// stages on the main path have none.
func (c *Calculator) Transformable(s *stat.Stat, sel stat.NodeSelector) (*pipeline.Transformable, bool) {
	n := c.graph.GetOrAdd(s).GetNode(sel)
	return n.Transformable, n.Transformable != nil
}

// Explicit returns the explicit endpoint registry.
func (c *Calculator) Explicit() *ExplicitRegistry {
	return c.explicit
}

// Graph returns the underlying graph.
func (c *Calculator) Graph() *ObservableGraph {
	return c.graph
}

// Pruner returns the pruner.
func (c *Calculator) Pruner() *Pruner {
	return c.pruner
}

// Prune releases whatever is unreferenced now.
func (c *Calculator) Prune() PruneReport {
	return c.pruner.Prune()
}

// ModifierCount returns the number of registered modifier occurrences.
func (c *Calculator) ModifierCount() int {
	return c.core.ModifierCount()
}

// Close stops the pruner and the explicit registry.
func (c *Calculator) Close() {
	c.pruner.Close()
	c.explicit.Close()
}
