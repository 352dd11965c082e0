package graph

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/udisondev/statcalc/internal/calc"
	"github.com/udisondev/statcalc/internal/stat"
)

// ExplicitRegistry keeps one stable endpoint node per explicit stat. An
// endpoint forwards the main Total of its stat while that node exists and
// is absent otherwise, so consumers can hold it across pruning.
type ExplicitRegistry struct {
	graph     *ObservableGraph
	repo      calc.NodeRepository
	endpoints map[stat.Key]*endpoint
	cancels   []func()
}

type endpoint struct {
	stat          *stat.Stat
	node          *calc.WrappingNode
	attached      *StatNode
	cancelRemoved func()
}

// NewExplicitRegistry tracks explicit stats appearing in g. Endpoints target
// nodes resolved through repo.
func NewExplicitRegistry(g *ObservableGraph, repo calc.NodeRepository) *ExplicitRegistry {
	r := &ExplicitRegistry{
		graph:     g,
		repo:      repo,
		endpoints: make(map[stat.Key]*endpoint),
	}
	r.cancels = append(r.cancels,
		g.OnStatAdded(func(sg *StatGraph) {
			if _, ok := r.endpoints[sg.Stat().Key()]; ok || sg.Stat().Explicit {
				r.attach(r.endpointOf(sg.Stat()))
			}
		}),
		g.OnModifierAdded(func(m *stat.Modifier) {
			for _, s := range m.Stats {
				if ep, ok := r.endpoints[s.Key()]; ok {
					r.attach(ep)
				}
			}
		}),
		g.OnStatRemoved(func(s *stat.Stat) {
			if ep, ok := r.endpoints[s.Key()]; ok {
				r.detach(ep)
			}
		}),
	)
	return r
}

// Endpoint returns the endpoint of s, registering s if needed.
func (r *ExplicitRegistry) Endpoint(s *stat.Stat) calc.Node {
	ep := r.endpointOf(s)
	if _, ok := r.graph.Lookup(s); ok {
		r.attach(ep)
	}
	return ep.node
}

// Stats returns the registered stats ordered by key.
func (r *ExplicitRegistry) Stats() []*stat.Stat {
	out := make([]*stat.Stat, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		out = append(out, ep.stat)
	}
	slices.SortFunc(out, func(a, b *stat.Stat) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

// IsSelfReferenced reports whether the only subscriber of n is the endpoint
// of s and nobody observes that endpoint.
func (r *ExplicitRegistry) IsSelfReferenced(s *stat.Stat, n *StatNode) bool {
	ep, ok := r.endpoints[s.Key()]
	if !ok || ep.attached != n {
		return false
	}
	return n.Node.SubscriberCount() == 1 && ep.node.SubscriberCount() == 0
}

// Close detaches every endpoint and stops tracking the graph.
func (r *ExplicitRegistry) Close() {
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
	for _, ep := range r.endpoints {
		r.detach(ep)
		ep.node.Dispose()
	}
	clear(r.endpoints)
}

func (r *ExplicitRegistry) endpointOf(s *stat.Stat) *endpoint {
	if ep, ok := r.endpoints[s.Key()]; ok {
		return ep
	}
	ep := &endpoint{stat: s, node: calc.NewWrappingNode(calc.Null), cancelRemoved: func() {}}
	r.endpoints[s.Key()] = ep
	return ep
}

func (r *ExplicitRegistry) attach(ep *endpoint) {
	if ep.attached != nil {
		return
	}
	sel := stat.MainSelector(stat.Total)
	target := r.repo.GetNode(ep.stat, sel)
	sg, ok := r.graph.Lookup(ep.stat)
	if !ok {
		return
	}
	ep.attached, _ = sg.Node(sel)
	ep.cancelRemoved = sg.SubscribeNodeRemoved(func(n *StatNode) {
		if n == ep.attached {
			r.detach(ep)
		}
	})
	ep.node.SetTarget(target)
	slog.Debug("explicit endpoint attached", "stat", ep.stat)
}

func (r *ExplicitRegistry) detach(ep *endpoint) {
	if ep.attached == nil {
		return
	}
	ep.cancelRemoved()
	ep.cancelRemoved = func() {}
	ep.attached = nil
	ep.node.SetTarget(calc.Null)
	slog.Debug("explicit endpoint detached", "stat", ep.stat)
}
