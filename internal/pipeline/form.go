package pipeline

import (
	"fmt"

	"github.com/udisondev/statcalc/internal/stat"
)

// FormAggregate reduces all modifiers of one form on one stat and path.
type FormAggregate struct {
	Stat      *stat.Stat
	Form      stat.Form
	Path      stat.Path
	Aggregate stat.Aggregator
}

// Calculate implements stat.Value.
func (f FormAggregate) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	values, err := ctx.GetValues(f.Form, []stat.StatPath{{Stat: f.Stat, Path: f.Path}})
	if err != nil {
		return nil, err
	}
	return f.Aggregate(values)
}

func (f FormAggregate) String() string {
	return fmt.Sprintf("%s(%s@%s)", f.Form, f.Stat, f.Path)
}

// MultiPathFormAggregate reduces the modifiers of one form across the cross
// product of Stats and Paths, e.g. a stat together with the stats
// influencing it, each on every path of an influencing entity.
type MultiPathFormAggregate struct {
	Stats     []*stat.Stat
	Form      stat.Form
	Paths     []stat.Path
	Aggregate stat.Aggregator
}

// Calculate implements stat.Value.
func (m MultiPathFormAggregate) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	pairs := make([]stat.StatPath, 0, len(m.Stats)*len(m.Paths))
	for _, s := range m.Stats {
		for _, p := range m.Paths {
			pairs = append(pairs, stat.StatPath{Stat: s, Path: p})
		}
	}
	values, err := ctx.GetValues(m.Form, pairs)
	if err != nil {
		return nil, err
	}
	return m.Aggregate(values)
}

func (m MultiPathFormAggregate) String() string {
	return fmt.Sprintf("%s(%v x %v)", m.Form, m.Stats, m.Paths)
}

// ConversionChain returns p followed by every path obtained by unwinding it,
// ending with the unconverted source path. Modifiers on any of these paths
// still apply to what arrives along p.
func ConversionChain(p stat.Path) []stat.Path {
	chain := []stat.Path{p}
	for p.IsConversion() {
		p = p.Unwind()
		chain = append(chain, p)
	}
	return chain
}

// InfluencingPaths returns every path whose Increase and More modifiers apply
// to what arrives along p: each path of its conversion chain, once per
// source influencing p's source. p itself comes first.
func InfluencingPaths(p stat.Path) []stat.Path {
	sources := p.Source.Influences()
	chain := ConversionChain(p)
	out := make([]stat.Path, 0, len(chain)*len(sources))
	for _, q := range chain {
		for _, src := range sources {
			out = append(out, stat.Path{Source: src, Conversions: q.Conversions})
		}
	}
	return out
}
