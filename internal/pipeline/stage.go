package pipeline

import (
	"github.com/udisondev/statcalc/internal/aggregate"
	"github.com/udisondev/statcalc/internal/stat"
)

// StageValue returns the computation of stage sel of s.
//
// Form stages aggregate their form's modifiers on sel.Path. Increase and More
// off the main path also take the modifiers of every influencing path (see
// InfluencingPaths), and on influenced stats those of every influencing
// entity.
func StageValue(s *stat.Stat, sel stat.NodeSelector) stat.Value {
	p := sel.Path
	switch sel.NodeType {
	case stat.Base:
		if p.IsConversion() {
			return ConvertedBaseValue{Path: p}
		}
		return BaseValue{Stat: s, Path: p}
	case stat.PathTotal:
		return PathTotalValue{Stat: s, Path: p}
	case stat.UncappedSubtotal:
		return UncappedSubtotalValue{Stat: s}
	case stat.Subtotal:
		return SubtotalValue{Stat: s}
	case stat.Total:
		return TotalValue{Stat: s}
	}

	form, _ := stat.FormOf(sel.NodeType)
	agg := aggregate.For(form)
	if IsMultiPath(s, sel) {
		return MultiPathFormAggregate{
			Stats:     s.Influencing(),
			Form:      form,
			Paths:     InfluencingPaths(p),
			Aggregate: agg,
		}
	}
	return FormAggregate{Stat: s, Form: form, Path: p, Aggregate: agg}
}

// IsMultiPath reports whether stage sel of s aggregates modifiers beyond its
// own collection.
func IsMultiPath(s *stat.Stat, sel stat.NodeSelector) bool {
	form, ok := stat.FormOf(sel.NodeType)
	if !ok || (form != stat.FormIncrease && form != stat.FormMore) {
		return false
	}
	return !sel.Path.IsMain() || len(s.Influencers) > 0
}
