// Package pipeline implements the per-stage value computations of a stat
// graph. Each computation reads the stages it builds on through a
// stat.Context, which is how the reading node learns its dependencies.
//
// Stage order on one path:
//
//	BaseOverride | BaseSet + BaseAdd -> Base
//	Base x (1 + Increase) x More     -> PathTotal
//
// and on the main path of a stat:
//
//	sum of PathTotal over all paths           -> UncappedSubtotal
//	UncappedSubtotal clamped into [min, max]  -> Subtotal
//	TotalOverride, else Subtotal              -> Total
package pipeline

import (
	"fmt"

	"github.com/udisondev/statcalc/internal/stat"
)

// BaseValue computes the Base stage on an unconverted path: the
// BaseOverride if present, else BaseSet (or 0) plus BaseAdd (or 0). It is
// absent when neither BaseSet nor BaseAdd is present.
type BaseValue struct {
	Stat *stat.Stat
	Path stat.Path
}

// Calculate implements stat.Value.
func (b BaseValue) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	override, err := ctx.GetValue(b.Stat, stat.BaseOverride, b.Path)
	if err != nil {
		return nil, err
	}
	if override != nil {
		return override, nil
	}
	set, err := ctx.GetValue(b.Stat, stat.BaseSet, b.Path)
	if err != nil {
		return nil, err
	}
	add, err := ctx.GetValue(b.Stat, stat.BaseAdd, b.Path)
	if err != nil {
		return nil, err
	}
	if set == nil && add == nil {
		return nil, nil
	}
	return stat.Add(stat.OrZero(set), stat.OrZero(add)), nil
}

func (b BaseValue) String() string {
	return fmt.Sprintf("Base(%s@%s)", b.Stat, b.Path)
}

// ConvertedBaseValue computes the Base stage on a conversion path. It reads
// the Base of the innermost conversion stat on the path with that stat
// removed, so a chain of conversions unwinds one level per stage read.
type ConvertedBaseValue struct {
	Path stat.Path
}

// Calculate implements stat.Value.
func (c ConvertedBaseValue) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	via := c.Path.Innermost()
	if via == nil {
		return nil, nil
	}
	return ctx.GetValue(via, stat.Base, c.Path.Unwind())
}

func (c ConvertedBaseValue) String() string {
	return fmt.Sprintf("ConvertedBase(%s)", c.Path)
}
