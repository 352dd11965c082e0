package pipeline

import (
	"fmt"

	"github.com/udisondev/statcalc/internal/stat"
)

// PathTotalValue computes Base x (1 + Increase) x More on one path. The
// Increase stage is already converted from percent by its reducer. Absent
// Increase counts as 0 and absent More as 1; absent Base makes the result
// absent.
type PathTotalValue struct {
	Stat *stat.Stat
	Path stat.Path
}

// Calculate implements stat.Value.
func (p PathTotalValue) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	base, err := ctx.GetValue(p.Stat, stat.Base, p.Path)
	if err != nil || base == nil {
		return nil, err
	}
	inc, err := ctx.GetValue(p.Stat, stat.Increase, p.Path)
	if err != nil {
		return nil, err
	}
	more, err := ctx.GetValue(p.Stat, stat.More, p.Path)
	if err != nil {
		return nil, err
	}
	if more == nil {
		more = stat.One()
	}
	factor := stat.Add(stat.One(), stat.OrZero(inc))
	return stat.Multiply(stat.Multiply(base, factor), more), nil
}

func (p PathTotalValue) String() string {
	return fmt.Sprintf("PathTotal(%s@%s)", p.Stat, p.Path)
}

// UncappedSubtotalValue sums PathTotal over every known path of a stat. It is
// absent only when no path contributes; paths summing to zero yield zero.
type UncappedSubtotalValue struct {
	Stat *stat.Stat
}

// Calculate implements stat.Value.
func (u UncappedSubtotalValue) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	var acc *stat.NodeValue
	for _, p := range ctx.GetPaths(u.Stat) {
		v, err := ctx.GetValue(u.Stat, stat.PathTotal, p)
		if err != nil {
			return nil, err
		}
		acc = stat.Add(acc, v)
	}
	return acc, nil
}

func (u UncappedSubtotalValue) String() string {
	return fmt.Sprintf("UncappedSubtotal(%s)", u.Stat)
}

// SubtotalValue clamps UncappedSubtotal into the Totals of the stat's
// minimum and maximum stats, when declared.
type SubtotalValue struct {
	Stat *stat.Stat
}

// Calculate implements stat.Value.
func (s SubtotalValue) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	main := stat.MainPath()
	v, err := ctx.GetValue(s.Stat, stat.UncappedSubtotal, main)
	if err != nil || v == nil {
		return v, err
	}
	var lo, hi *stat.NodeValue
	if s.Stat.Minimum != nil {
		if lo, err = ctx.GetValue(s.Stat.Minimum, stat.Total, main); err != nil {
			return nil, err
		}
	}
	if s.Stat.Maximum != nil {
		if hi, err = ctx.GetValue(s.Stat.Maximum, stat.Total, main); err != nil {
			return nil, err
		}
	}
	return stat.Clamp(v, lo, hi), nil
}

func (s SubtotalValue) String() string {
	return fmt.Sprintf("Subtotal(%s)", s.Stat)
}

// TotalValue is the TotalOverride if present, else the Subtotal.
type TotalValue struct {
	Stat *stat.Stat
}

// Calculate implements stat.Value.
func (t TotalValue) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	main := stat.MainPath()
	override, err := ctx.GetValue(t.Stat, stat.TotalOverride, main)
	if err != nil {
		return nil, err
	}
	if override != nil {
		return override, nil
	}
	return ctx.GetValue(t.Stat, stat.Subtotal, main)
}

func (t TotalValue) String() string {
	return fmt.Sprintf("Total(%s)", t.Stat)
}
