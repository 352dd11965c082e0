package pipeline

import (
	"fmt"
	"math"

	"github.com/udisondev/statcalc/internal/stat"
)

// StatValue reads one stage of another stat on the main path.
type StatValue struct {
	Stat     *stat.Stat
	NodeType stat.NodeType
}

// Calculate implements stat.Value.
func (s StatValue) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	return ctx.GetValue(s.Stat, s.NodeType, stat.MainPath())
}

func (s StatValue) String() string {
	return fmt.Sprintf("%s(%s)", s.NodeType, s.Stat)
}

// PerStat grants Amount for every full Every points of the Total of Stat,
// as in "+1 to Life per 2 Strength".
type PerStat struct {
	Amount float64
	Stat   *stat.Stat
	Every  float64
}

// Calculate implements stat.Value.
func (p PerStat) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	total, err := ctx.GetValue(p.Stat, stat.Total, stat.MainPath())
	if err != nil || total == nil {
		return nil, err
	}
	every := p.Every
	if every <= 0 {
		every = 1
	}
	return total.Map(func(v float64) float64 {
		return p.Amount * math.Floor(v/every)
	}), nil
}

func (p PerStat) String() string {
	return fmt.Sprintf("%g per %g %s", p.Amount, p.Every, p.Stat)
}

// Conditional evaluates Then only while the Total of Condition is positive.
// Which stats it depends on therefore changes with the condition.
type Conditional struct {
	Condition *stat.Stat
	Then      stat.Value
}

// Calculate implements stat.Value.
func (c Conditional) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	cond, err := ctx.GetValue(c.Condition, stat.Total, stat.MainPath())
	if err != nil {
		return nil, err
	}
	if cond == nil || cond.Value <= 0 {
		return nil, nil
	}
	return c.Then.Calculate(ctx)
}

func (c Conditional) String() string {
	return fmt.Sprintf("%v if %s", c.Then, c.Condition)
}
