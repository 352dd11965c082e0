// Package aggregate holds the reduction functions that combine the values of
// all modifiers of one form into the value of the form's stage.
//
// Every function filters absent entries first and returns an absent result
// when nothing is left.
package aggregate

import (
	"fmt"

	"github.com/udisondev/statcalc/internal/stat"
)

// For returns the reduction function used for modifiers of form f.
func For(f stat.Form) stat.Aggregator {
	switch f {
	case stat.FormBaseSet:
		return BaseSet
	case stat.FormBaseAdd:
		return BaseAdd
	case stat.FormIncrease:
		return Increase
	case stat.FormMore:
		return More
	default:
		return Override
	}
}

// Sum adds all values.
func Sum(values []*stat.NodeValue) (*stat.NodeValue, error) {
	var acc *stat.NodeValue
	for _, v := range values {
		acc = stat.Add(acc, v)
	}
	return acc, nil
}

// Product multiplies all values.
func Product(values []*stat.NodeValue) (*stat.NodeValue, error) {
	var acc *stat.NodeValue
	for _, v := range present(values) {
		if acc == nil {
			acc = v
			continue
		}
		acc = stat.Multiply(acc, v)
	}
	return acc, nil
}

// More multiplies the factors (1 + v/100).
func More(values []*stat.NodeValue) (*stat.NodeValue, error) {
	factors := make([]*stat.NodeValue, 0, len(values))
	for _, v := range present(values) {
		factors = append(factors, v.Map(percentFactor))
	}
	return Product(factors)
}

// Increase sums all values and converts the sum from percent, so 100%
// increased yields 1.
func Increase(values []*stat.NodeValue) (*stat.NodeValue, error) {
	sum, _ := Sum(values)
	if sum == nil {
		return nil, nil
	}
	return sum.Map(fromPercent), nil
}

// BaseAdd sums all values.
func BaseAdd(values []*stat.NodeValue) (*stat.NodeValue, error) {
	return Sum(values)
}

// Override allows at most one non-zero value. The result is that value, or
// zero when every present value is zero.
func Override(values []*stat.NodeValue) (*stat.NodeValue, error) {
	vs := present(values)
	if len(vs) == 0 {
		return nil, nil
	}
	var found *stat.NodeValue
	for _, v := range vs {
		if v.IsZero() {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("override by %s and %s: %w", found, v, stat.ErrUnsupportedCombination)
		}
		found = v
	}
	if found == nil {
		return stat.Zero(), nil
	}
	return found, nil
}

// BaseSet sums the values and keeps the single non-zero upper bound. More
// than one distinct non-zero upper bound is unsupported.
func BaseSet(values []*stat.NodeValue) (*stat.NodeValue, error) {
	vs := present(values)
	if len(vs) == 0 {
		return nil, nil
	}
	var sum, bound float64
	for _, v := range vs {
		sum += v.Value
		if v.Max == 0 || v.Max == bound {
			continue
		}
		if bound != 0 {
			return nil, fmt.Errorf("base set upper bounds %g and %g: %w", bound, v.Max, stat.ErrUnsupportedCombination)
		}
		bound = v.Max
	}
	return stat.NewRange(sum, bound), nil
}

func present(values []*stat.NodeValue) []*stat.NodeValue {
	out := make([]*stat.NodeValue, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func percentFactor(v float64) float64 { return 1 + v/100 }

func fromPercent(v float64) float64 { return v / 100 }
