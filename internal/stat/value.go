package stat

import (
	"fmt"
	"math"
)

// epsilon is the tolerance used by AlmostEqual.
const epsilon = 1e-9

// NodeValue is the immutable result carried through the calculation graph.
// Value is the main component, Max its upper bound. A single number is
// represented with both components equal.
//
// Absence is expressed with a nil *NodeValue and means "no contribution".
type NodeValue struct {
	Value float64
	Max   float64
}

// NewValue returns a single-number value (v, v).
func NewValue(v float64) *NodeValue {
	return &NodeValue{Value: v, Max: v}
}

// NewRange returns a value with an explicit upper bound.
func NewRange(v, max float64) *NodeValue {
	return &NodeValue{Value: v, Max: max}
}

// Zero is the additive identity.
func Zero() *NodeValue { return NewValue(0) }

// One is the multiplicative identity.
func One() *NodeValue { return NewValue(1) }

// IsZero reports whether both components are zero.
func (v NodeValue) IsZero() bool {
	return v.Value == 0 && v.Max == 0
}

// String implements fmt.Stringer.
func (v NodeValue) String() string {
	if v.Value == v.Max {
		return fmt.Sprintf("%g", v.Value)
	}
	return fmt.Sprintf("%g..%g", v.Value, v.Max)
}

// Map applies f to both components.
func (v NodeValue) Map(f func(float64) float64) *NodeValue {
	return &NodeValue{Value: f(v.Value), Max: f(v.Max)}
}

// Add sums a and b componentwise. An absent operand is ignored, so the sum is
// absent only when both are absent.
func Add(a, b *NodeValue) *NodeValue {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return &NodeValue{Value: a.Value + b.Value, Max: a.Max + b.Max}
}

// Multiply multiplies a and b componentwise. Absence is absorbing.
func Multiply(a, b *NodeValue) *NodeValue {
	if a == nil || b == nil {
		return nil
	}
	return &NodeValue{Value: a.Value * b.Value, Max: a.Max * b.Max}
}

// Clamp restricts v into [lo, hi] componentwise. Absent bounds don't clamp.
func Clamp(v, lo, hi *NodeValue) *NodeValue {
	if v == nil {
		return nil
	}
	out := *v
	if lo != nil {
		out.Value = math.Max(out.Value, lo.Value)
		out.Max = math.Max(out.Max, lo.Max)
	}
	if hi != nil {
		out.Value = math.Min(out.Value, hi.Value)
		out.Max = math.Min(out.Max, hi.Max)
	}
	return &out
}

// OrZero returns v, or zero when v is absent.
func OrZero(v *NodeValue) *NodeValue {
	if v == nil {
		return Zero()
	}
	return v
}

// Equal reports exact equality, treating two absent values as equal.
func Equal(a, b *NodeValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// AlmostEqual is Equal with a small tolerance for float rounding.
func AlmostEqual(a, b *NodeValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return math.Abs(a.Value-b.Value) < epsilon && math.Abs(a.Max-b.Max) < epsilon
}
