package stat

import "strconv"

// Context is what a Value reads other stats through. Implementations record
// every read so the reading node can subscribe to exactly what it used.
type Context interface {
	// GetValue returns the value of one stage of s on path p.
	GetValue(s *Stat, t NodeType, p Path) (*NodeValue, error)
	// GetValues returns the values of all modifiers of form f on each of the
	// given stat/path pairs.
	GetValues(f Form, paths []StatPath) ([]*NodeValue, error)
	// GetPaths returns every path currently known for s.
	GetPaths(s *Stat) []Path
}

// Value is a computation from a context to an optional result.
type Value interface {
	Calculate(ctx Context) (*NodeValue, error)
}

// ValueFunc adapts a function to Value.
type ValueFunc func(ctx Context) (*NodeValue, error)

// Calculate calls f.
func (f ValueFunc) Calculate(ctx Context) (*NodeValue, error) {
	return f(ctx)
}

// Constant is a Value that never changes. A nil Constant is absent.
type Constant struct {
	v *NodeValue
}

// NewConstant returns a constant single-number value.
func NewConstant(v float64) Constant {
	return Constant{v: NewValue(v)}
}

// NewConstantValue returns a constant for an arbitrary (possibly absent) value.
func NewConstantValue(v *NodeValue) Constant {
	return Constant{v: v}
}

// Calculate returns the constant.
func (c Constant) Calculate(Context) (*NodeValue, error) {
	return c.v, nil
}

func (c Constant) String() string {
	if c.v == nil {
		return "null"
	}
	if c.v.Value == c.v.Max {
		return strconv.FormatFloat(c.v.Value, 'g', -1, 64)
	}
	return c.v.String()
}

// Aggregator reduces the values of several nodes into one. Absent entries
// carry no contribution.
type Aggregator func(values []*NodeValue) (*NodeValue, error)
