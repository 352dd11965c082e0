package pipeline

import (
	"slices"

	"github.com/udisondev/statcalc/internal/calc"
	"github.com/udisondev/statcalc/internal/stat"
)

// Transformation rewrites a value computation, e.g. to apply a conditional
// game mechanic on top of a stage.
type Transformation func(stat.Value) stat.Value

// Transformable decorates a value with an ordered, mutable list of
// transformations applied before evaluation. It notifies subscribers
// whenever the list changes.
type Transformable struct {
	initial    stat.Value
	transforms []*transformEntry
	changed    calc.Signal
}

type transformEntry struct {
	fn Transformation
}

// NewTransformable decorates initial with an empty transformation list.
func NewTransformable(initial stat.Value) *Transformable {
	return &Transformable{initial: initial}
}

// Add appends tr and returns a function removing it again.
func (t *Transformable) Add(tr Transformation) (remove func()) {
	e := &transformEntry{fn: tr}
	t.transforms = append(t.transforms, e)
	t.changed.Fire()
	return func() {
		i := slices.Index(t.transforms, e)
		if i < 0 {
			return
		}
		t.transforms = slices.Delete(t.transforms, i, i+1)
		t.changed.Fire()
	}
}

// RemoveAll drops every transformation.
func (t *Transformable) RemoveAll() {
	if len(t.transforms) == 0 {
		return
	}
	t.transforms = nil
	t.changed.Fire()
}

// Len returns the number of transformations.
func (t *Transformable) Len() int {
	return len(t.transforms)
}

// Calculate applies the transformations in order and evaluates the result.
func (t *Transformable) Calculate(ctx stat.Context) (*stat.NodeValue, error) {
	v := t.initial
	for _, e := range t.transforms {
		v = e.fn(v)
	}
	return v.Calculate(ctx)
}

// Subscribe registers fn for changes of the transformation list.
func (t *Transformable) Subscribe(fn func()) func() {
	return t.changed.Subscribe(fn)
}

func (t *Transformable) String() string {
	if s, ok := t.initial.(interface{ String() string }); ok {
		return s.String()
	}
	return "Transformable"
}
