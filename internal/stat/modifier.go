package stat

import (
	"fmt"
	"strings"
)

// Modifier is one parsed effect: it contributes Value to each of Stats in
// the given Form, along Path. Modifiers are immutable once built.
type Modifier struct {
	Stats []*Stat
	Form  Form
	Value Value
	Path  Path
}

// NewModifier builds a modifier on the source path of src.
func NewModifier(form Form, value Value, src Source, stats ...*Stat) *Modifier {
	return &Modifier{Stats: stats, Form: form, Value: value, Path: SourcePath(src)}
}

// Identity returns a string that is equal for modifiers that describe the
// same effect. Modifiers with equal identities stack.
func (m *Modifier) Identity() string {
	var b strings.Builder
	for i, s := range m.Stats {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.Key().String())
	}
	fmt.Fprintf(&b, "|%s|%s|%v", m.Form, m.Path.Key(), m.Value)
	return b.String()
}

func (m *Modifier) String() string {
	return m.Identity()
}
