package stat

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCyclicEvaluation is returned when a node is re-entered while it is
	// still being evaluated.
	ErrCyclicEvaluation = errors.New("stat: cyclic evaluation")
	// ErrUnsupportedCombination is returned when more than one source sets a
	// value that at most one source may set.
	ErrUnsupportedCombination = errors.New("stat: unsupported modifier combination")
	// ErrMainPathOnly is returned when a main-path-only stage or form is
	// paired with another path.
	ErrMainPathOnly = errors.New("stat: valid on main path only")
)

// NodeType is the pipeline position of a node inside a stat graph.
type NodeType int8

const (
	BaseOverride NodeType = iota
	BaseSet
	BaseAdd
	Base
	Increase
	More
	PathTotal
	UncappedSubtotal
	Subtotal
	TotalOverride
	Total
)

var nodeTypeNames = [...]string{
	"BaseOverride", "BaseSet", "BaseAdd", "Base", "Increase", "More",
	"PathTotal", "UncappedSubtotal", "Subtotal", "TotalOverride", "Total",
}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) && t >= 0 {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", int8(t))
}

// MainPathOnly reports whether nodes of this type exist only on the main path.
func (t NodeType) MainPathOnly() bool {
	switch t {
	case Total, Subtotal, UncappedSubtotal, TotalOverride:
		return true
	}
	return false
}

// Form is how a modifier combines into its stat.
type Form int8

const (
	FormBaseOverride Form = iota
	FormBaseSet
	FormBaseAdd
	FormIncrease
	FormMore
	FormTotalOverride
)

var formNames = [...]string{"BaseOverride", "BaseSet", "BaseAdd", "Increase", "More", "TotalOverride"}

func (f Form) String() string {
	if int(f) < len(formNames) && f >= 0 {
		return formNames[f]
	}
	return fmt.Sprintf("Form(%d)", int8(f))
}

// ParseForm resolves a form by its name, case-insensitively.
func ParseForm(name string) (Form, bool) {
	for i, n := range formNames {
		if strings.EqualFold(n, name) {
			return Form(i), true
		}
	}
	return 0, false
}

// Forms lists every form in declaration order.
func Forms() []Form {
	return []Form{FormBaseOverride, FormBaseSet, FormBaseAdd, FormIncrease, FormMore, FormTotalOverride}
}

// MainPathOnly reports whether modifiers of this form apply only on the main path.
func (f Form) MainPathOnly() bool {
	return f == FormTotalOverride
}

// NodeType returns the stage that aggregates modifiers of this form.
func (f Form) NodeType() NodeType {
	switch f {
	case FormBaseOverride:
		return BaseOverride
	case FormBaseSet:
		return BaseSet
	case FormBaseAdd:
		return BaseAdd
	case FormIncrease:
		return Increase
	case FormMore:
		return More
	default:
		return TotalOverride
	}
}

// FormOf returns the form aggregated by a stage, if the stage is a form stage.
func FormOf(t NodeType) (Form, bool) {
	switch t {
	case BaseOverride:
		return FormBaseOverride, true
	case BaseSet:
		return FormBaseSet, true
	case BaseAdd:
		return FormBaseAdd, true
	case Increase:
		return FormIncrease, true
	case More:
		return FormMore, true
	case TotalOverride:
		return FormTotalOverride, true
	}
	return 0, false
}

// NodeSelector identifies one node inside a stat graph.
type NodeSelector struct {
	NodeType NodeType
	Path     Path
}

// NewNodeSelector validates the main-path restriction of t.
func NewNodeSelector(t NodeType, p Path) (NodeSelector, error) {
	if t.MainPathOnly() && !p.IsMain() {
		return NodeSelector{}, fmt.Errorf("node type %s on path %s: %w", t, p, ErrMainPathOnly)
	}
	return NodeSelector{NodeType: t, Path: p}, nil
}

// MainSelector returns the selector of t on the main path. It never fails.
func MainSelector(t NodeType) NodeSelector {
	return NodeSelector{NodeType: t, Path: MainPath()}
}

func (s NodeSelector) String() string {
	return s.NodeType.String() + "@" + s.Path.Key()
}

// FormSelector identifies one form collection inside a stat graph.
type FormSelector struct {
	Form Form
	Path Path
}

// NewFormSelector validates the main-path restriction of f.
func NewFormSelector(f Form, p Path) (FormSelector, error) {
	if f.MainPathOnly() && !p.IsMain() {
		return FormSelector{}, fmt.Errorf("form %s on path %s: %w", f, p, ErrMainPathOnly)
	}
	return FormSelector{Form: f, Path: p}, nil
}

func (s FormSelector) String() string {
	return s.Form.String() + "@" + s.Path.Key()
}
