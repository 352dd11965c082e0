package stat

import (
	"fmt"
	"strings"
)

// SourceKind is the origin category of a modifier.
type SourceKind int8

const (
	SourceGlobal SourceKind = iota
	SourceGiven
	SourceItem
	SourceSkill
	SourceTree
	SourceUser
)

var sourceKindNames = [...]string{"Global", "Given", "Item", "Skill", "Tree", "User"}

func (k SourceKind) String() string {
	if int(k) < len(sourceKindNames) && k >= 0 {
		return sourceKindNames[k]
	}
	return fmt.Sprintf("SourceKind(%d)", int8(k))
}

// ParseSourceKind resolves a source kind by its name.
func ParseSourceKind(name string) (SourceKind, bool) {
	for i, n := range sourceKindNames {
		if strings.EqualFold(n, name) {
			return SourceKind(i), true
		}
	}
	return 0, false
}

// Source is where a modifier comes from. Local sources (an item, a skill)
// get their own application path.
type Source struct {
	Kind SourceKind
	Name string
}

// Global is the source of the main path.
var Global = Source{Kind: SourceGlobal}

// Influences returns the sources whose Increase and More modifiers apply to
// what arrives from s: s itself, then Global for local sources.
func (s Source) Influences() []Source {
	if s == Global {
		return []Source{Global}
	}
	return []Source{s, Global}
}

func (s Source) String() string {
	if s.Name == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + ":" + s.Name
}

// Path is one application route of a modifier or stat: the originating
// source and the ordered conversion stats traversed to reach the stat,
// outermost first.
type Path struct {
	Source      Source
	Conversions []*Stat
}

// MainPath returns the single main path: global source, no conversions.
func MainPath() Path {
	return Path{Source: Global}
}

// SourcePath returns the unconverted path of a source.
func SourcePath(src Source) Path {
	return Path{Source: src}
}

// IsMain reports whether p is the main path.
func (p Path) IsMain() bool {
	return p.Source == Global && len(p.Conversions) == 0
}

// IsConversion reports whether p traverses at least one conversion stat.
func (p Path) IsConversion() bool {
	return len(p.Conversions) > 0
}

// Innermost returns the last conversion stat, or nil on unconverted paths.
func (p Path) Innermost() *Stat {
	if len(p.Conversions) == 0 {
		return nil
	}
	return p.Conversions[len(p.Conversions)-1]
}

// Unwind returns p with its innermost conversion stat removed.
func (p Path) Unwind() Path {
	if len(p.Conversions) == 0 {
		return p
	}
	return Path{Source: p.Source, Conversions: p.Conversions[:len(p.Conversions)-1]}
}

// Convert returns p extended by one more conversion stat.
func (p Path) Convert(via *Stat) Path {
	conv := make([]*Stat, 0, len(p.Conversions)+1)
	conv = append(conv, p.Conversions...)
	return Path{Source: p.Source, Conversions: append(conv, via)}
}

// Key returns a comparable identity of the path.
func (p Path) Key() string {
	if len(p.Conversions) == 0 {
		return p.Source.String()
	}
	var b strings.Builder
	b.WriteString(p.Source.String())
	for _, s := range p.Conversions {
		b.WriteString(">")
		b.WriteString(s.Key().String())
	}
	return b.String()
}

func (p Path) String() string {
	return p.Key()
}

// StatPath pairs a stat with one of its paths.
type StatPath struct {
	Stat *Stat
	Path Path
}
