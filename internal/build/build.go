// Package build loads character builds from YAML: the stats a build declares
// and the modifiers it applies, already in structured form.
package build

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/statcalc/internal/pipeline"
	"github.com/udisondev/statcalc/internal/stat"
)

var (
	// ErrUnknownStat is returned when a range reference names an undeclared stat.
	ErrUnknownStat = errors.New("build: unknown stat")
	// ErrUnknownForm is returned for a modifier form that does not exist.
	ErrUnknownForm = errors.New("build: unknown form")
	// ErrUnknownSource is returned for a source kind that does not exist.
	ErrUnknownSource = errors.New("build: unknown source kind")
	// ErrUnknownEntity is returned for an entity that does not exist.
	ErrUnknownEntity = errors.New("build: unknown entity")
	// ErrInvalidModifier is returned for a structurally incomplete modifier.
	ErrInvalidModifier = errors.New("build: invalid modifier")
)

// File is the YAML layout of a build file.
type File struct {
	Name      string           `yaml:"name"`
	Stats     []StatRecord     `yaml:"stats"`
	Modifiers []ModifierRecord `yaml:"modifiers"`
}

// StatRecord declares a stat.
type StatRecord struct {
	ID       string `yaml:"id"`
	Entity   string `yaml:"entity"`
	Explicit bool   `yaml:"explicit"`
	Minimum  string `yaml:"minimum"` // id of the stat bounding the subtotal from below
	Maximum  string `yaml:"maximum"`

	// Entities whose Increase and More modifiers to the same id also apply.
	Influencers []string `yaml:"influencers"`
}

// ModifierRecord declares a modifier. Value alone is a constant; with Per it
// is the amount granted per Every points of the Per stat; Condition makes it
// apply only while that stat's Total is positive.
type ModifierRecord struct {
	Stats       []string     `yaml:"stats"`
	Form        string       `yaml:"form"`
	Value       *float64     `yaml:"value"`
	Max         *float64     `yaml:"max"`
	Per         *PerRecord   `yaml:"per"`
	Condition   string       `yaml:"condition"`
	Source      SourceRecord `yaml:"source"`
	Conversions []string     `yaml:"conversions"`
}

// PerRecord is the "per stat" part of a modifier.
type PerRecord struct {
	Stat  string  `yaml:"stat"`
	Every float64 `yaml:"every"`
}

// SourceRecord is where a modifier comes from. Empty means global.
type SourceRecord struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

// Build is a loaded build.
type Build struct {
	Name      string
	Modifiers []*stat.Modifier

	stats  []*stat.Stat
	byID   map[string]*stat.Stat
	entity stat.Entity
}

// Stats returns the stats of the build in declaration order, followed by
// stats only referenced by modifiers.
func (b *Build) Stats() []*stat.Stat {
	return b.stats
}

// Stat returns the stat with the given id.
func (b *Build) Stat(id string) (*stat.Stat, bool) {
	s, ok := b.byID[id]
	return s, ok
}

// Explicit returns the stats declared explicit.
func (b *Build) Explicit() []*stat.Stat {
	var out []*stat.Stat
	for _, s := range b.stats {
		if s.Explicit {
			out = append(out, s)
		}
	}
	return out
}

// Load reads and parses a build file. Stats without an entity get entity.
func Load(path string, entity stat.Entity) (*Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build %s: %w", path, err)
	}
	b, err := Parse(data, entity)
	if err != nil {
		return nil, fmt.Errorf("loading build %s: %w", path, err)
	}
	slog.Info("loaded build", "path", path, "name", b.Name, "stats", len(b.stats), "modifiers", len(b.Modifiers))
	return b, nil
}

// Parse parses a build from YAML.
func Parse(data []byte, entity stat.Entity) (*Build, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing build: %w", err)
	}
	return FromFile(f, entity)
}

// FromFile resolves the records of f into stats and modifiers.
func FromFile(f File, entity stat.Entity) (*Build, error) {
	b := &Build{
		Name:   f.Name,
		byID:   make(map[string]*stat.Stat),
		entity: entity,
	}

	// Declare first, then link ranges, so declaration order does not matter.
	for i, r := range f.Stats {
		if r.ID == "" {
			return nil, fmt.Errorf("stat %d: missing id", i)
		}
		e := entity
		if r.Entity != "" {
			var ok bool
			if e, ok = stat.ParseEntity(r.Entity); !ok {
				return nil, fmt.Errorf("stat %s: %w: %q", r.ID, ErrUnknownEntity, r.Entity)
			}
		}
		s := &stat.Stat{Identity: r.ID, Entity: e, Explicit: r.Explicit}
		for _, name := range r.Influencers {
			inf, ok := stat.ParseEntity(name)
			if !ok {
				return nil, fmt.Errorf("stat %s influencer: %w: %q", r.ID, ErrUnknownEntity, name)
			}
			s.Influencers = append(s.Influencers, inf)
		}
		b.add(s)
	}
	for _, r := range f.Stats {
		s := b.byID[r.ID]
		var err error
		if s.Minimum, err = b.declared(r.Minimum); err != nil {
			return nil, fmt.Errorf("stat %s minimum: %w", r.ID, err)
		}
		if s.Maximum, err = b.declared(r.Maximum); err != nil {
			return nil, fmt.Errorf("stat %s maximum: %w", r.ID, err)
		}
	}

	for i, r := range f.Modifiers {
		m, err := b.modifier(r)
		if err != nil {
			return nil, fmt.Errorf("modifier %d: %w", i, err)
		}
		b.Modifiers = append(b.Modifiers, m)
	}
	return b, nil
}

func (b *Build) add(s *stat.Stat) {
	b.stats = append(b.stats, s)
	b.byID[s.Identity] = s
}

// declared resolves a range reference; empty means none.
func (b *Build) declared(id string) (*stat.Stat, error) {
	if id == "" {
		return nil, nil
	}
	s, ok := b.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStat, id)
	}
	return s, nil
}

// ref resolves a stat referenced by a modifier, declaring it if needed.
func (b *Build) ref(id string) *stat.Stat {
	if s, ok := b.byID[id]; ok {
		return s
	}
	s := &stat.Stat{Identity: id, Entity: b.entity}
	b.add(s)
	return s
}

func (b *Build) modifier(r ModifierRecord) (*stat.Modifier, error) {
	if len(r.Stats) == 0 {
		return nil, fmt.Errorf("%w: no target stats", ErrInvalidModifier)
	}
	form, ok := stat.ParseForm(r.Form)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownForm, r.Form)
	}

	src := stat.Global
	if r.Source.Kind != "" {
		kind, ok := stat.ParseSourceKind(r.Source.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSource, r.Source.Kind)
		}
		src = stat.Source{Kind: kind, Name: r.Source.Name}
	}

	value, err := b.value(r)
	if err != nil {
		return nil, err
	}

	targets := make([]*stat.Stat, len(r.Stats))
	for i, id := range r.Stats {
		targets[i] = b.ref(id)
	}
	m := stat.NewModifier(form, value, src, targets...)
	for _, id := range r.Conversions {
		m.Path = m.Path.Convert(b.ref(id))
	}
	if _, err := stat.NewFormSelector(form, m.Path); err != nil {
		return nil, err
	}
	return m, nil
}

func (b *Build) value(r ModifierRecord) (stat.Value, error) {
	var v stat.Value
	switch {
	case r.Per != nil:
		if r.Per.Stat == "" {
			return nil, fmt.Errorf("%w: per without stat", ErrInvalidModifier)
		}
		amount := 1.0
		if r.Value != nil {
			amount = *r.Value
		}
		v = pipeline.PerStat{Amount: amount, Stat: b.ref(r.Per.Stat), Every: r.Per.Every}
	case r.Value != nil:
		hi := *r.Value
		if r.Max != nil {
			hi = *r.Max
		}
		v = stat.NewConstantValue(stat.NewRange(*r.Value, hi))
	default:
		return nil, fmt.Errorf("%w: missing value", ErrInvalidModifier)
	}
	if r.Condition != "" {
		v = pipeline.Conditional{Condition: b.ref(r.Condition), Then: v}
	}
	return v, nil
}
