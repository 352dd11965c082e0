package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/udisondev/statcalc/internal/build"
	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/graph"
	"github.com/udisondev/statcalc/internal/stat"
)

// Line is one evaluated stat.
type Line struct {
	Stat     string
	Value    *stat.NodeValue
	Err      error
	Explicit bool
}

// Report is the evaluation of one build file.
type Report struct {
	Name      string
	Path      string
	Modifiers int
	Lines     []Line
}

// Evaluate loads the build at path into a fresh calculator and reads the
// requested stats and every explicit stat of the build.
func Evaluate(cfg config.Calculator, entity stat.Entity, path string) (*Report, error) {
	b, err := build.Load(path, entity)
	if err != nil {
		return nil, err
	}

	c := graph.NewCalculator(cfg)
	defer c.Close()
	if err := c.Update(graph.Update{Added: b.Modifiers}); err != nil {
		return nil, fmt.Errorf("evaluating build %s: %w", path, err)
	}

	r := &Report{Name: b.Name, Path: path, Modifiers: c.ModifierCount()}
	for _, id := range cfg.RequestedStats {
		s, ok := b.Stat(id)
		if !ok {
			s = &stat.Stat{Identity: id, Entity: entity}
		}
		v, err := c.Total(s)
		r.Lines = append(r.Lines, Line{Stat: id, Value: v, Err: err})
	}
	for _, s := range b.Explicit() {
		if slices.Contains(cfg.RequestedStats, s.Identity) {
			continue
		}
		v, err := c.Explicit().Endpoint(s).Value()
		r.Lines = append(r.Lines, Line{Stat: s.Identity, Value: v, Err: err, Explicit: true})
	}
	pr := c.Prune()
	slog.Debug("build evaluated", "path", path, "pruned_nodes", pr.Nodes, "pruned_stats", pr.Stats)
	return r, nil
}

// Write prints the report in a human-readable form.
func (r *Report) Write(w io.Writer) error {
	name := r.Name
	if name == "" {
		name = r.Path
	}
	if _, err := fmt.Fprintf(w, "%s (%d modifiers)\n", name, r.Modifiers); err != nil {
		return err
	}
	for _, l := range r.Lines {
		var val string
		switch {
		case l.Err != nil:
			val = "error: " + l.Err.Error()
		case l.Value == nil:
			val = "-"
		default:
			val = l.Value.String()
		}
		mark := ""
		if l.Explicit {
			mark = " *"
		}
		if _, err := fmt.Fprintf(w, "  %-24s %s%s\n", l.Stat, val, mark); err != nil {
			return err
		}
	}
	return nil
}
