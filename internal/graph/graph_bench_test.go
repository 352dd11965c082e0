package graph

import (
	"fmt"
	"testing"

	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/pipeline"
	"github.com/udisondev/statcalc/internal/stat"
)

// benchCalculator builds a calculator over the given number of stats, every
// second one reading Strength, and evaluates every Total once.
func benchCalculator(b *testing.B, stats int) (*Calculator, []*stat.Stat) {
	b.Helper()
	cfg := config.DefaultCalculator()
	cfg.PruneAfterUpdate = false
	c := NewCalculator(cfg)
	b.Cleanup(c.Close)

	str := stat.New("Strength")
	ss := make([]*stat.Stat, stats)
	var mods []*stat.Modifier
	for i := range ss {
		ss[i] = stat.New(fmt.Sprintf("Stat%d", i))
		mods = append(mods, mod(stat.FormBaseSet, float64(i+1), ss[i]), mod(stat.FormIncrease, 10, ss[i]))
		if i%2 == 0 {
			mods = append(mods, stat.NewModifier(stat.FormBaseAdd, pipeline.PerStat{Amount: 1, Stat: str, Every: 5}, stat.Global, ss[i]))
		}
	}
	mods = append(mods, mod(stat.FormBaseSet, 100, str))
	if err := c.Update(Update{Added: mods}); err != nil {
		b.Fatal(err)
	}
	for _, s := range ss {
		if _, err := c.Total(s); err != nil {
			b.Fatal(err)
		}
	}
	return c, ss
}

// BenchmarkTotal_Cached measures reads of an unchanged Total.
func BenchmarkTotal_Cached(b *testing.B) {
	c, ss := benchCalculator(b, 64)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.Total(ss[i%len(ss)]); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkUpdate_SharedDependency changes a stat half of the graph reads and
// recomputes every Total.
func BenchmarkUpdate_SharedDependency(b *testing.B) {
	c, ss := benchCalculator(b, 64)
	str := stat.New("Strength")
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m := mod(stat.FormBaseAdd, 5, str)
		if err := c.Update(Update{Added: []*stat.Modifier{m}}); err != nil {
			b.Fatal(err)
		}
		for _, s := range ss {
			if _, err := c.Total(s); err != nil {
				b.Fatal(err)
			}
		}
		if err := c.Update(Update{Removed: []*stat.Modifier{m}}); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkUpdate_Prune adds and removes a modifier of a fresh stat and
// prunes it again.
func BenchmarkUpdate_Prune(b *testing.B) {
	c, _ := benchCalculator(b, 16)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s := stat.New("Transient")
		m := mod(stat.FormBaseSet, 1, s)
		if err := c.Update(Update{Added: []*stat.Modifier{m}}); err != nil {
			b.Fatal(err)
		}
		if _, err := c.Total(s); err != nil {
			b.Fatal(err)
		}
		if err := c.Update(Update{Removed: []*stat.Modifier{m}}); err != nil {
			b.Fatal(err)
		}
		c.Prune()
	}
}
