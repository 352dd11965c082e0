package calc

import "github.com/udisondev/statcalc/internal/stat"

// CycleGuard detects reentrant evaluation. The zero value is armed.
type CycleGuard struct {
	held bool
}

// Enter acquires the guard. It fails with stat.ErrCyclicEvaluation while a
// previous acquisition has not been released. The returned release function
// re-arms the guard; calling it more than once is a no-op.
func (g *CycleGuard) Enter() (release func(), err error) {
	if g.held {
		return nil, stat.ErrCyclicEvaluation
	}
	g.held = true
	released := false
	return func() {
		if released {
			return
		}
		released = true
		g.held = false
	}, nil
}

// Held reports whether the guard is currently acquired.
func (g *CycleGuard) Held() bool {
	return g.held
}
