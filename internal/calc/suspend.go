package calc

import "slices"

// SuspenderGroup suspends and resumes many members at once. Members added
// while the group is suspended are suspended right away.
type SuspenderGroup struct {
	members   []Suspendable
	suspended bool
}

// Add registers s.
func (g *SuspenderGroup) Add(s Suspendable) {
	g.members = append(g.members, s)
	if g.suspended {
		s.Suspend()
	}
}

// Remove unregisters s. A removed member is not resumed by the group.
func (g *SuspenderGroup) Remove(s Suspendable) {
	if i := slices.Index(g.members, s); i >= 0 {
		g.members = slices.Delete(g.members, i, i+1)
	}
}

// Len returns the number of members.
func (g *SuspenderGroup) Len() int {
	return len(g.members)
}

// Suspended reports whether the group is suspended.
func (g *SuspenderGroup) Suspended() bool {
	return g.suspended
}

// Suspend suspends every member. Nested calls are ignored.
func (g *SuspenderGroup) Suspend() {
	if g.suspended {
		return
	}
	g.suspended = true
	for _, m := range g.members {
		m.Suspend()
	}
}

// Resume resumes every member in registration order.
func (g *SuspenderGroup) Resume() {
	if !g.suspended {
		return
	}
	g.suspended = false
	for _, m := range slices.Clone(g.members) {
		m.Resume()
	}
}
