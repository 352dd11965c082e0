package stat

import "fmt"

// Entity is the game entity a stat belongs to.
type Entity int8

const (
	EntityCharacter Entity = iota
	EntityEnemy
	EntityTotem
	EntityMinion
)

var entityNames = [...]string{"Character", "Enemy", "Totem", "Minion"}

func (e Entity) String() string {
	if int(e) < len(entityNames) && e >= 0 {
		return entityNames[e]
	}
	return fmt.Sprintf("Entity(%d)", int8(e))
}

// ParseEntity resolves an entity by its name.
func ParseEntity(name string) (Entity, bool) {
	for i, n := range entityNames {
		if n == name {
			return Entity(i), true
		}
	}
	return 0, false
}

// Key identifies a stat. Two stats with the same key are the same stat.
type Key struct {
	Identity string
	Entity   Entity
}

func (k Key) String() string {
	return k.Entity.String() + "." + k.Identity
}

// Stat is a named, entity-scoped quantity.
//
// Minimum and Maximum optionally reference stats whose Totals bound this
// stat's Subtotal. Explicit marks stats whose value is entered by the user
// and which are queried directly (see graph.ExplicitRegistry).
//
// Influencers lists other entities whose Increase and More modifiers to the
// same identity also apply, as a character's modifiers to totem life do.
type Stat struct {
	Identity    string
	Entity      Entity
	Explicit    bool
	Minimum     *Stat
	Maximum     *Stat
	Influencers []Entity
}

// New creates a character stat without range references.
func New(identity string) *Stat {
	return &Stat{Identity: identity, Entity: EntityCharacter}
}

// Key returns the identity key used for equality and map lookups.
func (s *Stat) Key() Key {
	return Key{Identity: s.Identity, Entity: s.Entity}
}

func (s *Stat) String() string {
	return s.Key().String()
}

// Influencing returns s followed by the same identity on every influencing
// entity.
func (s *Stat) Influencing() []*Stat {
	out := make([]*Stat, 0, 1+len(s.Influencers))
	out = append(out, s)
	for _, e := range s.Influencers {
		if e == s.Entity {
			continue
		}
		out = append(out, &Stat{Identity: s.Identity, Entity: e})
	}
	return out
}

// Same reports whether a and b denote the same stat.
func Same(a, b *Stat) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key() == b.Key()
}
