package logic

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/jwebster45206/rando-engine/pkg/world"
)

// Abilities is the set of held items, resolved helper flags and resolved techs.
type Abilities struct {
	set mapset.Set[string]
}

// NewAbilities returns a set containing names.
func NewAbilities(names ...string) Abilities {
	a := Abilities{set: mapset.New[string]()}
	for _, n := range names {
		a.set.Put(n)
	}
	return a
}

// Has reports whether name is held. The zero Abilities holds nothing.
func (a Abilities) Has(name string) bool { return a.set.Has(name) }

func (a Abilities) Len() int { return a.set.Size() }

// Names returns the abilities, sorted.
func (a Abilities) Names() []string { return sortedKeys(a.set) }

func (a Abilities) union(other Abilities) Abilities {
	out := NewAbilities()
	a.each(out.set.Put)
	other.each(out.set.Put)
	return out
}

func (a Abilities) each(fn func(string)) { a.set.Each(fn) }

// ResolveAbilitySet derives the helper and tech flags implied by the raw items
// and returns items ∪ helpers ∪ (resolved techs ∩ techs). Helpers and techs
// are each resolved to a fixed point so declaration order does not matter;
// techs may depend on helpers but not the other way round.
func ResolveAbilitySet(items, techs []string, w *world.World) Abilities {
	held := NewAbilities(items...)
	helpers := resolveClosure(w, w.Helpers, held)
	resolvedTechs := resolveClosure(w, w.Techs, held.union(helpers))

	out := held.union(helpers)
	for _, t := range techs {
		if resolvedTechs.Has(t) {
			out.set.Put(t)
		}
	}
	return out
}

// resolveClosure sweeps defs until no new name is added. Each definition is
// checked against base plus everything resolved so far.
func resolveClosure(w *world.World, defs []world.Helper, base Abilities) Abilities {
	resolved := NewAbilities()
	pool := base.union(resolved)
	st := neutralState()

	for {
		before := resolved.Len()
		for _, def := range defs {
			if resolved.Has(def.Name) {
				continue
			}
			if def.Requires == nil || Check(*def.Requires, pool, w, st) {
				resolved.set.Put(def.Name)
				pool.set.Put(def.Name)
			}
		}
		if resolved.Len() == before {
			return resolved
		}
	}
}
