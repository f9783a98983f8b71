package logic

import (
	"slices"

	"github.com/jwebster45206/rando-engine/pkg/world"
)

// ShineChargeAbility is the ability that satisfies canShineCharge.
const ShineChargeAbility = "SpeedBooster"

// Evaluator checks requirements against a fixed ability set and world. The
// only state it mutates is the cleared-obstacle set, and only from strat
// obstacle checks; Check itself reads events and nothing else.
type Evaluator struct {
	world     *world.World
	abilities Abilities
}

func NewEvaluator(w *world.World, abilities Abilities) *Evaluator {
	return &Evaluator{world: w, abilities: abilities}
}

// Check evaluates req against abilities, w and st.
func Check(req world.Requirement, abilities Abilities, w *world.World, st *State) bool {
	return NewEvaluator(w, abilities).Check(req, st)
}

// Check evaluates req. Operands of and/or/not are evaluated in declaration
// order and none are skipped once the outcome is known.
func (e *Evaluator) Check(req world.Requirement, st *State) bool {
	switch req.Kind {
	case world.KindNone:
		return true
	case world.KindRef:
		return e.abilities.Has(req.Name) || st.HasEvent(req.Name)
	case world.KindAnd:
		ok := true
		for _, c := range req.Children {
			if !e.Check(c, st) {
				ok = false
			}
		}
		return ok
	case world.KindOr:
		ok := false
		for _, c := range req.Children {
			if e.Check(c, st) {
				ok = true
			}
		}
		return ok
	case world.KindNot:
		matched := false
		for _, c := range req.Children {
			if e.Check(c, st) {
				matched = true
			}
		}
		return !matched
	case world.KindEnemyKill:
		return e.canKill(req.EnemyKill, st)
	case world.KindCanShineCharge:
		return e.abilities.Has(ShineChargeAbility)
	case world.KindPredicate, world.KindOpaque:
		// No energy, ammo or room-state model is kept, so these always pass.
		return true
	default:
		return false
	}
}

// CanAccess reports whether the node's own interaction requirement passes.
func (e *Evaluator) CanAccess(ref world.NodeRef, st *State) bool {
	return e.Check(e.world.Node(ref).InteractionRequires, st)
}

// CanUnlock reports whether every lock on the node can be opened. A hard lock
// never opens. A lock with no unlock strats opens freely; otherwise one of its
// unlock or bypass strats must be doable.
func (e *Evaluator) CanUnlock(ref world.NodeRef, st *State) bool {
	for _, lock := range e.world.Node(ref).Locks {
		if lock.Lock != nil {
			return false
		}
		if len(lock.UnlockStrats) == 0 {
			continue
		}
		if !e.anyStrat(ref.Region, lock.UnlockStrats, st) && !e.anyStrat(ref.Region, lock.BypassStrats, st) {
			return false
		}
	}
	return true
}

// CanTraverse reports whether any strat of edge is doable. An edge with no
// strats is free.
func (e *Evaluator) CanTraverse(region int, edge world.Edge, st *State) bool {
	if len(edge.Strats) == 0 {
		return true
	}
	return e.anyStrat(region, edge.Strats, st)
}

func (e *Evaluator) anyStrat(region int, strats []world.Strat, st *State) bool {
	ok := false
	for _, s := range strats {
		if e.CanDoStrat(region, s, st) {
			ok = true
		}
	}
	return ok
}

// CanDoStrat reports whether the strat's requirement passes and all of its
// obstacles are cleared or bypassed. Obstacles are only attempted once the
// requirement holds, and each is attempted even after an earlier one fails.
func (e *Evaluator) CanDoStrat(region int, s world.Strat, st *State) bool {
	if !e.Check(s.Requires, st) {
		return false
	}
	ok := true
	for _, o := range s.Obstacles {
		if !e.passObstacle(region, o, st) {
			ok = false
		}
	}
	return ok
}

// passObstacle clears the obstacle when its requirement holds, recording it
// in st so later strats in the region see it cleared. Failing that, a bypass
// lets the strat through without clearing anything. An obstacle the region
// does not declare is never passable.
func (e *Evaluator) passObstacle(region int, o world.Obstacle, st *State) bool {
	decl, ok := e.world.Obstacle(region, o.ID)
	if !ok {
		return false
	}

	key := ObstacleKey{Region: region, ID: o.ID}
	if st.ObstacleCleared(key) {
		return true
	}

	requires := o.Requires
	if requires == nil {
		requires = decl.Requires
	}
	if requires == nil || e.Check(*requires, st) {
		st.ClearObstacle(key)
		return true
	}

	bypass := o.Bypass
	if bypass == nil {
		bypass = decl.Bypass
	}
	return bypass != nil && e.Check(*bypass, st)
}

// canKill reports whether the enemies can be killed: either an explicitly
// named weapon is usable, or some usable non-situational weapon is not
// blocked by any listed enemy's invulnerabilities.
func (e *Evaluator) canKill(kill *world.EnemyKill, st *State) bool {
	if kill == nil {
		return true
	}

	for _, name := range kill.ExplicitWeapons {
		if e.weaponUsable(name, st) {
			return true
		}
	}

	invul := make(map[string]bool)
	for _, group := range kill.Enemies {
		for _, name := range group {
			enemy, ok := e.world.Enemy(name)
			if !ok {
				continue
			}
			for _, v := range enemy.Invul {
				invul[v] = true
			}
		}
	}

	for i := range e.world.Weapons {
		wp := &e.world.Weapons[i]
		if wp.Situational || slices.Contains(kill.ExcludedWeapons, wp.Name) {
			continue
		}
		if !e.Check(wp.UseRequires, st) {
			continue
		}
		if !blocked(wp, invul) {
			return true
		}
	}
	return false
}

func (e *Evaluator) weaponUsable(name string, st *State) bool {
	if wp, ok := e.world.Weapon(name); ok {
		return e.Check(wp.UseRequires, st)
	}
	return e.abilities.Has(name)
}

func blocked(wp *world.Weapon, invul map[string]bool) bool {
	if invul[wp.Name] {
		return true
	}
	for _, c := range wp.Categories {
		if invul[c] {
			return true
		}
	}
	return false
}
