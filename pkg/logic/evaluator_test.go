package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/rando-engine/pkg/world"
)

func combatWorld(t *testing.T) *world.World {
	t.Helper()
	return mustWorld(t, nil, nil, world.Tables{
		Weapons: []world.Weapon{
			{Name: "Power Beam", Categories: []string{"Beam"}},
			{Name: "Missile", UseRequires: world.Ref("Missile"), Categories: []string{"Missile", "Projectile"}},
			{Name: "Grapple", Situational: true, UseRequires: world.Ref("Grapple"), Categories: []string{"Grapple"}},
			{Name: "Super", UseRequires: world.Ref("Super"), Categories: []string{"Super", "Projectile"}},
		},
		Enemies: []world.Enemy{
			{Name: "Zeela"},
			{Name: "Beam Proof", Invul: []string{"Beam"}},
			{Name: "Shell", Invul: []string{"Beam", "Missile"}},
			{Name: "Armored", Invul: []string{"Beam", "Projectile"}},
		},
	})
}

func TestEvaluator_Check(t *testing.T) {
	w := combatWorld(t)
	st := neutralState()
	st.AddEvent("f_DefeatedKraid")
	abilities := NewAbilities("Morph", "Bombs")

	tests := []struct {
		name     string
		req      world.Requirement
		expected bool
	}{
		{"none", world.Requirement{}, true},
		{"held ability", world.Ref("Morph"), true},
		{"missing ability", world.Ref("Varia"), false},
		{"event counts as held", world.Ref("f_DefeatedKraid"), true},
		{"and all held", world.And(world.Ref("Morph"), world.Ref("Bombs")), true},
		{"and one missing", world.And(world.Ref("Morph"), world.Ref("Varia")), false},
		{"empty and", world.And(), true},
		{"or one held", world.Or(world.Ref("Varia"), world.Ref("Bombs")), true},
		{"or none held", world.Or(world.Ref("Varia"), world.Ref("Gravity")), false},
		{"empty or", world.Or(), false},
		{"not of missing", world.Not(world.Ref("Varia")), true},
		{"not of held", world.Not(world.Ref("Varia"), world.Ref("Morph")), false},
		{"shine charge without speed", world.Requirement{Kind: world.KindCanShineCharge}, false},
		{"heat frames placeholder", world.Requirement{Kind: world.KindPredicate, Name: "heatFrames"}, true},
		{"opaque placeholder", world.Requirement{Kind: world.KindOpaque, Name: "shinespark"}, true},
		{"unknown kind", world.Requirement{Kind: world.RequirementKind(99)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Check(tt.req, abilities, w, st))
		})
	}

	assert.True(t, Check(world.Requirement{Kind: world.KindCanShineCharge}, NewAbilities(ShineChargeAbility), w, st))
}

func TestEvaluator_EnemyKill(t *testing.T) {
	w := combatWorld(t)
	kill := func(explicit []string, enemies ...string) world.Requirement {
		return world.Requirement{
			Kind:      world.KindEnemyKill,
			EnemyKill: &world.EnemyKill{Enemies: [][]string{enemies}, ExplicitWeapons: explicit},
		}
	}

	tests := []struct {
		name      string
		req       world.Requirement
		abilities []string
		expected  bool
	}{
		{"beam kills unarmored", kill(nil, "Zeela"), nil, true},
		{"beam blocked, nothing else", kill(nil, "Beam Proof"), nil, false},
		{"missile gets through beam proof", kill(nil, "Beam Proof"), []string{"Missile"}, true},
		{"shell blocks beam and missile", kill(nil, "Shell"), []string{"Missile"}, false},
		{"super gets through shell", kill(nil, "Shell"), []string{"Super"}, true},
		{"category blocks super", kill(nil, "Armored"), []string{"Missile", "Super"}, false},
		{"invulnerabilities union across enemies", kill(nil, "Beam Proof", "Shell"), []string{"Missile"}, false},
		{"situational weapon ignored", kill(nil, "Armored"), []string{"Grapple"}, false},
		{"explicit weapon usable", kill([]string{"Grapple"}, "Armored"), []string{"Grapple"}, true},
		{"explicit weapon not usable", kill([]string{"Grapple"}, "Armored"), nil, false},
		{"explicit undefined weapon held", kill([]string{"ScrewAttack"}, "Armored"), []string{"ScrewAttack"}, true},
		{"unknown enemy has no invulnerabilities", kill(nil, "Nobody"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Check(tt.req, NewAbilities(tt.abilities...), w, neutralState()))
		})
	}

	excluded := world.Requirement{
		Kind:      world.KindEnemyKill,
		EnemyKill: &world.EnemyKill{Enemies: [][]string{{"Zeela"}}, ExcludedWeapons: []string{"Power Beam"}},
	}
	assert.False(t, Check(excluded, NewAbilities(), w, neutralState()))
}

func obstacleRegion() world.Region {
	return world.Region{
		ID: 1, Name: "Green Brinstar Main Shaft",
		Nodes: []world.Node{
			{ID: 1, Name: "Top", Type: world.NodeJunction},
			{ID: 2, Name: "Middle", Type: world.NodeJunction},
			{ID: 3, Name: "Bottom", Type: world.NodeJunction},
		},
		Obstacles: []world.Obstacle{
			{ID: "A", Name: "Bomb Blocks"},
			{ID: "B", Name: "Gate", Bypass: reqPtr(world.Ref("canGateGlitch"))},
		},
	}
}

func TestEvaluator_ObstacleReuse(t *testing.T) {
	w := mustWorld(t, []world.Region{obstacleRegion()}, nil, world.Tables{})
	e := NewEvaluator(w, NewAbilities("Bombs"))
	st := neutralState()

	clearing := world.Strat{Name: "Bomb Through", Obstacles: []world.Obstacle{{ID: "A", Requires: reqPtr(world.Ref("Bombs"))}}}
	later := world.Strat{Name: "Walk Through", Obstacles: []world.Obstacle{{ID: "A", Requires: reqPtr(world.Ref("ScrewAttack"))}}}

	assert.False(t, e.CanDoStrat(0, later, st), "not yet cleared and ScrewAttack missing")
	assert.True(t, e.CanDoStrat(0, clearing, st))
	assert.True(t, st.ObstacleCleared(ObstacleKey{Region: 0, ID: "A"}))
	assert.True(t, e.CanDoStrat(0, later, st), "cleared obstacle is not re-evaluated")
}

func TestEvaluator_ObstacleBypassDoesNotClear(t *testing.T) {
	w := mustWorld(t, []world.Region{obstacleRegion()}, nil, world.Tables{})
	st := neutralState()

	strat := world.Strat{Name: "Gate", Obstacles: []world.Obstacle{{ID: "B", Requires: reqPtr(world.Ref("Super"))}}}

	assert.False(t, NewEvaluator(w, NewAbilities()).CanDoStrat(0, strat, st))
	assert.True(t, NewEvaluator(w, NewAbilities("canGateGlitch")).CanDoStrat(0, strat, st), "declared bypass applies")
	assert.False(t, st.ObstacleCleared(ObstacleKey{Region: 0, ID: "B"}))
}

func TestEvaluator_StratObstacles(t *testing.T) {
	w := mustWorld(t, []world.Region{obstacleRegion()}, nil, world.Tables{})

	tests := []struct {
		name      string
		strat     world.Strat
		abilities []string
		expected  bool
		cleared   []string
	}{
		{
			name:     "no obstacles",
			strat:    world.Strat{Requires: world.Ref("Morph")},
			expected: false,
		},
		{
			name:     "obstacle without requirement clears",
			strat:    world.Strat{Obstacles: []world.Obstacle{{ID: "A"}}},
			expected: true,
			cleared:  []string{"A"},
		},
		{
			name: "all obstacles must pass",
			strat: world.Strat{Obstacles: []world.Obstacle{
				{ID: "A", Requires: reqPtr(world.Ref("Bombs"))},
				{ID: "B", Requires: reqPtr(world.Ref("Super"))},
			}},
			abilities: []string{"Bombs"},
			expected:  false,
			cleared:   []string{"A"},
		},
		{
			name: "later obstacles still attempted after a failure",
			strat: world.Strat{Obstacles: []world.Obstacle{
				{ID: "B", Requires: reqPtr(world.Ref("Super"))},
				{ID: "A", Requires: reqPtr(world.Ref("Bombs"))},
			}},
			abilities: []string{"Bombs"},
			expected:  false,
			cleared:   []string{"A"},
		},
		{
			name:      "requirement failure skips obstacles",
			strat:     world.Strat{Requires: world.Ref("Morph"), Obstacles: []world.Obstacle{{ID: "A"}}},
			abilities: []string{"Bombs"},
			expected:  false,
		},
		{
			name:     "undeclared obstacle never passes",
			strat:    world.Strat{Obstacles: []world.Obstacle{{ID: "Q"}}},
			expected: false,
		},
		{
			name:      "strat bypass",
			strat:     world.Strat{Obstacles: []world.Obstacle{{ID: "A", Requires: reqPtr(world.Ref("Bombs")), Bypass: reqPtr(world.Ref("SpaceJump"))}}},
			abilities: []string{"SpaceJump"},
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := neutralState()
			got := NewEvaluator(w, NewAbilities(tt.abilities...)).CanDoStrat(0, tt.strat, st)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, len(tt.cleared), st.ClearedCount())
			for _, id := range tt.cleared {
				assert.True(t, st.ObstacleCleared(ObstacleKey{Region: 0, ID: id}), "obstacle %s", id)
			}
		})
	}
}

func TestEvaluator_Locks(t *testing.T) {
	hard := world.Ref("Morph")
	region := world.Region{
		ID: 1, Name: "Locks",
		Nodes: []world.Node{
			{ID: 1, Name: "Open", Type: world.NodeItem},
			{ID: 2, Name: "Hard", Type: world.NodeItem, Locks: []world.Lock{{Lock: &hard}}},
			{ID: 3, Name: "Unlock", Type: world.NodeItem, Locks: []world.Lock{{
				UnlockStrats: []world.Strat{{Name: "Shoot", Requires: world.Ref("Super")}},
				BypassStrats: []world.Strat{{Name: "Skip", Requires: world.Ref("SpaceJump")}},
			}}},
			{ID: 4, Name: "No Strats", Type: world.NodeItem, Locks: []world.Lock{{Name: "Gray Door"}}},
			{ID: 5, Name: "Two Locks", Type: world.NodeItem, Locks: []world.Lock{
				{UnlockStrats: []world.Strat{{Requires: world.Ref("Super")}}},
				{UnlockStrats: []world.Strat{{Requires: world.Ref("PowerBomb")}}},
			}},
		},
	}
	w := mustWorld(t, []world.Region{region}, nil, world.Tables{})

	tests := []struct {
		node      int
		abilities []string
		expected  bool
	}{
		{0, nil, true},
		{1, []string{"Morph"}, false},
		{2, nil, false},
		{2, []string{"Super"}, true},
		{2, []string{"SpaceJump"}, true},
		{3, nil, true},
		{4, []string{"Super"}, false},
		{4, []string{"Super", "PowerBomb"}, true},
	}

	for _, tt := range tests {
		ref := world.NodeRef{Region: 0, Node: tt.node}
		got := NewEvaluator(w, NewAbilities(tt.abilities...)).CanUnlock(ref, neutralState())
		assert.Equal(t, tt.expected, got, "%s with %v", w.Node(ref).Name, tt.abilities)
	}
}
