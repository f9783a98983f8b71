package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/rando-engine/pkg/logic"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

func TestQuery_Key(t *testing.T) {
	base := Query{World: "sm", Abilities: []string{"Morph", "Bombs"}, RegionID: 8, NodeID: 5}

	tests := []struct {
		name  string
		other Query
		same  bool
	}{
		{"identical", base, true},
		{"ability order", Query{World: "sm", Abilities: []string{"Bombs", "Morph"}, RegionID: 8, NodeID: 5}, true},
		{"duplicate ability", Query{World: "sm", Abilities: []string{"Bombs", "Morph", "Bombs"}, RegionID: 8, NodeID: 5}, true},
		{"other world", Query{World: "z3", Abilities: []string{"Morph", "Bombs"}, RegionID: 8, NodeID: 5}, false},
		{"other origin", Query{World: "sm", Abilities: []string{"Morph", "Bombs"}, RegionID: 8, NodeID: 1}, false},
		{"other abilities", Query{World: "sm", Abilities: []string{"Morph"}, RegionID: 8, NodeID: 5}, false},
		{"joined names differ", Query{World: "sm", Abilities: []string{"MorphBombs"}, RegionID: 8, NodeID: 5}, false},
		{"pass budget", Query{World: "sm", Abilities: []string{"Morph", "Bombs"}, RegionID: 8, NodeID: 5, MaxPasses: 3}, false},
		{"edited world", Query{World: "sm", Revision: 0x2a, Abilities: []string{"Morph", "Bombs"}, RegionID: 8, NodeID: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.same, base.Key() == tt.other.Key())
		})
	}

	assert.True(t, strings.HasPrefix(base.Key(), "result:sm:"))
	assert.Equal(t, []string{"Morph", "Bombs"}, base.Abilities, "key must not reorder the caller's slice")
}

func TestMockStorage_Results(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()
	q := Query{World: "sm", Abilities: []string{"Morph"}, RegionID: 8, NodeID: 5}

	rec, err := m.LoadResult(ctx, q)
	require.NoError(t, err)
	assert.Nil(t, rec)

	res := &logic.Result{Locations: []world.Location{{Name: "Morphing Ball", RegionID: 9, NodeID: 2}}, Passes: 1}
	require.NoError(t, m.SaveResult(ctx, q, NewResultRecord(q, res)))
	assert.Error(t, m.SaveResult(ctx, q, nil))

	rec, err = m.LoadResult(ctx, q)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, res.Locations, rec.Result.Locations)
	assert.Equal(t, "sm", rec.World)
	assert.Equal(t, 1, m.Saves())
}

func TestMockStorage_Worlds(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	w, err := world.New("sm", nil, nil, world.Tables{})
	require.NoError(t, err)
	m.AddWorld("sm", w)

	got, err := m.GetWorld(ctx, "sm")
	require.NoError(t, err)
	assert.Same(t, w, got)

	_, err = m.GetWorld(ctx, "z3")
	assert.True(t, errors.Is(err, world.ErrNotFound))

	names, err := m.ListWorlds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sm"}, names)
}
