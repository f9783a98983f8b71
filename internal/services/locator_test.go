package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/rando-engine/pkg/logic"
	"github.com/jwebster45206/rando-engine/pkg/storage"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

func testStorage(t *testing.T) *storage.MockStorage {
	t.Helper()
	regions := []world.Region{{
		ID: 8, Name: "Landing Site",
		Nodes: []world.Node{
			{ID: 1, Name: "Ship", Type: world.NodeJunction},
			{ID: 2, Name: "Gauntlet Item", Type: world.NodeItem, Item: "EnergyTank"},
			{ID: 3, Name: "Ledge Item", Type: world.NodeItem, Item: "Missile", InteractionRequires: world.Ref("SpaceJump")},
		},
		Links: []world.Link{
			{From: 1, To: []world.LinkTo{{ID: 2}, {ID: 3}}},
			{From: 2, To: []world.LinkTo{{ID: 1}}},
			{From: 3, To: []world.LinkTo{{ID: 1}}},
		},
	}}
	w, err := world.New("sm", regions, nil, world.Tables{})
	require.NoError(t, err)

	m := storage.NewMockStorage()
	m.AddWorld("sm", w)
	return m
}

func TestLocator_Locate(t *testing.T) {
	m := testStorage(t)
	l := NewLocator(m, 0, time.Second)
	ctx := context.Background()

	first, err := l.Locate(ctx, LocateRequest{World: "sm", Start: "Ship"}, nil)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, world.Location{Name: "Ship", RegionID: 8, NodeID: 1}, first.Origin)
	assert.Equal(t, []world.Location{{Name: "Gauntlet Item", RegionID: 8, NodeID: 2}}, first.Record.Result.Locations)
	assert.Equal(t, 1, m.Saves())

	region, node := 8, 1
	second, err := l.Locate(ctx, LocateRequest{World: "sm", RegionID: &region, NodeID: &node}, nil)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, 1, m.Saves())

	jumper, err := l.Locate(ctx, LocateRequest{World: "sm", Items: []string{"SpaceJump"}, Start: "Ship"}, nil)
	require.NoError(t, err)
	assert.False(t, jumper.Cached)
	assert.Len(t, jumper.Record.Result.Locations, 2)
	assert.True(t, jumper.Abilities.Has("SpaceJump"))
}

func TestLocator_Errors(t *testing.T) {
	l := NewLocator(testStorage(t), 0, time.Second)
	ctx := context.Background()

	tests := []struct {
		name string
		req  LocateRequest
		err  error
	}{
		{"unknown world", LocateRequest{World: "z3", Start: "Ship"}, world.ErrNotFound},
		{"unknown start", LocateRequest{World: "sm", Start: "Shipp"}, world.ErrNotFound},
		{"no origin", LocateRequest{World: "sm"}, world.ErrNoOrigin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Locate(ctx, tt.req, nil)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := l.Locate(cancelled, LocateRequest{World: "sm", Start: "Ship"}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLocator_PassBudget(t *testing.T) {
	m := testStorage(t)

	// The prize opens only after the tank's event, so convergence takes two passes.
	gated := world.Region{
		ID: 1, Name: "Gated",
		Nodes: []world.Node{
			{ID: 1, Name: "Tank", Type: world.NodeItem, Item: "EnergyTank", Yields: []string{"f_GotTank"}},
			{ID: 2, Name: "Prize", Type: world.NodeItem, Item: "Missile", InteractionRequires: world.Ref("f_GotTank")},
		},
		Links: []world.Link{
			{From: 1, To: []world.LinkTo{{ID: 2}}},
			{From: 2, To: []world.LinkTo{{ID: 1}}},
		},
	}
	bw, err := world.New("gated", []world.Region{gated}, nil, world.Tables{})
	require.NoError(t, err)
	m.AddWorld("gated", bw)

	_, err = NewLocator(m, 1, time.Second).Locate(context.Background(), LocateRequest{World: "gated", Start: "Tank"}, nil)
	assert.ErrorIs(t, err, logic.ErrPassBudget)
}
