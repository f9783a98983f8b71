package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/rando-engine/pkg/world"
)

func TestState_Branch(t *testing.T) {
	st := NewState(world.NodeRef{Region: 0, Node: 0})
	st.AddEvent("f_DefeatedKraid")
	st.ClearObstacle(ObstacleKey{Region: 2, ID: "A"})
	st.ClearObstacle(ObstacleKey{Region: 2, ID: "B"})
	st.ClearObstacle(ObstacleKey{Region: 3, ID: "A"})
	st.markVisited(world.NodeRef{Region: 2, Node: 4})

	b := st.branch(world.NodeRef{Region: 2, Node: 4})

	assert.True(t, b.Backtracking)
	assert.Equal(t, world.NodeRef{Region: 2, Node: 4}, b.Origin)
	assert.Zero(t, b.EventCount())
	assert.Equal(t, 2, b.ClearedCount())
	assert.True(t, b.ObstacleCleared(ObstacleKey{Region: 2, ID: "B"}))
	assert.False(t, b.ObstacleCleared(ObstacleKey{Region: 3, ID: "A"}))
	assert.False(t, b.Visited(world.NodeRef{Region: 2, Node: 4}))

	b.ClearObstacle(ObstacleKey{Region: 2, ID: "C"})
	b.AddEvent("f_Other")
	assert.Equal(t, 3, st.ClearedCount(), "branch changes stay in the branch")
	assert.Equal(t, []string{"f_DefeatedKraid"}, st.Events())
}

func TestState_StartPass(t *testing.T) {
	st := NewState(world.NodeRef{})
	st.AddEvent("e")
	st.ClearObstacle(ObstacleKey{ID: "A"})
	st.markVisited(world.NodeRef{Node: 1})

	st.startPass()

	assert.False(t, st.Visited(world.NodeRef{Node: 1}))
	assert.True(t, st.HasEvent("e"))
	assert.True(t, st.ObstacleCleared(ObstacleKey{ID: "A"}))
}
