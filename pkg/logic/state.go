package logic

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/jwebster45206/rando-engine/pkg/world"
)

// ObstacleKey identifies an obstacle by region arena index and obstacle id.
type ObstacleKey struct {
	Region int
	ID     string
}

// State is the mutable scratch context of one reachability query or one
// backtrack branch. Events and cleared obstacles only grow; the visited set is
// reset at the start of every pass. A State is owned by a single goroutine.
type State struct {
	Origin       world.NodeRef
	Backtracking bool

	events    mapset.Set[string]
	obstacles mapset.Set[ObstacleKey]
	visited   mapset.Set[world.NodeRef]
}

// NewState returns an empty state anchored at origin.
func NewState(origin world.NodeRef) *State {
	return &State{
		Origin:    origin,
		events:    mapset.New[string](),
		obstacles: mapset.New[ObstacleKey](),
		visited:   mapset.New[world.NodeRef](),
	}
}

// neutralState is used where no traversal is underway, such as ability resolution.
func neutralState() *State {
	return NewState(world.NodeRef{Region: -1, Node: -1})
}

func (s *State) HasEvent(name string) bool { return s.events.Has(name) }

func (s *State) AddEvent(name string) { s.events.Put(name) }

func (s *State) EventCount() int { return s.events.Size() }

// Events returns the acquired events, sorted.
func (s *State) Events() []string {
	return sortedKeys(s.events)
}

func (s *State) ObstacleCleared(key ObstacleKey) bool { return s.obstacles.Has(key) }

func (s *State) ClearObstacle(key ObstacleKey) { s.obstacles.Put(key) }

func (s *State) ClearedCount() int { return s.obstacles.Size() }

func (s *State) Visited(ref world.NodeRef) bool { return s.visited.Has(ref) }

func (s *State) markVisited(ref world.NodeRef) { s.visited.Put(ref) }

func (s *State) startPass() { s.visited = mapset.New[world.NodeRef]() }

// branch returns an independent backtracking state rooted at root. Events are
// dropped and only obstacles cleared in root's own region carry over.
func (s *State) branch(root world.NodeRef) *State {
	b := NewState(root)
	b.Backtracking = true
	s.obstacles.Each(func(key ObstacleKey) {
		if key.Region == root.Region {
			b.obstacles.Put(key)
		}
	})
	return b
}

func sortedKeys(set mapset.Set[string]) []string {
	out := make([]string, 0, set.Size())
	set.Each(func(k string) {
		out = append(out, k)
	})
	sort.Strings(out)
	return out
}
