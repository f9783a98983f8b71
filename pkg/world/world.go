package world

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a region or node lookup matches nothing.
var ErrNotFound = errors.New("not found")

// NodeRef addresses a node by arena index: the position of its region in
// World.Regions and of the node in Region.Nodes.
type NodeRef struct {
	Region int
	Node   int
}

// Edge is a resolved link destination within a region.
type Edge struct {
	To     int // node index in the same region
	Strats []Strat
}

// World is the immutable, fully loaded game graph plus the auxiliary tables
// used by requirement evaluation. Build one with New; do not mutate it after.
type World struct {
	Name        string
	Regions     []Region
	Connections []Connection
	Enemies     []Enemy
	Weapons     []Weapon
	Helpers     []Helper
	Techs       []Helper

	regionByID  map[int]int
	nodeByID    []map[int]int
	edges       []map[int][]Edge
	obstacles   []map[string]int
	doorways    map[NodeRef]NodeRef
	enemies     map[string]int
	weapons     map[string]int
	nodesByName map[string][]NodeRef

	fingerprint uint64
}

// Fingerprint digests the definition files the world was loaded from. It is
// zero for worlds built directly with New.
func (w *World) Fingerprint() uint64 { return w.fingerprint }

// Tables groups the auxiliary definitions a World is built from.
type Tables struct {
	Enemies []Enemy
	Weapons []Weapon
	Helpers []Helper
	Techs   []Helper
}

// New indexes regions and connections into a World. Duplicate ids and doorways
// shared by two connections are errors. References that point nowhere (link
// targets, connection endpoints) are dropped and simply never traversed.
func New(name string, regions []Region, connections []Connection, tables Tables) (*World, error) {
	w := &World{
		Name:        name,
		Regions:     regions,
		Connections: connections,
		Enemies:     tables.Enemies,
		Weapons:     tables.Weapons,
		Helpers:     tables.Helpers,
		Techs:       tables.Techs,
		regionByID:  make(map[int]int, len(regions)),
		nodeByID:    make([]map[int]int, len(regions)),
		edges:       make([]map[int][]Edge, len(regions)),
		obstacles:   make([]map[string]int, len(regions)),
		doorways:    make(map[NodeRef]NodeRef),
		enemies:     make(map[string]int, len(tables.Enemies)),
		weapons:     make(map[string]int, len(tables.Weapons)),
		nodesByName: make(map[string][]NodeRef),
	}

	for ri := range regions {
		r := &regions[ri]
		if prev, dup := w.regionByID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate region id %d (%q and %q)", r.ID, regions[prev].Name, r.Name)
		}
		w.regionByID[r.ID] = ri

		nodes := make(map[int]int, len(r.Nodes))
		for ni, n := range r.Nodes {
			if _, dup := nodes[n.ID]; dup {
				return nil, fmt.Errorf("region %d (%s): duplicate node id %d", r.ID, r.Name, n.ID)
			}
			nodes[n.ID] = ni
			w.nodesByName[n.Name] = append(w.nodesByName[n.Name], NodeRef{Region: ri, Node: ni})
		}
		w.nodeByID[ri] = nodes

		obstacles := make(map[string]int, len(r.Obstacles))
		for oi, o := range r.Obstacles {
			if _, dup := obstacles[o.ID]; dup {
				return nil, fmt.Errorf("region %d (%s): duplicate obstacle id %q", r.ID, r.Name, o.ID)
			}
			obstacles[o.ID] = oi
		}
		w.obstacles[ri] = obstacles

		edges := make(map[int][]Edge)
		for _, l := range r.Links {
			from, ok := nodes[l.From]
			if !ok {
				continue
			}
			for _, to := range l.To {
				dst, ok := nodes[to.ID]
				if !ok {
					continue
				}
				edges[from] = append(edges[from], Edge{To: dst, Strats: to.Strats})
			}
		}
		w.edges[ri] = edges
	}

	seen := make(map[NodeRef]int, 2*len(connections))
	for ci, c := range connections {
		if len(c.Nodes) != 2 {
			return nil, fmt.Errorf("connection %d: expected 2 endpoints, got %d", ci, len(c.Nodes))
		}
		var ends [2]NodeRef
		resolved := true
		for i, cn := range c.Nodes {
			ref, ok := w.NodeRefByID(cn.RoomID, cn.NodeID)
			if !ok {
				resolved = false
				continue
			}
			if prev, dup := seen[ref]; dup {
				return nil, fmt.Errorf("connection %d: room %d node %d already used by connection %d", ci, cn.RoomID, cn.NodeID, prev)
			}
			seen[ref] = ci
			ends[i] = ref
		}
		if !resolved || ends[0].Region == ends[1].Region {
			continue
		}
		w.doorways[ends[0]] = ends[1]
		w.doorways[ends[1]] = ends[0]
	}

	for i, e := range tables.Enemies {
		w.enemies[e.Name] = i
	}
	for i, wp := range tables.Weapons {
		w.weapons[wp.Name] = i
	}

	return w, nil
}

// RegionIndex returns the arena index of the region with the given id.
func (w *World) RegionIndex(id int) (int, bool) {
	i, ok := w.regionByID[id]
	return i, ok
}

// NodeRefByID resolves a (region id, node id) pair to arena indices.
func (w *World) NodeRefByID(regionID, nodeID int) (NodeRef, bool) {
	ri, ok := w.regionByID[regionID]
	if !ok {
		return NodeRef{}, false
	}
	ni, ok := w.nodeByID[ri][nodeID]
	if !ok {
		return NodeRef{}, false
	}
	return NodeRef{Region: ri, Node: ni}, true
}

// Region returns the region at arena index i.
func (w *World) Region(i int) *Region {
	return &w.Regions[i]
}

// Node returns the node addressed by ref.
func (w *World) Node(ref NodeRef) *Node {
	return &w.Regions[ref.Region].Nodes[ref.Node]
}

// Location describes ref in result form.
func (w *World) Location(ref NodeRef) Location {
	r := &w.Regions[ref.Region]
	return Location{Name: r.Nodes[ref.Node].Name, RegionID: r.ID, NodeID: r.Nodes[ref.Node].ID}
}

// Edges returns the link destinations whose source is ref, in declaration order.
func (w *World) Edges(ref NodeRef) []Edge {
	return w.edges[ref.Region][ref.Node]
}

// Connected returns the doorway on the other side of ref's Connection.
func (w *World) Connected(ref NodeRef) (NodeRef, bool) {
	other, ok := w.doorways[ref]
	return other, ok
}

// Obstacle returns the obstacle declared with id in the region at index region.
func (w *World) Obstacle(region int, id string) (*Obstacle, bool) {
	i, ok := w.obstacles[region][id]
	if !ok {
		return nil, false
	}
	return &w.Regions[region].Obstacles[i], true
}

// Weapon looks up a weapon by name.
func (w *World) Weapon(name string) (*Weapon, bool) {
	i, ok := w.weapons[name]
	if !ok {
		return nil, false
	}
	return &w.Weapons[i], true
}

// Enemy looks up an enemy by name.
func (w *World) Enemy(name string) (*Enemy, bool) {
	i, ok := w.enemies[name]
	if !ok {
		return nil, false
	}
	return &w.Enemies[i], true
}
