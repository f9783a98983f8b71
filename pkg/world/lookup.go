package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestions caps the "did you mean" list on a failed name lookup.
const maxSuggestions = 3

// ErrNoOrigin is returned by ResolveOrigin when neither a start name nor a
// complete id pair is given.
var ErrNoOrigin = errors.New("either start or both region_id and node_id are required")

// NotFoundError reports a failed lookup and the closest known names.
type NotFoundError struct {
	What        string
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("%s %q %s", e.What, e.Name, ErrNotFound)
	}
	return fmt.Sprintf("%s %q %s (did you mean %s?)", e.What, e.Name, ErrNotFound, strings.Join(quoteAll(e.Suggestions), ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// FindNodeByName returns the first node, in region order, whose name is name.
func (w *World) FindNodeByName(name string) (NodeRef, error) {
	if refs := w.nodesByName[name]; len(refs) > 0 {
		return refs[0], nil
	}
	return NodeRef{}, &NotFoundError{What: "node", Name: name, Suggestions: w.suggest(name)}
}

// FindNode resolves a (region id, node id) pair or returns ErrNotFound.
func (w *World) FindNode(regionID, nodeID int) (NodeRef, error) {
	ref, ok := w.NodeRefByID(regionID, nodeID)
	if !ok {
		return NodeRef{}, fmt.Errorf("region %d node %d: %w", regionID, nodeID, ErrNotFound)
	}
	return ref, nil
}

// ResolveOrigin picks the query origin: by name when start is set, otherwise
// by the (region id, node id) pair.
func (w *World) ResolveOrigin(start string, regionID, nodeID *int) (NodeRef, error) {
	if start != "" {
		return w.FindNodeByName(start)
	}
	if regionID == nil || nodeID == nil {
		return NodeRef{}, ErrNoOrigin
	}
	return w.FindNode(*regionID, *nodeID)
}

// ItemLocations lists every item node in the world in declaration order.
func (w *World) ItemLocations() []Location {
	var locations []Location
	for ri := range w.Regions {
		for ni := range w.Regions[ri].Nodes {
			if w.Regions[ri].Nodes[ni].Type == NodeItem {
				locations = append(locations, w.Location(NodeRef{Region: ri, Node: ni}))
			}
		}
	}
	return locations
}

func (w *World) suggest(name string) []string {
	type scored struct {
		name string
		dist int
	}

	needle := strings.ToLower(name)
	limit := len(needle)/3 + 1

	var candidates []scored
	for candidate := range w.nodesByName {
		lower := strings.ToLower(candidate)
		dist := levenshtein.ComputeDistance(needle, lower)
		if strings.Contains(lower, needle) && needle != "" {
			dist = 0
		}
		if dist > limit {
			continue
		}
		candidates = append(candidates, scored{name: candidate, dist: dist})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist == candidates[j].dist {
			return candidates[i].name < candidates[j].name
		}
		return candidates[i].dist < candidates[j].dist
	})

	var out []string
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		out = append(out, candidates[i].name)
	}
	return out
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}
