package logic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jwebster45206/rando-engine/pkg/world"
)

// ErrPassBudget is returned when a fixed point has not converged within
// Options.MaxPasses passes.
var ErrPassBudget = errors.New("reachability pass budget exceeded")

// Options tunes a Finder. The zero value runs unbounded and logs nothing.
type Options struct {
	// MaxPasses caps the passes of each fixed point, nested backtrack
	// searches included. Zero means no cap.
	MaxPasses int
	Logger    *slog.Logger
}

// Result is the outcome of one reachability query.
type Result struct {
	Locations []world.Location `json:"locations"`
	Passes    int              `json:"passes"`
	Events    []string         `json:"events"`
}

// Finder answers reachability queries for one world and ability set.
type Finder struct {
	world *world.World
	eval  *Evaluator
	opts  Options
	log   *slog.Logger
}

func NewFinder(w *world.World, abilities Abilities, opts Options) *Finder {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Finder{
		world: w,
		eval:  NewEvaluator(w, abilities),
		opts:  opts,
		log:   log,
	}
}

// AvailableLocations returns the item locations reachable from the origin,
// and returnable from, with the given abilities.
func AvailableLocations(abilities Abilities, w *world.World, originRegionID, originNodeID int) ([]world.Location, error) {
	origin, err := w.FindNode(originRegionID, originNodeID)
	if err != nil {
		return nil, err
	}
	res, err := NewFinder(w, abilities, Options{}).Available(context.Background(), origin)
	if err != nil {
		return nil, err
	}
	return res.Locations, nil
}

// Available runs the traversal from origin until the event set stops growing
// and returns the locations found by the final pass.
func (f *Finder) Available(ctx context.Context, origin world.NodeRef) (*Result, error) {
	st := NewState(origin)
	locations, passes, err := f.fixedPoint(ctx, st)
	if err != nil {
		return nil, err
	}
	if locations == nil {
		locations = []world.Location{}
	}

	f.log.Debug("Reachability converged",
		"origin", f.world.Node(origin).Name,
		"passes", passes,
		"events", st.EventCount(),
		"locations", len(locations))

	return &Result{Locations: locations, Passes: passes, Events: st.Events()}, nil
}

// fixedPoint repeats the traversal from st.Origin, keeping events and cleared
// obstacles between passes, until a pass adds no event. An item found late in
// one pass may yield an event that opens a branch rejected earlier in it.
func (f *Finder) fixedPoint(ctx context.Context, st *State) ([]world.Location, int, error) {
	passes := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, passes, fmt.Errorf("reachability stopped after %d passes: %w", passes, err)
		}
		if f.opts.MaxPasses > 0 && passes >= f.opts.MaxPasses {
			return nil, passes, fmt.Errorf("%w: %d passes from %s", ErrPassBudget, passes, f.world.Node(st.Origin).Name)
		}

		before := st.EventCount()
		st.startPass()
		locations, err := f.visit(ctx, st.Origin, st)
		if err != nil {
			return nil, passes, err
		}
		passes++

		if st.EventCount() == before {
			return locations, passes, nil
		}
	}
}

// visit walks depth first from ref and returns the item locations accepted in
// its subtree.
func (f *Finder) visit(ctx context.Context, ref world.NodeRef, st *State) ([]world.Location, error) {
	st.markVisited(ref)
	node := f.world.Node(ref)
	unlockable := f.eval.CanUnlock(ref, st)

	if unlockable {
		for _, y := range node.Yields {
			st.AddEvent(y)
		}
	}

	var locations []world.Location

	if node.Type == world.NodeItem && unlockable {
		accept := true
		if !st.Backtracking {
			var err error
			accept, err = f.canReturn(ctx, ref, st)
			if err != nil {
				return nil, err
			}
		}
		if accept {
			locations = append(locations, f.world.Location(ref))
		}
	}

	if node.IsDoorway() && unlockable {
		if target, ok := f.world.Connected(ref); ok && !st.Visited(target) {
			found, err := f.visit(ctx, target, st)
			if err != nil {
				return nil, err
			}
			locations = append(locations, found...)
		}
	}

	for _, edge := range f.world.Edges(ref) {
		dst := world.NodeRef{Region: ref.Region, Node: edge.To}
		if st.Visited(dst) {
			continue
		}
		if !f.eval.CanTraverse(ref.Region, edge, st) || !f.eval.CanAccess(dst, st) {
			continue
		}
		found, err := f.visit(ctx, dst, st)
		if err != nil {
			return nil, err
		}
		locations = append(locations, found...)
	}

	return locations, nil
}

// canReturn runs a nested fixed point rooted at the candidate item and
// reports whether it reaches the query origin. The branch starts with no
// events and only the obstacles already cleared in the candidate's region.
func (f *Finder) canReturn(ctx context.Context, candidate world.NodeRef, st *State) (bool, error) {
	branch := st.branch(candidate)
	if _, _, err := f.fixedPoint(ctx, branch); err != nil {
		return false, fmt.Errorf("backtrack from %s: %w", f.world.Node(candidate).Name, err)
	}

	ok := branch.Visited(st.Origin)
	f.log.Debug("Backtrack checked",
		"item", f.world.Node(candidate).Name,
		"region", f.world.Region(candidate.Region).Name,
		"returns", ok)
	return ok, nil
}
