package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/rando-engine/internal/logger"
	"github.com/jwebster45206/rando-engine/pkg/logic"
	"github.com/jwebster45206/rando-engine/pkg/storage"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

// LocateRequest is one reachability query. The origin is Start when set,
// otherwise the RegionID/NodeID pair.
type LocateRequest struct {
	World    string
	Items    []string
	Techs    []string
	Start    string
	RegionID *int
	NodeID   *int
}

// Located is the answer to a LocateRequest.
type Located struct {
	Record    *storage.ResultRecord
	Origin    world.Location
	Abilities logic.Abilities
	Cached    bool
}

// Locator runs reachability queries through the result cache. Both the HTTP
// API and the queue worker answer queries with it.
type Locator struct {
	storage   storage.Storage
	maxPasses int
	timeout   time.Duration
}

// NewLocator creates a Locator. A zero timeout leaves the caller's context
// as the only deadline.
func NewLocator(storage storage.Storage, maxPasses int, timeout time.Duration) *Locator {
	return &Locator{
		storage:   storage,
		maxPasses: maxPasses,
		timeout:   timeout,
	}
}

// Locate answers req from the cache when possible and computes and stores
// it otherwise. Cache failures are logged and never fail the query.
func (l *Locator) Locate(ctx context.Context, req LocateRequest, log *slog.Logger) (*Located, error) {
	if log == nil {
		log = logger.Discard()
	}

	wd, err := l.storage.GetWorld(ctx, req.World)
	if err != nil {
		return nil, err
	}

	origin, err := wd.ResolveOrigin(req.Start, req.RegionID, req.NodeID)
	if err != nil {
		return nil, err
	}
	originLoc := wd.Location(origin)

	abilities := logic.ResolveAbilitySet(req.Items, req.Techs, wd)
	q := storage.Query{
		World:     req.World,
		Revision:  wd.Fingerprint(),
		Abilities: abilities.Names(),
		RegionID:  originLoc.RegionID,
		NodeID:    originLoc.NodeID,
		MaxPasses: l.maxPasses,
	}

	if rec, err := l.storage.LoadResult(ctx, q); err != nil {
		logger.WithError(log, err).Warn("Result cache unavailable")
	} else if rec != nil {
		log.Debug("Result cache hit", "id", rec.ID)
		return &Located{Record: rec, Origin: originLoc, Abilities: abilities, Cached: true}, nil
	}

	runCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	finder := logic.NewFinder(wd, abilities, logic.Options{MaxPasses: l.maxPasses, Logger: log})
	res, err := finder.Available(runCtx, origin)
	if err != nil {
		return nil, fmt.Errorf("available locations from %q: %w", originLoc.Name, err)
	}

	rec := storage.NewResultRecord(q, res)
	log.Info("Reachability query finished",
		"id", rec.ID,
		"origin", originLoc.Name,
		"abilities", abilities.Len(),
		"locations", len(res.Locations),
		"passes", res.Passes,
		"duration", time.Since(start))

	if err := l.storage.SaveResult(ctx, q, rec); err != nil {
		logger.WithError(log, err).Warn("Failed to cache result", "id", rec.ID)
	}

	return &Located{Record: rec, Origin: originLoc, Abilities: abilities}, nil
}
