package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/jwebster45206/rando-engine/pkg/logic"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

// ErrInvalidWorldName is returned for world names that are not a single
// directory name.
var ErrInvalidWorldName = errors.New("invalid world name")

// Storage defines a unified interface for all storage operations
// This interface combines world loading (filesystem) with result caching (Redis)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// World operations (filesystem-backed, cached in memory once loaded)
	ListWorlds(ctx context.Context) ([]string, error)
	GetWorld(ctx context.Context, name string) (*world.World, error)

	// Result operations (Redis-backed). LoadResult returns nil, nil on a miss.
	SaveResult(ctx context.Context, q Query, rec *ResultRecord) error
	LoadResult(ctx context.Context, q Query) (*ResultRecord, error)
}

// Query identifies one reachability computation. Two queries with the same
// key always produce the same result. Revision is the world's fingerprint, so
// edited definitions never hit results computed from the old files.
type Query struct {
	World     string
	Revision  uint64
	Abilities []string
	RegionID  int
	NodeID    int
	MaxPasses int
}

// Key returns the cache key for q. Ability order does not matter.
func (q Query) Key() string {
	abilities := slices.Clone(q.Abilities)
	slices.Sort(abilities)
	abilities = slices.Compact(abilities)

	d := xxhash.New()
	for _, a := range abilities {
		_, _ = d.WriteString(a)
		_, _ = d.Write([]byte{0})
	}
	_, _ = d.WriteString(strconv.Itoa(q.RegionID) + ":" + strconv.Itoa(q.NodeID) + ":" + strconv.Itoa(q.MaxPasses))
	_, _ = d.WriteString(":" + strconv.FormatUint(q.Revision, 16))

	return fmt.Sprintf("result:%s:%016x", q.World, d.Sum64())
}

// ResultRecord is a stored reachability result.
type ResultRecord struct {
	ID        uuid.UUID    `json:"id"`
	World     string       `json:"world"`
	RegionID  int          `json:"region_id"`
	NodeID    int          `json:"node_id"`
	Abilities []string     `json:"abilities"`
	Result    logic.Result `json:"result"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewResultRecord wraps res for q under a fresh id.
func NewResultRecord(q Query, res *logic.Result) *ResultRecord {
	return &ResultRecord{
		ID:        uuid.New(),
		World:     q.World,
		RegionID:  q.RegionID,
		NodeID:    q.NodeID,
		Abilities: q.Abilities,
		Result:    *res,
		CreatedAt: time.Now(),
	}
}
