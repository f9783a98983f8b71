package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	store "github.com/jwebster45206/rando-engine/pkg/storage"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

// World operations (filesystem-backed)

// ListWorlds returns the names of the world directories under the data dir.
func (r *RedisStorage) ListWorlds(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		r.logger.Error("Failed to read data directory", "data_dir", r.dataDir, "error", err)
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// GetWorld returns the named world, loading it from disk on first use. Loaded
// worlds are immutable and shared between callers.
func (r *RedisStorage) GetWorld(ctx context.Context, name string) (*world.World, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidWorldName, name)
	}

	r.mu.RLock()
	w, ok := r.worlds[name]
	r.mu.RUnlock()
	if ok {
		return w, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.worlds[name]; ok {
		return w, nil
	}

	path := filepath.Join(r.dataDir, name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("world %q: %w", name, world.ErrNotFound)
	}

	start := time.Now()
	w, err := world.Load(name, path)
	if err != nil {
		r.logger.Error("Failed to load world", "world", name, "path", path, "error", err)
		return nil, fmt.Errorf("failed to load world %q: %w", name, err)
	}

	r.logger.Info("World loaded",
		"world", name,
		"regions", len(w.Regions),
		"connections", len(w.Connections),
		"duration", time.Since(start))
	r.worlds[name] = w
	return w, nil
}
