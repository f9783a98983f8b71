package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jwebster45206/rando-engine/pkg/world"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	worlds    map[string]*world.World
	results   map[string]*ResultRecord
	pingError error
	saves     int
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		worlds:  make(map[string]*world.World),
		results: make(map[string]*ResultRecord),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// AddWorld adds a world to the mock storage (for testing)
func (m *MockStorage) AddWorld(name string, w *world.World) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worlds[name] = w
}

// ListWorlds mocks listing worlds
func (m *MockStorage) ListWorlds(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.worlds))
	for name := range m.worlds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetWorld mocks getting a world by name
func (m *MockStorage) GetWorld(ctx context.Context, name string) (*world.World, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, exists := m.worlds[name]
	if !exists {
		return nil, fmt.Errorf("world %q: %w", name, world.ErrNotFound)
	}
	return w, nil
}

// SaveResult mocks saving a result
func (m *MockStorage) SaveResult(ctx context.Context, q Query, rec *ResultRecord) error {
	if rec == nil {
		return errors.New("result cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[q.Key()] = rec
	m.saves++
	return nil
}

// LoadResult mocks loading a result
func (m *MockStorage) LoadResult(ctx context.Context, q Query) (*ResultRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.results[q.Key()], nil
}

// Saves reports how many results have been saved (for testing)
func (m *MockStorage) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
