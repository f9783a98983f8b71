package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/rando-engine/internal/handlers"
	"github.com/jwebster45206/rando-engine/internal/logger"
	"github.com/jwebster45206/rando-engine/pkg/queue"
	"github.com/jwebster45206/rando-engine/pkg/storage"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

type memQueue struct{ jobs []*queue.Job }

func (q *memQueue) Enqueue(_ context.Context, job *queue.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memQueue) Depth(context.Context) (int, error) { return len(q.jobs), nil }

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	w, err := world.New("super_metroid", []world.Region{{
		ID: 8, Name: "Landing Site",
		Nodes: []world.Node{
			{ID: 1, Name: "Ship", Type: world.NodeJunction},
			{ID: 2, Name: "Gauntlet Item", Type: world.NodeItem},
			{ID: 3, Name: "Morph Item", Type: world.NodeItem, InteractionRequires: world.Ref("Morph")},
		},
		Links: []world.Link{
			{From: 1, To: []world.LinkTo{{ID: 2}, {ID: 3}}},
			{From: 2, To: []world.LinkTo{{ID: 1}}},
			{From: 3, To: []world.LinkTo{{ID: 1}}},
		},
	}}, nil, world.Tables{})
	require.NoError(t, err)

	store := storage.NewMockStorage()
	store.AddWorld("super_metroid", w)
	log := logger.Discard()

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, log))
	mux.Handle("/v1/worlds", handlers.NewWorldHandler(store, log))
	mux.Handle("/v1/worlds/", handlers.NewWorldHandler(store, log))
	mux.Handle("/v1/abilities", handlers.NewAbilitiesHandler(store, "super_metroid", log))
	mux.Handle("/v1/locations", handlers.NewLocationsHandler(store, "super_metroid", 0, time.Second, log))
	mux.Handle("/v1/jobs", handlers.NewJobsHandler(store, &memQueue{}, nil, "super_metroid", log))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testUI(t *testing.T) ConsoleUI {
	srv := testServer(t)
	m := NewConsoleUI(&ConsoleConfig{APIBaseURL: srv.URL}, srv.Client())
	m.world = "super_metroid"
	m.showWorldModal = false
	return m
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Super Metroid", displayName("super_metroid"))
	assert.Equal(t, "A Link To The Past", displayName("a-link-to-the-past"))
}

func TestSplitArgs(t *testing.T) {
	assert.Equal(t, []string{"Morph", "Bombs", "Super"}, splitArgs("Morph, Bombs  Super,"))
	assert.Empty(t, splitArgs(" , "))
}

func TestClipboardText(t *testing.T) {
	got := clipboardText([]world.Location{{Name: "Gauntlet Item", RegionID: 8, NodeID: 2}})
	assert.Equal(t, "Gauntlet Item\t8\t2\n", got)
}

func TestFormatLocations(t *testing.T) {
	got := formatLocations(&handlers.LocationsResponse{
		Origin:    world.Location{Name: "Ship"},
		Cached:    true,
		Passes:    2,
		Locations: []world.Location{{Name: "Gauntlet Item", RegionID: 8, NodeID: 2}},
		Events:    []string{"f_ZebesAwake"},
	})
	assert.Contains(t, got, "1 reachable from Ship in 2 passes (cached)")
	assert.Contains(t, got, "• Gauntlet Item [8:2]")
	assert.Contains(t, got, "Events: f_ZebesAwake")
}

func TestConsoleUI_Commands(t *testing.T) {
	m := testUI(t)

	model, _ := m.handleCommand("/items Morph, Bombs")
	m = model.(ConsoleUI)
	assert.Equal(t, []string{"Morph", "Bombs"}, m.items)

	model, _ = m.handleCommand("/origin 8 x")
	m = model.(ConsoleUI)
	assert.Nil(t, m.origin)
	assert.Equal(t, entryError, m.entries[len(m.entries)-1].kind)

	model, _ = m.handleCommand("/origin 8 1")
	m = model.(ConsoleUI)
	require.NotNil(t, m.origin)
	assert.Equal(t, "region 8 node 1", m.originLabel())

	q := m.query()
	assert.Empty(t, q.Start)
	assert.Equal(t, 8, *q.RegionID)

	model, _ = m.handleCommand("/start Ship")
	m = model.(ConsoleUI)
	assert.Nil(t, m.origin)
	assert.Equal(t, "Ship", m.query().Start)

	model, _ = m.handleCommand("/copy")
	m = model.(ConsoleUI)
	assert.Contains(t, m.entries[len(m.entries)-1].body, "nothing to copy")

	model, _ = m.handleCommand("/bogus")
	m = model.(ConsoleUI)
	assert.Contains(t, m.entries[len(m.entries)-1].body, "unknown command")

	model, _ = m.handleCommand("/clear")
	m = model.(ConsoleUI)
	assert.Empty(t, m.entries)
}

func TestConsoleUI_Queries(t *testing.T) {
	m := testUI(t)
	m.items = []string{"Morph"}

	msg := m.fetchLocations()()
	loc, ok := msg.(locationsMsg)
	require.True(t, ok)
	require.NoError(t, loc.err)
	assert.Len(t, loc.response.Locations, 2)

	model, _ := m.Update(loc)
	m = model.(ConsoleUI)
	require.NotNil(t, m.last)
	assert.False(t, m.loading)
	assert.Equal(t, entryResult, m.entries[len(m.entries)-1].kind)

	ab, ok := m.fetchAbilities()().(abilitiesMsg)
	require.True(t, ok)
	require.NoError(t, ab.err)
	assert.Equal(t, []string{"Morph"}, ab.response.Abilities)

	items, ok := m.fetchItems()().(itemsMsg)
	require.True(t, ok)
	require.NoError(t, items.err)
	assert.Len(t, items.response.Items, 2)

	job, ok := m.submitJob()().(jobMsg)
	require.True(t, ok)
	require.NoError(t, job.err, "202 Accepted is a success")
	assert.Equal(t, 1, job.response.Depth)

	model, _ = m.Update(job)
	m = model.(ConsoleUI)
	assert.Contains(t, m.entries[len(m.entries)-1].body, "Queued job "+job.response.ID)

	m.start = "Shipp"
	bad, ok := m.fetchLocations()().(locationsMsg)
	require.True(t, ok)
	require.Error(t, bad.err)
	assert.Contains(t, bad.err.Error(), `did you mean "Ship"`)
}

func TestConsoleUI_WorldModal(t *testing.T) {
	srv := testServer(t)
	m := NewConsoleUI(&ConsoleConfig{APIBaseURL: srv.URL}, srv.Client())

	msg := m.loadWorlds()()
	model, _ := m.Update(msg)
	m = model.(ConsoleUI)
	assert.Equal(t, []string{"super_metroid"}, m.worlds)
	assert.Contains(t, m.renderWorldModal(), "Loading...")

	model, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = model.(ConsoleUI)
	assert.Contains(t, m.renderWorldModal(), "Super Metroid")

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(ConsoleUI)
	assert.False(t, m.showWorldModal)
	assert.Equal(t, "super_metroid", m.world)
	assert.True(t, strings.Contains(m.View(), "RANDO ENGINE"))
}

func TestTestConnection(t *testing.T) {
	srv := testServer(t)
	assert.True(t, testConnection(srv.Client(), srv.URL))
	assert.False(t, testConnection(srv.Client(), srv.URL+"/nowhere"))
}
