package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/rando-engine/pkg/storage"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

type WorldsResponse struct {
	Worlds []string `json:"worlds"`
}

type ItemsResponse struct {
	World string           `json:"world"`
	Items []world.Location `json:"items"`
}

type WorldHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewWorldHandler(storage storage.Storage, logger *slog.Logger) *WorldHandler {
	return &WorldHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles world listing requests
// Routes:
// GET /v1/worlds              - List world names
// GET /v1/worlds/{name}/items - List every item location of a world
func (h *WorldHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	log := requestLogger(h.logger, r)
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/worlds"), "/")

	if path == "" {
		names, err := h.storage.ListWorlds(r.Context())
		if err != nil {
			log.Error("Failed to list worlds", "error", err)
			writeError(w, log, http.StatusInternalServerError, "Failed to list worlds")
			return
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, log, http.StatusOK, WorldsResponse{Worlds: names})
		return
	}

	name, rest, _ := strings.Cut(path, "/")
	if rest != "items" {
		writeError(w, log, http.StatusNotFound, "Unknown world route")
		return
	}

	wd, err := h.storage.GetWorld(r.Context(), name)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Error("Failed to load world", "world", name, "error", err)
		}
		writeError(w, log, status, err.Error())
		return
	}

	items := wd.ItemLocations()
	if items == nil {
		items = []world.Location{}
	}
	writeJSON(w, log, http.StatusOK, ItemsResponse{World: name, Items: items})
}
