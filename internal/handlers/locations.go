package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/rando-engine/internal/logger"
	"github.com/jwebster45206/rando-engine/internal/services"
	"github.com/jwebster45206/rando-engine/pkg/storage"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

type LocationsResponse struct {
	ID        uuid.UUID        `json:"id"`
	World     string           `json:"world"`
	Cached    bool             `json:"cached"`
	Origin    world.Location   `json:"origin"`
	Abilities []string         `json:"abilities"`
	Locations []world.Location `json:"locations"`
	Passes    int              `json:"passes"`
	Events    []string         `json:"events"`
}

type LocationsHandler struct {
	locator      *services.Locator
	defaultWorld string
	logger       *slog.Logger
}

func NewLocationsHandler(storage storage.Storage, defaultWorld string, maxPasses int, timeout time.Duration, logger *slog.Logger) *LocationsHandler {
	return &LocationsHandler{
		locator:      services.NewLocator(storage, maxPasses, timeout),
		defaultWorld: defaultWorld,
		logger:       logger,
	}
}

// ServeHTTP answers reachability queries
// Routes:
// POST /v1/locations - Available item locations from an origin
func (h *LocationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	log := requestLogger(h.logger, r)
	req, err := decodeQuery(w, r, h.defaultWorld)
	if err != nil {
		log.Warn("Invalid locations request", "error", err)
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}
	log = logger.WithWorld(log, req.World)

	found, err := h.locator.Locate(r.Context(), req.locateRequest(), log)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError || status == http.StatusUnprocessableEntity {
			logger.WithError(log, err).Warn("Reachability query failed", "status", status)
		}
		writeError(w, log, status, err.Error())
		return
	}

	rec := found.Record
	writeJSON(w, log, http.StatusOK, LocationsResponse{
		ID:        rec.ID,
		World:     rec.World,
		Cached:    found.Cached,
		Origin:    found.Origin,
		Abilities: rec.Abilities,
		Locations: rec.Result.Locations,
		Passes:    rec.Result.Passes,
		Events:    rec.Result.Events,
	})
}
