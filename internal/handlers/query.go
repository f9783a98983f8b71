package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/rando-engine/internal/services"
	"github.com/jwebster45206/rando-engine/pkg/logic"
	"github.com/jwebster45206/rando-engine/pkg/storage"
)

const maxBodyBytes = 1 << 20

// QueryRequest is the body of the ability and location endpoints. World
// falls back to the server default. The origin is given by node name in Start
// or by RegionID and NodeID.
type QueryRequest struct {
	World    string   `json:"world,omitempty"`
	Items    []string `json:"items"`
	Techs    []string `json:"techs"`
	Start    string   `json:"start,omitempty"`
	RegionID *int     `json:"region_id,omitempty"`
	NodeID   *int     `json:"node_id,omitempty"`
}

func decodeQuery(w http.ResponseWriter, r *http.Request, defaultWorld string) (*QueryRequest, error) {
	var req QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	req.World = strings.TrimSpace(req.World)
	if req.World == "" {
		req.World = defaultWorld
	}
	return &req, nil
}

func (q *QueryRequest) locateRequest() services.LocateRequest {
	return services.LocateRequest{
		World:    q.World,
		Items:    q.Items,
		Techs:    q.Techs,
		Start:    q.Start,
		RegionID: q.RegionID,
		NodeID:   q.NodeID,
	}
}

type AbilitiesResponse struct {
	World     string   `json:"world"`
	Abilities []string `json:"abilities"`
}

type AbilitiesHandler struct {
	storage      storage.Storage
	defaultWorld string
	logger       *slog.Logger
}

func NewAbilitiesHandler(storage storage.Storage, defaultWorld string, logger *slog.Logger) *AbilitiesHandler {
	return &AbilitiesHandler{
		storage:      storage,
		defaultWorld: defaultWorld,
		logger:       logger,
	}
}

// ServeHTTP resolves the ability set of a request
// Routes:
// POST /v1/abilities - Resolve items and techs into the full ability set
func (h *AbilitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	log := requestLogger(h.logger, r)
	req, err := decodeQuery(w, r, h.defaultWorld)
	if err != nil {
		log.Warn("Invalid abilities request", "error", err)
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}

	wd, err := h.storage.GetWorld(r.Context(), req.World)
	if err != nil {
		writeError(w, log, statusFor(err), err.Error())
		return
	}

	abilities := logic.ResolveAbilitySet(req.Items, req.Techs, wd)
	writeJSON(w, log, http.StatusOK, AbilitiesResponse{World: req.World, Abilities: abilities.Names()})
}
