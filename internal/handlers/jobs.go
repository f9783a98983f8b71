package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/rando-engine/internal/logger"
	"github.com/jwebster45206/rando-engine/internal/services/events"
	"github.com/jwebster45206/rando-engine/pkg/queue"
	"github.com/jwebster45206/rando-engine/pkg/storage"
)

// JobQueue is the part of the Redis job queue the API needs
type JobQueue interface {
	Enqueue(ctx context.Context, job *queue.Job) error
	Depth(ctx context.Context) (int, error)
}

type JobResponse struct {
	ID    string `json:"id"`
	World string `json:"world"`
	Depth int    `json:"depth"`
}

type JobsHandler struct {
	storage      storage.Storage
	queue        JobQueue
	broadcaster  *events.Broadcaster
	defaultWorld string
	logger       *slog.Logger
}

// NewJobsHandler creates the job endpoint. broadcaster may be nil.
func NewJobsHandler(storage storage.Storage, queue JobQueue, broadcaster *events.Broadcaster, defaultWorld string, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{
		storage:      storage,
		queue:        queue,
		broadcaster:  broadcaster,
		defaultWorld: defaultWorld,
		logger:       logger,
	}
}

// ServeHTTP queues a reachability query for the workers. The world and the
// origin are checked before the job is accepted.
// Routes:
// POST /v1/jobs - Queue a query; its result lands in the result cache
func (h *JobsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	log := requestLogger(h.logger, r)
	req, err := decodeQuery(w, r, h.defaultWorld)
	if err != nil {
		log.Warn("Invalid job request", "error", err)
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}
	log = logger.WithWorld(log, req.World)

	wd, err := h.storage.GetWorld(r.Context(), req.World)
	if err != nil {
		writeError(w, log, statusFor(err), err.Error())
		return
	}
	if _, err := wd.ResolveOrigin(req.Start, req.RegionID, req.NodeID); err != nil {
		writeError(w, log, statusFor(err), err.Error())
		return
	}

	job := &queue.Job{
		ID:         uuid.NewString(),
		World:      req.World,
		Items:      req.Items,
		Techs:      req.Techs,
		Start:      req.Start,
		RegionID:   req.RegionID,
		NodeID:     req.NodeID,
		EnqueuedAt: time.Now(),
	}
	if err := h.queue.Enqueue(r.Context(), job); err != nil {
		logger.WithError(log, err).Error("Failed to enqueue job")
		writeError(w, log, http.StatusServiceUnavailable, "job queue unavailable")
		return
	}

	depth, err := h.queue.Depth(r.Context())
	if err != nil {
		logger.WithError(log, err).Warn("Failed to read queue depth")
	}
	if h.broadcaster != nil {
		if err := h.broadcaster.PublishJobQueued(r.Context(), job.ID, job.World, depth); err != nil {
			logger.WithError(log, err).Warn("Failed to publish queued event")
		}
	}

	log.Info("Job queued", "job_id", job.ID, "depth", depth)
	writeJSON(w, log, http.StatusAccepted, JobResponse{ID: job.ID, World: job.World, Depth: depth})
}
