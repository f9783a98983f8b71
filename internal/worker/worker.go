package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/rando-engine/internal/logger"
	"github.com/jwebster45206/rando-engine/internal/queue"
	"github.com/jwebster45206/rando-engine/internal/services"
	"github.com/jwebster45206/rando-engine/internal/services/events"
	queuePkg "github.com/jwebster45206/rando-engine/pkg/queue"
)

const (
	pollTimeout = 5 * time.Second
	lockTTL     = 2 * time.Minute
)

// errInterrupted marks a job cut short by Stop.
var errInterrupted = errors.New("job interrupted by shutdown")

// releaseScript deletes a lock only if it is still held by this worker.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Worker computes queued reachability jobs into the result cache
type Worker struct {
	id           string
	queue        *queue.JobQueue
	locator      *services.Locator
	broadcaster  *events.Broadcaster
	redisClient  *redis.Client
	defaultWorld string
	pollTimeout  time.Duration
	log          *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
}

// New creates a new worker instance. An empty workerID gets a generated one.
func New(jobQueue *queue.JobQueue, locator *services.Locator, redisClient *redis.Client, defaultWorld string, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:           workerID,
		queue:        jobQueue,
		locator:      locator,
		broadcaster:  events.NewBroadcaster(redisClient, log),
		redisClient:  redisClient,
		defaultWorld: defaultWorld,
		pollTimeout:  pollTimeout,
		log:          log.With("worker_id", workerID),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// ID returns the worker's identifier
func (w *Worker) ID() string { return w.id }

// Start processes jobs until Stop is called
func (w *Worker) Start() error {
	w.log.Info("Worker starting")

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down")
			return nil
		default:
			if err := w.processNextJob(); err != nil {
				w.log.Error("Error processing job", "error", err)
				// Keep going; a bad job must not stop the worker.
				select {
				case <-w.ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested")
	w.cancel()
}

// processNextJob pulls the next job from the queue and processes it
func (w *Worker) processNextJob() error {
	job, err := w.queue.BlockingDequeue(w.ctx, w.pollTimeout)
	if err != nil {
		if w.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to dequeue job: %w", err)
	}
	if job == nil {
		// Queue is empty or timeout occurred
		return nil
	}
	if job.World == "" {
		job.World = w.defaultWorld
	}

	log := logger.WithWorld(w.log, job.World).With("job_id", job.ID)
	log.Info("Received job from queue", "queued_for", time.Since(job.EnqueuedAt))

	locked, err := w.acquireJobLock(job.ID)
	if err != nil {
		return fmt.Errorf("failed to acquire job lock: %w", err)
	}
	if !locked {
		// The same job was enqueued twice and another worker has it.
		log.Info("Job already being processed, skipping")
		return nil
	}

	err = w.processJob(job, log)
	// The lock must be gone before the job is visible to other workers again.
	w.releaseJobLock(job.ID)
	if errors.Is(err, errInterrupted) {
		if reErr := w.requeue(job); reErr != nil {
			log.Error("Failed to re-queue interrupted job", "error", reErr)
			return fmt.Errorf("re-queue job %s: %w", job.ID, reErr)
		}
		log.Info("Re-queued interrupted job")
		return nil
	}
	return err
}

func lockKey(jobID string) string {
	return fmt.Sprintf("job-lock:%s", jobID)
}

// acquireJobLock returns true if the lock was acquired, false if already held
func (w *Worker) acquireJobLock(jobID string) (bool, error) {
	return w.redisClient.SetNX(w.ctx, lockKey(jobID), w.id, lockTTL).Result()
}

func (w *Worker) releaseJobLock(jobID string) {
	// The worker context may already be cancelled on shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, w.redisClient, []string{lockKey(jobID)}, w.id).Err(); err != nil {
		w.log.Error("Failed to release job lock", "error", err, "job_id", jobID)
	}
}

func (w *Worker) processJob(job *queuePkg.Job, log *slog.Logger) error {
	if err := w.broadcaster.PublishJobProcessing(w.ctx, job.ID, job.World, w.id); err != nil {
		log.Warn("Failed to publish processing event", "error", err)
	}

	start := time.Now()
	found, err := w.locator.Locate(w.ctx, services.LocateRequest{
		World:    job.World,
		Items:    job.Items,
		Techs:    job.Techs,
		Start:    job.Start,
		RegionID: job.RegionID,
		NodeID:   job.NodeID,
	}, log)
	if err != nil {
		if errors.Is(err, context.Canceled) && w.ctx.Err() != nil {
			return errInterrupted
		}
		if pubErr := w.broadcaster.PublishJobFailed(w.ctx, job.ID, job.World, w.id, err.Error()); pubErr != nil {
			log.Warn("Failed to publish failure event", "error", pubErr)
		}
		return fmt.Errorf("job %s: %w", job.ID, err)
	}

	rec := found.Record
	log.Info("Job processed successfully",
		"result_id", rec.ID,
		"cached", found.Cached,
		"locations", len(rec.Result.Locations),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	result := map[string]any{
		"result_id": rec.ID.String(),
		"cached":    found.Cached,
		"origin":    found.Origin.Name,
		"locations": len(rec.Result.Locations),
		"passes":    rec.Result.Passes,
	}
	if err := w.broadcaster.PublishJobCompleted(w.ctx, job.ID, job.World, w.id, result); err != nil {
		log.Warn("Failed to publish completion event", "error", err)
	}
	return nil
}

func (w *Worker) requeue(job *queuePkg.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.queue.Enqueue(ctx, job)
}
