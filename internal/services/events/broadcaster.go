package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeJobQueued     EventType = "job.queued"
	EventTypeJobProcessing EventType = "job.processing"
	EventTypeJobCompleted  EventType = "job.completed"
	EventTypeJobFailed     EventType = "job.failed"
)

// Terminal reports whether no further events follow t for the same job.
func (t EventType) Terminal() bool {
	return t == EventTypeJobCompleted || t == EventTypeJobFailed
}

// Event represents a job lifecycle event
type Event struct {
	Type   EventType      `json:"type"`
	JobID  string         `json:"job_id"`
	World  string         `json:"world,omitempty"`
	Worker string         `json:"worker,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Channel is the Pub/Sub channel carrying events for one job.
func Channel(jobID string) string {
	return fmt.Sprintf("job-events:%s", jobID)
}

// Broadcaster publishes job events to Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishJobQueued publishes a job.queued event
func (b *Broadcaster) PublishJobQueued(ctx context.Context, jobID, world string, depth int) error {
	return b.publish(ctx, Event{
		Type:  EventTypeJobQueued,
		JobID: jobID,
		World: world,
		Data:  map[string]any{"status": "queued", "depth": depth},
	})
}

// PublishJobProcessing publishes a job.processing event
func (b *Broadcaster) PublishJobProcessing(ctx context.Context, jobID, world, worker string) error {
	return b.publish(ctx, Event{
		Type:   EventTypeJobProcessing,
		JobID:  jobID,
		World:  world,
		Worker: worker,
		Data:   map[string]any{"status": "processing"},
	})
}

// PublishJobCompleted publishes a job.completed event. result carries the
// stored record id and summary counts.
func (b *Broadcaster) PublishJobCompleted(ctx context.Context, jobID, world, worker string, result map[string]any) error {
	return b.publish(ctx, Event{
		Type:   EventTypeJobCompleted,
		JobID:  jobID,
		World:  world,
		Worker: worker,
		Data:   map[string]any{"status": "completed", "result": result},
	})
}

// PublishJobFailed publishes a job.failed event
func (b *Broadcaster) PublishJobFailed(ctx context.Context, jobID, world, worker, errorMsg string) error {
	return b.publish(ctx, Event{
		Type:   EventTypeJobFailed,
		JobID:  jobID,
		World:  world,
		Worker: worker,
		Data:   map[string]any{"status": "failed", "error": errorMsg},
	})
}

// Subscribe opens a subscription to the events of one job. The caller must
// close the returned PubSub.
func (b *Broadcaster) Subscribe(ctx context.Context, jobID string) (*redis.PubSub, error) {
	sub := b.redisClient.Subscribe(ctx, Channel(jobID))
	// Wait for the subscription to be confirmed so no event is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to job %s: %w", jobID, err)
	}
	return sub, nil
}

// Decode parses a Pub/Sub payload into an Event
func Decode(msg *redis.Message) (*Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return &event, nil
}

func (b *Broadcaster) publish(ctx context.Context, event Event) error {
	channel := Channel(event.JobID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"job_id", event.JobID,
	)

	return nil
}
