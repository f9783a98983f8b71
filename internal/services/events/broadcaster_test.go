package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBroadcaster(t *testing.T) *Broadcaster {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBroadcaster(client, logger)
}

func TestBroadcaster_JobLifecycle(t *testing.T) {
	b := setupBroadcaster(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := b.Subscribe(ctx, "job-1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.PublishJobQueued(ctx, "job-1", "sm", 3))
	require.NoError(t, b.PublishJobProcessing(ctx, "job-1", "sm", "worker-a"))
	require.NoError(t, b.PublishJobProcessing(ctx, "job-2", "sm", "worker-b"))
	require.NoError(t, b.PublishJobCompleted(ctx, "job-1", "sm", "worker-a", map[string]any{"locations": 4}))

	var got []EventType
	for len(got) < 3 {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		assert.Equal(t, Channel("job-1"), msg.Channel)

		event, err := Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, "job-1", event.JobID, "other jobs' events are not delivered")
		got = append(got, event.Type)
	}

	assert.Equal(t, []EventType{EventTypeJobQueued, EventTypeJobProcessing, EventTypeJobCompleted}, got)
	assert.True(t, got[2].Terminal())
	assert.False(t, got[1].Terminal())
	assert.True(t, EventTypeJobFailed.Terminal())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(&redis.Message{Payload: "{"})
	assert.Error(t, err)
}
