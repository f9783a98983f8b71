package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/rando-engine/internal/logger"
	"github.com/jwebster45206/rando-engine/internal/queue"
	"github.com/jwebster45206/rando-engine/internal/services/events"
	queuePkg "github.com/jwebster45206/rando-engine/pkg/queue"
)

type options struct {
	redisURL  string
	worldName string
	items     []string
	techs     []string
	start     string
	wait      time.Duration
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	opts := &options{}
	var items, techs string

	fs.StringVar(&opts.redisURL, "redis", "redis://localhost:6379", "redis address or URL")
	fs.StringVar(&opts.worldName, "world", "sm", "world name")
	fs.StringVar(&items, "items", "Morph,Missile,Bombs", "comma separated items")
	fs.StringVar(&techs, "techs", "", "comma separated techs")
	fs.StringVar(&opts.start, "start", "Morphing Ball", "name of the origin node")
	fs.DurationVar(&opts.wait, "wait", 0, "wait this long for a worker to finish the job (0 = don't wait)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.start) == "" {
		return nil, errors.New("-start is required")
	}
	opts.items = splitList(items)
	opts.techs = splitList(techs)
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	log := logger.NewCLI(slog.LevelWarn, os.Stderr)

	client, err := queue.NewClient(ctx, opts.redisURL, log)
	if err != nil {
		return err
	}
	defer client.Close()

	job := &queuePkg.Job{
		ID:         uuid.NewString(),
		World:      opts.worldName,
		Items:      opts.items,
		Techs:      opts.techs,
		Start:      opts.start,
		EnqueuedAt: time.Now(),
	}

	broadcaster := events.NewBroadcaster(client.Redis(), log)

	// Subscribe before enqueueing so a fast worker's events are not lost.
	var waitFor func() (*events.Event, error)
	if opts.wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, opts.wait)
		defer cancel()
		sub, err := broadcaster.Subscribe(waitCtx, job.ID)
		if err != nil {
			return err
		}
		defer sub.Close()
		waitFor = func() (*events.Event, error) {
			for {
				msg, err := sub.ReceiveMessage(waitCtx)
				if err != nil {
					return nil, fmt.Errorf("waiting for job %s: %w", job.ID, err)
				}
				event, err := events.Decode(msg)
				if err != nil {
					return nil, err
				}
				if event.Type.Terminal() {
					return event, nil
				}
				fmt.Fprintf(out, "  %s\n", event.Type)
			}
		}
	}

	jobQueue := queue.NewJobQueue(client)
	if err := jobQueue.Enqueue(ctx, job); err != nil {
		return err
	}
	depth, err := jobQueue.Depth(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Enqueued job %s (queue depth %d)\n", job.ID, depth)

	if waitFor == nil {
		return nil
	}
	event, err := waitFor()
	if err != nil {
		return err
	}
	if event.Type == events.EventTypeJobFailed {
		return fmt.Errorf("job %s failed on %s: %v", job.ID, event.Worker, event.Data["error"])
	}
	fmt.Fprintf(out, "Job %s completed on %s: %v\n", job.ID, event.Worker, event.Data["result"])
	return nil
}
