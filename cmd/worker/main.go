package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/rando-engine/internal/config"
	"github.com/jwebster45206/rando-engine/internal/logger"
	"github.com/jwebster45206/rando-engine/internal/queue"
	"github.com/jwebster45206/rando-engine/internal/services"
	"github.com/jwebster45206/rando-engine/internal/storage"
	"github.com/jwebster45206/rando-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Rando Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"default_world", cfg.DefaultWorld,
		"max_passes", cfg.MaxPasses)

	// Initialize storage service
	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.CacheTTL, log)
	if err != nil {
		log.Error("Failed to configure storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	if _, err := store.GetWorld(storageCtx, cfg.DefaultWorld); err != nil {
		log.Error("Failed to load default world", "world", cfg.DefaultWorld, "error", err)
		os.Exit(1)
	}
	log.Info("Storage service initialized successfully")

	// Initialize queue service; the worker shares its connection for locks
	// and events.
	queueCtx, queueCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer queueCancel()
	queueClient, err := queue.NewClient(queueCtx, cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	jobQueue := queue.NewJobQueue(queueClient)
	locator := services.NewLocator(store, cfg.MaxPasses, cfg.QueryTimeout)
	w := worker.New(jobQueue, locator, queueClient.Redis(), cfg.DefaultWorld, log, cfg.WorkerID)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- w.Start()
	}()

	log.Info("Worker started, waiting for jobs...", "worker_id", w.ID())

	select {
	case <-quit:
		log.Info("Worker shutdown signal received")
		w.Stop()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			log.Warn("Worker did not finish its current job in time")
		}
	case err := <-done:
		if err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Worker exited")
}
