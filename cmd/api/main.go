package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/rando-engine/internal/config"
	"github.com/jwebster45206/rando-engine/internal/handlers"
	"github.com/jwebster45206/rando-engine/internal/logger"
	"github.com/jwebster45206/rando-engine/internal/middleware"
	"github.com/jwebster45206/rando-engine/internal/queue"
	"github.com/jwebster45206/rando-engine/internal/services/events"
	"github.com/jwebster45206/rando-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Rando Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"default_world", cfg.DefaultWorld,
		"max_passes", cfg.MaxPasses)

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.CacheTTL, log)
	if err != nil {
		log.Error("Failed to configure storage", "error", err)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	// Load the default world up front so a broken data set fails at startup.
	if _, err := store.GetWorld(storageCtx, cfg.DefaultWorld); err != nil {
		log.Error("Failed to load default world", "world", cfg.DefaultWorld, "error", err)
		os.Exit(1)
	}

	queueClient, err := queue.NewClient(storageCtx, cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	jobQueue := queue.NewJobQueue(queueClient)
	broadcaster := events.NewBroadcaster(queueClient.Redis(), log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log))

	worldHandler := handlers.NewWorldHandler(store, log)
	mux.Handle("/v1/worlds", worldHandler)
	mux.Handle("/v1/worlds/", worldHandler)

	mux.Handle("/v1/abilities", handlers.NewAbilitiesHandler(store, cfg.DefaultWorld, log))
	mux.Handle("/v1/locations", handlers.NewLocationsHandler(store, cfg.DefaultWorld, cfg.MaxPasses, cfg.QueryTimeout, log))
	mux.Handle("/v1/jobs", handlers.NewJobsHandler(store, jobQueue, broadcaster, cfg.DefaultWorld, log))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.QueryTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := queueClient.Close(); err != nil {
		log.Error("Error closing queue client", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
