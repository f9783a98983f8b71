package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/rando-engine/internal/logger"
	"github.com/jwebster45206/rando-engine/internal/middleware"
	"github.com/jwebster45206/rando-engine/pkg/logic"
	"github.com/jwebster45206/rando-engine/pkg/storage"
	"github.com/jwebster45206/rando-engine/pkg/world"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, ErrorResponse{Error: msg})
}

// statusFor maps engine and storage errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, world.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidWorldName), errors.Is(err, world.ErrNoOrigin):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, logic.ErrPassBudget):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(log *slog.Logger, r *http.Request) *slog.Logger {
	if id := middleware.RequestID(r.Context()); id != "" {
		return logger.WithRequestID(log, id)
	}
	return log
}
