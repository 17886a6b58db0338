package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"mentora/backend/internal/middleware"
)

// JobCounter reports how many ingestion jobs sit in each status.
type JobCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// EmbeddingCounter reports the total number of stored embedding chunks.
type EmbeddingCounter interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	jobs       JobCounter
	embeddings EmbeddingCounter
}

func NewHandler(jobs JobCounter, embeddings EmbeddingCounter) *Handler {
	return &Handler{jobs: jobs, embeddings: embeddings}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	byStatus, err := h.jobs.CountByStatus(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count jobs", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if byStatus == nil {
		byStatus = map[string]int{}
	}

	total, err := h.embeddings.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count embeddings", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": map[string]interface{}{
			"jobs":       byStatus,
			"embeddings": total,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
