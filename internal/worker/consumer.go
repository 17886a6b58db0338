package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"
	"golang.org/x/time/rate"

	"mentora/backend/features/job"
	"mentora/backend/internal/middleware"
	"mentora/backend/internal/scrape"
	"mentora/backend/internal/text"
)

const (
	chunkTokens  = 512
	chunkOverlap = 50
)

// IngestConsumer drives one ingestion job end to end: scrape (when the
// text is not already known), chunk, embed, and atomically replace the
// stored vectors. Retries are scheduled by requeueing with the capped
// exponential delay from backoff.go.
//
// All failure categories consume generic retry attempts, including ones
// that look permanent (bad protocol, bad PDF header): a misbehaving proxy
// can produce the same symptoms transiently, and the attempt cap bounds
// the waste.
type IngestConsumer struct {
	scraper     Scraper
	embedder    Embedder
	store       EmbeddingStore
	jobs        JobTracker
	limiter     *rate.Limiter
	maxAttempts int
}

func NewIngestConsumer(s Scraper, e Embedder, st EmbeddingStore, jt JobTracker, startRate, maxAttempts int) *IngestConsumer {
	if startRate < 1 {
		startRate = 1
	}
	return &IngestConsumer{
		scraper:     s,
		embedder:    e,
		store:       st,
		jobs:        jt,
		limiter:     rate.NewLimiter(rate.Limit(startRate), startRate),
		maxAttempts: maxAttempts,
	}
}

func (h *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload IngestPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}
	if payload.JobID == "" || payload.DocumentID == "" {
		slog.Error("missing required fields, dropping", "job_id", payload.JobID, "document_id", payload.DocumentID)
		return nil
	}

	ctx := context.Background()
	if payload.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, payload.CorrelationID)
	}

	// Retries are scheduled manually with the capped exponential delay,
	// so the default NSQ auto-response must not race us.
	m.DisableAutoResponse()

	// Job starts are rate limited independently of the concurrency cap.
	if err := h.limiter.Wait(ctx); err != nil {
		m.RequeueWithoutBackoff(time.Second)
		return nil
	}

	attempt := int(m.Attempts)
	err := h.process(ctx, &payload, attempt)
	if err == nil {
		m.Finish()
		return nil
	}

	slog.ErrorContext(ctx, "ingestion job failed",
		"job_id", payload.JobID, "document_id", payload.DocumentID, "attempt", attempt, "error", err)

	terminal := attempt >= h.maxAttempts
	if trackErr := h.jobs.MarkFailed(ctx, payload.JobID, err.Error(), terminal); trackErr != nil {
		slog.WarnContext(ctx, "failed to record job failure", "job_id", payload.JobID, "error", trackErr)
	}

	if terminal {
		slog.ErrorContext(ctx, "retry budget exhausted, discarding job",
			"job_id", payload.JobID, "document_id", payload.DocumentID, "attempts", attempt)
		m.Finish()
		return nil
	}

	m.RequeueWithoutBackoff(RetryDelay(attempt))
	return nil
}

func (h *IngestConsumer) process(ctx context.Context, p *IngestPayload, attempt int) error {
	if err := h.jobs.MarkActive(ctx, p.JobID, attempt); err != nil {
		return fmt.Errorf("mark active: %w", err)
	}
	// Small non-zero progress right away so observers can tell the job is
	// alive.
	h.progress(ctx, p.JobID, 5)

	content := p.Content
	if p.Kind == job.KindScrapeEmbed {
		h.progress(ctx, p.JobID, 20)

		res := h.scraper.Scrape(ctx, p.URL, &scrape.Options{WaitSelector: p.WaitSelector})
		if !res.Success {
			return fmt.Errorf("scrape failed for %s: %s", p.URL, res.Error)
		}
		content = res.Content
		h.progress(ctx, p.JobID, 40)
	}

	h.progress(ctx, p.JobID, 50)

	pieces := text.ChunkText(content, chunkTokens, chunkOverlap)
	if len(pieces) == 0 && content != "" {
		// Direct-embedding jobs have no length floor; embed even trivially
		// short content as a single chunk.
		pieces = []string{content}
	}

	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		vector, err := h.embedder.Embed(ctx, piece)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, Chunk{DocumentID: p.DocumentID, Index: i, Content: piece, Vector: vector})
		h.progress(ctx, p.JobID, 50+(30*(i+1))/len(pieces))
	}

	h.progress(ctx, p.JobID, 90)

	// Stale vectors from a prior run are deleted in the same transaction
	// that inserts the new set.
	if err := h.store.Replace(ctx, p.DocumentID, chunks); err != nil {
		return fmt.Errorf("store embeddings: %w", err)
	}

	summary := job.ResultSummary{
		DocumentID:      p.DocumentID,
		Kind:            string(p.Kind),
		EmbeddingsCount: len(chunks),
		ContentLength:   len(content),
	}
	if err := h.jobs.MarkCompleted(ctx, p.JobID, summary); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	slog.InfoContext(ctx, "ingestion job completed",
		"job_id", p.JobID, "document_id", p.DocumentID, "embeddings", len(chunks), "content_length", len(content))
	return nil
}

func (h *IngestConsumer) progress(ctx context.Context, jobID string, pct int) {
	if err := h.jobs.UpdateProgress(ctx, jobID, pct); err != nil {
		slog.WarnContext(ctx, "failed to update progress", "job_id", jobID, "error", err)
	}
}
