package worker

import (
	"context"

	"mentora/backend/features/job"
	"mentora/backend/internal/scrape"
)

// Chunk is one unit of vectorized content headed for storage.
type Chunk struct {
	DocumentID string
	Index      int
	Content    string
	Vector     []float32
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingStore replaces a document's stored chunk set atomically:
// delete-then-insert inside one transaction, so a concurrent reader never
// observes a mix of old and new chunks.
type EmbeddingStore interface {
	Replace(ctx context.Context, documentID string, chunks []Chunk) error
}

type Scraper interface {
	Scrape(ctx context.Context, url string, opts *scrape.Options) scrape.Result
}

// JobTracker records state transitions for external monitors. Progress is
// monotonically non-decreasing and reaches 100 only on terminal success.
type JobTracker interface {
	MarkActive(ctx context.Context, id string, attempt int) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	MarkCompleted(ctx context.Context, id string, summary job.ResultSummary) error
	MarkFailed(ctx context.Context, id, errMsg string, terminal bool) error
}
