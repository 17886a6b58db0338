package job

import (
	"encoding/json"
	"time"
)

type Kind string

const (
	// KindEmbed carries article text that is already known.
	KindEmbed Kind = "embed"
	// KindScrapeEmbed carries a URL whose text must be fetched first.
	KindScrapeEmbed Kind = "scrape-embed"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is the durable record of one ingestion job: kind, target document,
// live progress, retry attempts, and the terminal outcome. The payload is
// the exact message published to the queue, kept so a terminally failed
// job can be re-published as-is.
type Job struct {
	ID              string          `json:"id"`
	DocumentID      string          `json:"document_id"`
	Kind            Kind            `json:"kind"`
	Status          Status          `json:"status"`
	Progress        int             `json:"progress"`
	Attempts        int             `json:"attempts"`
	Error           string          `json:"error,omitempty"`
	EmbeddingsCount int             `json:"embeddings_count"`
	ContentLength   int             `json:"content_length"`
	Payload         json.RawMessage `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ResultSummary is the terminal success report exposed to dashboards.
type ResultSummary struct {
	DocumentID      string `json:"document_id"`
	Kind            string `json:"kind"`
	EmbeddingsCount int    `json:"embeddings_count"`
	ContentLength   int    `json:"content_length"`
}
