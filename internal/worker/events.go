package worker

import "mentora/backend/features/job"

// IngestPayload is the queue message for one ingestion job. Kind selects
// the variant: "embed" uses Content directly, "scrape-embed" resolves URL
// first.
type IngestPayload struct {
	JobID      string   `json:"job_id"`
	Kind       job.Kind `json:"kind"`
	DocumentID string   `json:"document_id"`

	// KindEmbed
	Content string `json:"content,omitempty"`

	// KindScrapeEmbed
	URL          string `json:"url,omitempty"`
	WaitSelector string `json:"wait_selector,omitempty"`

	CorrelationID string `json:"correlation_id,omitempty"`
}
