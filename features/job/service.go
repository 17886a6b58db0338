package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"mentora/backend/internal/config"
	"mentora/backend/internal/middleware"
)

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

// Prober pre-flight-checks a URL's reachability without extracting
// content. Satisfied by the scrape orchestrator.
type Prober interface {
	TestURL(ctx context.Context, url string) error
}

// Service is the programmatic job submission interface consumed by the
// article publish/admin flows, plus read access for dashboards.
type Service struct {
	repo   Repository
	pub    TaskPublisher
	prober Prober
}

func NewService(repo Repository, pub TaskPublisher, prober Prober) *Service {
	return &Service{repo: repo, pub: pub, prober: prober}
}

// EnqueueEmbed submits a direct-embedding job for text that is already
// known. No minimum length applies here; the 100-character floor is a
// scrape acceptance rule only.
func (s *Service) EnqueueEmbed(ctx context.Context, documentID, content string) (*Job, error) {
	return s.enqueue(ctx, documentID, KindEmbed, map[string]any{
		"content": content,
	})
}

// EnqueueScrape submits a scrape-then-embed job for an external URL.
func (s *Service) EnqueueScrape(ctx context.Context, documentID, url, waitSelector string) (*Job, error) {
	payload := map[string]any{"url": url}
	if waitSelector != "" {
		payload["wait_selector"] = waitSelector
	}
	return s.enqueue(ctx, documentID, KindScrapeEmbed, payload)
}

func (s *Service) enqueue(ctx context.Context, documentID string, kind Kind, fields map[string]any) (*Job, error) {
	if documentID == "" {
		return nil, fmt.Errorf("document id is required")
	}

	// The queue itself does not enforce one-active-job-per-document; the
	// producer does.
	active, err := s.repo.HasActiveForDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fmt.Errorf("an ingestion job is already active for document %s", documentID)
	}

	j := &Job{ID: uuid.New().String(), DocumentID: documentID, Kind: kind, Status: StatusQueued}

	msg := map[string]any{
		"job_id":         j.ID,
		"kind":           string(kind),
		"document_id":    documentID,
		"correlation_id": middleware.GetCorrelationID(ctx),
	}
	for k, v := range fields {
		msg[k] = v
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	j.Payload = body

	// The row (including the exact payload) is persisted before publishing
	// so a terminal failure can be retried verbatim later.
	if err := s.repo.Create(ctx, j); err != nil {
		return nil, err
	}

	if err := s.pub.Publish(config.TopicEmbedTask, body); err != nil {
		if failErr := s.repo.MarkFailed(ctx, j.ID, "failed to publish job: "+err.Error(), true); failErr != nil {
			slog.ErrorContext(ctx, "failed to record publish failure", "job_id", j.ID, "error", failErr)
		}
		return nil, fmt.Errorf("publish job: %w", err)
	}

	slog.InfoContext(ctx, "ingestion job enqueued", "job_id", j.ID, "document_id", documentID, "kind", kind)
	return j, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Job, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Job, error) {
	return s.repo.List(ctx)
}

// Retry re-publishes the stored payload of a terminally failed job.
func (s *Service) Retry(ctx context.Context, id string) error {
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if j.Status != StatusFailed {
		return fmt.Errorf("job %s is %s, only failed jobs can be retried", id, j.Status)
	}
	if len(j.Payload) == 0 {
		return fmt.Errorf("job %s has no stored payload", id)
	}

	if err := s.repo.MarkQueued(ctx, id); err != nil {
		return err
	}
	if err := s.pub.Publish(config.TopicEmbedTask, j.Payload); err != nil {
		return fmt.Errorf("publish job: %w", err)
	}

	slog.InfoContext(ctx, "failed job re-enqueued", "job_id", id, "document_id", j.DocumentID)
	return nil
}

// TestURL is the pre-flight reachability probe exposed to producers.
func (s *Service) TestURL(ctx context.Context, url string) error {
	return s.prober.TestURL(ctx, url)
}
