package job_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mentora/backend/features/job"
	"mentora/backend/internal/config"
)

func TestService_EnqueueScrape_PersistsThenPublishes(t *testing.T) {
	repo := new(MockRepo)
	pub := new(MockPublisher)

	repo.On("HasActiveForDocument", mock.Anything, "doc1").Return(false, nil)

	var createdPayload []byte
	repo.On("Create", mock.Anything, mock.MatchedBy(func(j *job.Job) bool {
		createdPayload = j.Payload
		return j.ID != "" && j.DocumentID == "doc1" && j.Kind == job.KindScrapeEmbed && len(j.Payload) > 0
	})).Return(nil)

	pub.On("Publish", config.TopicEmbedTask, mock.MatchedBy(func(body []byte) bool {
		var p map[string]any
		if err := json.Unmarshal(body, &p); err != nil {
			return false
		}
		return p["document_id"] == "doc1" &&
			p["kind"] == "scrape-embed" &&
			p["url"] == "https://example.com/a" &&
			p["wait_selector"] == ".content"
	})).Return(nil)

	svc := job.NewService(repo, pub, nil)
	j, err := svc.EnqueueScrape(context.Background(), "doc1", "https://example.com/a", ".content")
	assert.NoError(t, err)
	assert.NotNil(t, j)

	// The stored payload is byte-identical to what went on the wire, so a
	// later retry can re-publish it verbatim.
	assert.Equal(t, createdPayload, []byte(j.Payload))

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestService_EnqueueEmbed_CarriesContent(t *testing.T) {
	repo := new(MockRepo)
	pub := new(MockPublisher)

	repo.On("HasActiveForDocument", mock.Anything, "doc2").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	pub.On("Publish", config.TopicEmbedTask, mock.MatchedBy(func(body []byte) bool {
		var p map[string]any
		json.Unmarshal(body, &p)
		return p["kind"] == "embed" && p["content"] == "Already extracted text."
	})).Return(nil)

	svc := job.NewService(repo, pub, nil)
	_, err := svc.EnqueueEmbed(context.Background(), "doc2", "Already extracted text.")
	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestService_Enqueue_RejectsDuplicateActive(t *testing.T) {
	repo := new(MockRepo)
	pub := new(MockPublisher)

	repo.On("HasActiveForDocument", mock.Anything, "doc1").Return(true, nil)

	svc := job.NewService(repo, pub, nil)
	_, err := svc.EnqueueEmbed(context.Background(), "doc1", "text")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already active")

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestService_Enqueue_RequiresDocumentID(t *testing.T) {
	svc := job.NewService(new(MockRepo), new(MockPublisher), nil)
	_, err := svc.EnqueueEmbed(context.Background(), "", "text")
	assert.Error(t, err)
}

func TestService_Enqueue_PublishFailureMarksJobFailed(t *testing.T) {
	repo := new(MockRepo)
	pub := new(MockPublisher)

	repo.On("HasActiveForDocument", mock.Anything, "doc1").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)
	repo.On("MarkFailed", mock.Anything, mock.Anything, mock.Anything, true).Return(nil)

	svc := job.NewService(repo, pub, nil)
	_, err := svc.EnqueueEmbed(context.Background(), "doc1", "text")
	assert.Error(t, err)
	repo.AssertExpectations(t)
}

func TestService_Retry_RepublishesStoredPayload(t *testing.T) {
	repo := new(MockRepo)
	pub := new(MockPublisher)

	payload := []byte(`{"job_id":"job1","kind":"embed","document_id":"doc1","content":"text"}`)
	repo.On("Get", mock.Anything, "job1").Return(&job.Job{
		ID: "job1", DocumentID: "doc1", Status: job.StatusFailed, Payload: payload,
	}, nil)
	repo.On("MarkQueued", mock.Anything, "job1").Return(nil)
	pub.On("Publish", config.TopicEmbedTask, payload).Return(nil)

	svc := job.NewService(repo, pub, nil)
	assert.NoError(t, svc.Retry(context.Background(), "job1"))
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestService_Retry_OnlyFailedJobs(t *testing.T) {
	repo := new(MockRepo)
	pub := new(MockPublisher)

	for _, status := range []job.Status{job.StatusQueued, job.StatusActive, job.StatusCompleted} {
		repo.On("Get", mock.Anything, "job-"+string(status)).Return(&job.Job{
			ID: "job-" + string(status), Status: status, Payload: []byte(`{}`),
		}, nil).Once()
	}

	svc := job.NewService(repo, pub, nil)
	for _, status := range []job.Status{job.StatusQueued, job.StatusActive, job.StatusCompleted} {
		err := svc.Retry(context.Background(), "job-"+string(status))
		assert.Error(t, err, string(status))
	}
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestService_TestURL_Delegates(t *testing.T) {
	prober := new(MockProber)
	prober.On("TestURL", mock.Anything, "https://example.com/a").Return(nil)

	svc := job.NewService(new(MockRepo), new(MockPublisher), prober)
	assert.NoError(t, svc.TestURL(context.Background(), "https://example.com/a"))
	prober.AssertExpectations(t)
}
