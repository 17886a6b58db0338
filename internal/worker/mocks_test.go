package worker_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"mentora/backend/features/job"
	"mentora/backend/internal/scrape"
	"mentora/backend/internal/worker"
)

// Mocks

type MockScraper struct{ mock.Mock }

func (m *MockScraper) Scrape(ctx context.Context, url string, opts *scrape.Options) scrape.Result {
	args := m.Called(ctx, url, opts)
	return args.Get(0).(scrape.Result)
}

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockEmbeddingStore struct{ mock.Mock }

func (m *MockEmbeddingStore) Replace(ctx context.Context, documentID string, chunks []worker.Chunk) error {
	args := m.Called(ctx, documentID, chunks)
	return args.Error(0)
}

type MockJobTracker struct{ mock.Mock }

func (m *MockJobTracker) MarkActive(ctx context.Context, id string, attempt int) error {
	args := m.Called(ctx, id, attempt)
	return args.Error(0)
}

func (m *MockJobTracker) UpdateProgress(ctx context.Context, id string, progress int) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

func (m *MockJobTracker) MarkCompleted(ctx context.Context, id string, summary job.ResultSummary) error {
	args := m.Called(ctx, id, summary)
	return args.Error(0)
}

func (m *MockJobTracker) MarkFailed(ctx context.Context, id, errMsg string, terminal bool) error {
	args := m.Called(ctx, id, errMsg, terminal)
	return args.Error(0)
}
