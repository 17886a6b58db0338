package job_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"mentora/backend/features/job"
)

// MockRepo implements job.Repository
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Create(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockRepo) Get(ctx context.Context, id string) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockRepo) List(ctx context.Context) ([]job.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]job.Job), args.Error(1)
}

func (m *MockRepo) HasActiveForDocument(ctx context.Context, documentID string) (bool, error) {
	args := m.Called(ctx, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepo) MarkActive(ctx context.Context, id string, attempt int) error {
	args := m.Called(ctx, id, attempt)
	return args.Error(0)
}

func (m *MockRepo) UpdateProgress(ctx context.Context, id string, progress int) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

func (m *MockRepo) MarkCompleted(ctx context.Context, id string, summary job.ResultSummary) error {
	args := m.Called(ctx, id, summary)
	return args.Error(0)
}

func (m *MockRepo) MarkFailed(ctx context.Context, id, errMsg string, terminal bool) error {
	args := m.Called(ctx, id, errMsg, terminal)
	return args.Error(0)
}

func (m *MockRepo) MarkQueued(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// MockPublisher implements job.TaskPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, body []byte) error {
	args := m.Called(topic, body)
	return args.Error(0)
}

// MockProber implements job.Prober
type MockProber struct {
	mock.Mock
}

func (m *MockProber) TestURL(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
