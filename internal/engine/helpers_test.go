package engine

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/daveenci-ai/leadchat-backend/internal/config"
	"github.com/daveenci-ai/leadchat-backend/internal/models"
	"github.com/daveenci-ai/leadchat-backend/internal/providers"
)

// fakeProvider is a controllable generation backend for tests.
type fakeProvider struct {
	mu    sync.Mutex
	resp  *providers.CompletionResponse
	err   error
	block bool // hold the call until the context deadline fires
	calls int
}

func (f *fakeProvider) Name() string          { return "fake" }
func (f *fakeProvider) ValidateConfig() error { return nil }

func (f *fakeProvider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	f.mu.Lock()
	f.calls++
	block, err, resp := f.block, f.err, f.resp
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memoryRepo is an in-memory SummaryRepository.
type memoryRepo struct {
	mu          sync.Mutex
	saved       []*models.ChatSummary
	failSave    bool
	priorVisits map[string]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{priorVisits: make(map[string]int)}
}

func (m *memoryRepo) Save(ctx context.Context, summary *models.ChatSummary) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return "", context.DeadlineExceeded
	}
	id := "summary-1"
	summary.ID = id
	m.saved = append(m.saved, summary)
	return id, nil
}

func (m *memoryRepo) Get(ctx context.Context, id string) (*models.ChatSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.saved {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) List(ctx context.Context, limit, offset int) ([]*models.ChatSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ChatSummary(nil), m.saved...), nil
}

func (m *memoryRepo) CountPriorVisits(ctx context.Context, email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.priorVisits[email], nil
}

func (m *memoryRepo) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Model:               "test-model",
		TimeoutSeconds:      1,
		ConfidenceThreshold: 0.5,
		HistoryWindow:       12,
	}
}

func goodResponse(content string) *providers.CompletionResponse {
	return &providers.CompletionResponse{
		ID:         "resp-1",
		Model:      "test-model",
		Content:    content,
		Confidence: 0.9,
	}
}
