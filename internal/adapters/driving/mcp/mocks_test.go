package mcp

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer *domain.Answer
	err    error

	question   string
	maxResults int
}

func (m *mockAskService) Ask(_ context.Context, question string, maxResults int) (*domain.Answer, error) {
	m.question = question
	m.maxResults = maxResults
	return m.answer, m.err
}

// mockRetrieveService is a mock implementation of driving.RetrieveService.
type mockRetrieveService struct {
	passages []domain.RetrievedPassage
	err      error
	topK     int
}

func (m *mockRetrieveService) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievedPassage, error) {
	m.topK = topK
	return m.passages, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats domain.IndexStats
	err   error
}

func (m *mockIndexService) Stats(_ context.Context) (domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) Create(_ context.Context, _ bool) error { return m.err }

func (m *mockIndexService) Drop(_ context.Context) error { return m.err }

// mockHealthService is a mock implementation of driving.HealthService.
type mockHealthService struct {
	report domain.HealthReport
}

func (m *mockHealthService) Check(_ context.Context) domain.HealthReport {
	return m.report
}
