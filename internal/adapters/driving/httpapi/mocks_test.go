package httpapi

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

type mockAskService struct {
	answer *domain.Answer
	err    error

	calls      int
	maxResults int
}

func (m *mockAskService) Ask(_ context.Context, question string, maxResults int) (*domain.Answer, error) {
	m.calls++
	m.maxResults = maxResults
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Question: question, Text: "answer", Sources: []domain.SourceSummary{}}, nil
}

type mockIndexService struct {
	stats domain.IndexStats
	err   error
}

func (m *mockIndexService) Stats(_ context.Context) (domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) Create(_ context.Context, _ bool) error { return m.err }

func (m *mockIndexService) Drop(_ context.Context) error { return m.err }

type mockHealthService struct {
	report domain.HealthReport
}

func (m *mockHealthService) Check(_ context.Context) domain.HealthReport {
	return m.report
}
