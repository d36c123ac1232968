package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskService answers one question end to end: validate, retrieve, generate.
// It holds no per-request state and is safe for concurrent use.
type AskService struct {
	retriever *Retriever
	answerer  *Answerer
}

// NewAskService creates an ask pipeline.
func NewAskService(retriever *Retriever, answerer *Answerer) *AskService {
	return &AskService{
		retriever: retriever,
		answerer:  answerer,
	}
}

// Ask validates the request, retrieves passages and generates an answer.
// Validation failures are returned as *domain.ValidationError. Provider
// failures are returned as *domain.PublicError carrying only a generic
// message; the detail is logged against the request id.
func (s *AskService) Ask(ctx context.Context, question string, maxResults int) (*domain.Answer, error) {
	query := domain.Query{Question: question, MaxResults: maxResults}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	start := time.Now()

	passages, err := s.retriever.Retrieve(ctx, question, maxResults)
	if err != nil {
		return nil, s.fail(requestID, err)
	}

	text, used, err := s.answerer.answer(ctx, question, passages)
	if err != nil {
		return nil, s.fail(requestID, err)
	}

	logger.InfoFields("ask completed", map[string]any{
		"request_id":   requestID,
		"sources_used": used,
		"duration_ms":  time.Since(start).Milliseconds(),
	})

	return &domain.Answer{
		Question:    question,
		Text:        text,
		SourcesUsed: used,
		Sources:     domain.SummariseSources(passages[:used]),
	}, nil
}

// fail logs the internal error and converts it to its public form.
func (s *AskService) fail(requestID string, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}

	category := domain.CategoryOf(err)
	fields := map[string]any{
		"request_id": requestID,
		"category":   string(category),
	}
	if stage, ok := domain.StageOf(err); ok {
		fields["stage"] = string(stage)
	}
	if isCancelled(err) {
		logger.InfoFields("ask cancelled", fields)
	} else {
		logger.ErrorFields(err, "ask failed", fields)
	}

	return &domain.PublicError{
		Category: category,
		Message:  domain.UnavailableMessage,
		Err:      err,
	}
}
