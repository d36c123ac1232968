package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input to a port.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available for a backend.
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidConfig indicates a configuration value that cannot work,
	// such as a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrValidation indicates a caller supplied a bad question or result bound.
	// Never retried.
	ErrValidation = errors.New("validation error")

	// Provider stage errors. These may be transient.

	// ErrEmbeddingFailure indicates the embedding provider failed.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrSearchFailure indicates the vector index failed to answer a query.
	ErrSearchFailure = errors.New("search failure")

	// ErrGenerationFailure indicates the generation provider failed.
	ErrGenerationFailure = errors.New("generation failure")

	// ErrRateLimited indicates the provider rejected the call for quota or rate reasons.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransient indicates a provider failure that may succeed on retry (5xx, timeouts).
	ErrTransient = errors.New("transient provider failure")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIngestInProgress indicates an ingestion run is already active.
	ErrIngestInProgress = errors.New("ingest in progress")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)

// ValidationError describes a rejected request field.
type ValidationError struct {
	// Field is the offending input, e.g. "question" or "max_results".
	Field string

	// Message is safe to show to the caller.
	Message string
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports ErrValidation so callers can match on the category.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Stage identifies which provider call in a request failed.
type Stage string

// Pipeline stages.
const (
	StageEmbedding  Stage = "embedding"
	StageSearch     Stage = "search"
	StageGeneration Stage = "generation"
)

// Sentinel returns the category error for the stage.
func (s Stage) Sentinel() error {
	switch s {
	case StageEmbedding:
		return ErrEmbeddingFailure
	case StageSearch:
		return ErrSearchFailure
	case StageGeneration:
		return ErrGenerationFailure
	default:
		return nil
	}
}

// StageError tags a provider failure with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

// NewStageError wraps err with its stage. A nil err yields nil.
func NewStageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches the stage sentinel even when the wrapped error does not.
func (e *StageError) Is(target error) bool {
	s := e.Stage.Sentinel()
	return s != nil && target == s
}

// StageOf returns the stage of the first StageError in err's chain.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// ErrorCategory is the externally visible failure class of a request.
type ErrorCategory string

// Public error categories.
const (
	CategoryValidation ErrorCategory = "ValidationError"
	CategoryEmbedding  ErrorCategory = "EmbeddingFailure"
	CategorySearch     ErrorCategory = "SearchFailure"
	CategoryGeneration ErrorCategory = "GenerationFailure"
	CategoryInternal   ErrorCategory = "InternalError"
)

// UnavailableMessage is what callers see for any provider-stage failure.
const UnavailableMessage = "service temporarily unavailable, please retry"

// PublicError is the response-level failure returned by the ask pipeline.
// Message never contains provider error text; Err keeps the full chain for logs.
type PublicError struct {
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *PublicError) Error() string {
	return e.Message
}

func (e *PublicError) Unwrap() error {
	return e.Err
}

// CategoryOf classifies err into a public category.
func CategoryOf(err error) ErrorCategory {
	var pe *PublicError
	if errors.As(err, &pe) {
		return pe.Category
	}
	switch {
	case errors.Is(err, ErrValidation):
		return CategoryValidation
	case errors.Is(err, ErrEmbeddingFailure):
		return CategoryEmbedding
	case errors.Is(err, ErrSearchFailure):
		return CategorySearch
	case errors.Is(err, ErrGenerationFailure):
		return CategoryGeneration
	default:
		return CategoryInternal
	}
}

// IsRetryable reports whether err is a transient provider failure.
// Validation, configuration and auth failures are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidConfig) {
		return false
	}
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransient)
}
