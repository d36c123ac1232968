package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// errorHandler renders errors as {"error": msg}. Only validation and
// public messages reach the client.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.ErrorFields(err, "http request failed", map[string]any{
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			"path":       c.Request().URL.Path,
		})
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, errorBody{Error: msg})
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}

	var pe *domain.PublicError
	if errors.As(err, &pe) {
		if pe.Category == domain.CategoryValidation {
			return http.StatusBadRequest, pe.Message
		}
		return http.StatusServiceUnavailable, pe.Message
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, msgKeyInvalid
	case errors.Is(err, domain.ErrVectorIndexUnavailable),
		errors.Is(err, domain.ErrSearchFailure):
		return http.StatusServiceUnavailable, domain.UnavailableMessage
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
