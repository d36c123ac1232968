package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// rootResponse is returned by GET /.
type rootResponse struct {
	Message         string `json:"message"`
	AzureConfigured bool   `json:"azure_configured"`
}

// askRequest is the body of POST /ask. MaxResults defaults to 3 when absent.
type askRequest struct {
	Question   string `json:"question"`
	MaxResults *int   `json:"max_results"`
}

// healthResponse is returned by GET /health.
type healthResponse struct {
	Status string `json:"status"`
	domain.HealthReport
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, rootResponse{
		Message:         "RAG MVP is running!",
		AzureConfigured: s.config.AzureConfigured,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	if s.ports.Health == nil {
		return c.JSON(http.StatusOK, healthResponse{Status: "healthy", HealthReport: domain.HealthReport{
			Healthy:    true,
			Components: []domain.ComponentHealth{},
		}})
	}

	report := s.ports.Health.Check(c.Request().Context())
	if report.Healthy {
		return c.JSON(http.StatusOK, healthResponse{Status: "healthy", HealthReport: report})
	}
	return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", HealthReport: report})
}

func (s *Server) handleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	maxResults := domain.DefaultTopK
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}

	answer, err := s.ports.Ask.Ask(c.Request().Context(), req.Question, maxResults)
	s.metrics.ObserveAsk(err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, answer)
}

func (s *Server) handleStats(c echo.Context) error {
	if s.ports.Index == nil {
		return domain.ErrVectorIndexUnavailable
	}
	stats, err := s.ports.Index.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
