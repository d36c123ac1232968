package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("httpapi: ask service is required")

const (
	// maxBodyBytes caps request bodies; questions are at most 500 characters.
	maxBodyBytes = "64K"

	shutdownTimeout = 10 * time.Second
)

// Ports aggregates the driving ports the HTTP API calls.
type Ports struct {
	Ask    driving.AskService
	Index  driving.IndexService
	Health driving.HealthService
}

// Config configures the server.
type Config struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string

	// APIKeyHashes are accepted sha256 key digests. Empty means the demo key.
	APIKeyHashes []string

	// JWTSecret enables HS256 bearer tokens when set.
	JWTSecret string

	// AzureConfigured is reported by the root route.
	AzureConfigured bool
}

// Server is the HTTP API.
type Server struct {
	ports   Ports
	config  Config
	echo    *echo.Echo
	auth    *Authenticator
	metrics *Metrics
}

// New builds the server and its routes.
func New(ports Ports, config Config) (*Server, error) {
	if ports.Ask == nil {
		return nil, ErrMissingAskService
	}

	s := &Server{
		ports:   ports,
		config:  config,
		echo:    echo.New(),
		auth:    NewAuthenticator(config.APIKeyHashes, config.JWTSecret),
		metrics: NewMetrics(),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.BodyLimit(maxBodyBytes))
	e.Use(s.metrics.Middleware())
	e.Use(requestLogger())

	e.GET("/", s.handleRoot)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", s.metrics.Handler())

	protected := e.Group("", s.auth.Middleware())
	protected.POST("/ask", s.handleAsk)
	protected.GET("/stats", s.handleStats)

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Addr
	if addr == "" {
		addr = ":8000"
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// requestLogger writes one structured line per request.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}
			logger.InfoFields("http request", map[string]any{
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     status,
				"latency_ms": time.Since(start).Milliseconds(),
			})
			return err
		}
	}
}
