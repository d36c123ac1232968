package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the ask pipeline over HTTP.

Routes:
  GET  /         service status
  GET  /health   provider health (503 when unhealthy)
  GET  /metrics  Prometheus metrics
  POST /ask      {"question": "...", "max_results": 3}  (API key required)
  GET  /stats    index statistics                      (API key required)

Clients send "Authorization: Bearer <key>". Keys are configured as sha256
hashes in server.api_key_hashes; tokens signed with server.jwt_secret are
also accepted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr, :8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	cfg := serverConfig
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if cfg.Addr == "" {
		cfg.Addr = domain.DefaultServerAddr
	}

	server, err := httpapi.New(httpapi.Ports{
		Ask:    askService,
		Index:  indexService,
		Health: healthService,
	}, cfg)
	if err != nil {
		return err
	}

	stop := startBackgroundScheduler(cmd.Context())
	defer stop()

	logger.Info("HTTP API listening on %s", cfg.Addr)
	return server.Run(cmd.Context())
}
