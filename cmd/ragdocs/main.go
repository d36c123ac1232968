// Command ragdocs answers questions about the Python documentation.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx, version, newSetup(os.Environ)); err != nil {
		logger.Debug("command failed: %v", err)
		cancel()
		os.Exit(1)
	}
}
