package mcp

import (
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Ask answers questions. Required.
	Ask driving.AskService

	// Retrieve returns ranked passages without generation.
	Retrieve driving.RetrieveService

	// Index reports index statistics.
	Index driving.IndexService

	// Health probes providers.
	Health driving.HealthService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
