// Package tui provides an interactive terminal interface for asking
// questions about the indexed documentation.
package tui

import (
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Ask answers questions. Required.
	Ask driving.AskService

	// Index reports index statistics on the status view.
	Index driving.IndexService

	// Health probes providers on the status view.
	Health driving.HealthService
}

// NewPorts creates a Ports aggregate with the required ask service.
func NewPorts(ask driving.AskService) *Ports {
	return &Ports{Ask: ask}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
