// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// AskCompleted carries the outcome of one ask request back to the model.
type AskCompleted struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// StatusLoaded carries index statistics and provider health.
// Stats or Health is nil when the corresponding port is not configured.
type StatusLoaded struct {
	Stats    *domain.IndexStats
	StatsErr error
	Health   *domain.HealthReport
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question and answer view.
	ViewAsk
	// ViewStatus shows index statistics and provider health.
	ViewStatus
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewStatus:
		return "status"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
