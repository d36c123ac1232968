package driving

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// HealthService probes external dependencies.
type HealthService interface {
	// Check probes every configured component.
	Check(ctx context.Context) domain.HealthReport
}
