package driving

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// Scheduler runs recurring corpus re-indexing.
type Scheduler interface {
	// Start runs due jobs until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop waits for in-flight jobs and returns.
	Stop() error

	// Jobs reports the persisted state of every job.
	Jobs(ctx context.Context) ([]domain.ScheduledJob, error)

	// History returns recent runs of a job, newest first.
	History(ctx context.Context, id string, limit int) ([]domain.JobRun, error)
}
