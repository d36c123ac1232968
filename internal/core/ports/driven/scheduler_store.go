package driven

import (
	"context"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// SchedulerStore keeps scheduled job state and run history across restarts.
type SchedulerStore interface {
	// GetJob returns nil and no error when the job is unknown.
	GetJob(ctx context.Context, id string) (*domain.ScheduledJob, error)

	// ListJobs returns every job ordered by ID.
	ListJobs(ctx context.Context) ([]domain.ScheduledJob, error)

	// SaveJob inserts or replaces job by ID.
	SaveJob(ctx context.Context, job *domain.ScheduledJob) error

	RecordRun(ctx context.Context, run *domain.JobRun) error

	// RunHistory returns up to limit runs of a job, newest first.
	RunHistory(ctx context.Context, id string, limit int) ([]domain.JobRun, error)

	// PruneHistory drops all but the newest keep runs of each job.
	PruneHistory(ctx context.Context, keep int) error
}
