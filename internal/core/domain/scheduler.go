package domain

import "time"

// JobCorpusReindex re-ingests the whole documentation corpus.
const JobCorpusReindex = "corpus-reindex"

// ScheduledJob is the persisted state of a recurring job. The state
// survives restarts so that a missed run is caught up on the next start.
type ScheduledJob struct {
	ID       string
	Name     string
	Schedule string // cron expression, e.g. "0 3 * * *"
	Enabled  bool

	LastRun     time.Time
	LastSuccess time.Time
	NextRun     time.Time
	LastError   string
}

// Due reports whether the job should run at now.
func (j ScheduledJob) Due(now time.Time) bool {
	return j.Enabled && (j.NextRun.IsZero() || !j.NextRun.After(now))
}

// JobRun records one execution of a scheduled job.
type JobRun struct {
	JobID     string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// Passages produced by the run and how many of them the index accepted.
	Passages int
	Accepted int
}

// Duration is how long the run took.
func (r JobRun) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// JobConfig enables a job and sets its cron schedule.
type JobConfig struct {
	Enabled  bool
	Schedule string
}

// SchedulerConfig is the scheduler section of the settings.
type SchedulerConfig struct {
	// Enabled switches the whole scheduler on or off.
	Enabled bool
	Jobs    map[string]JobConfig
}

// Job returns the configuration for id, or the zero JobConfig.
func (c *SchedulerConfig) Job(id string) JobConfig {
	return c.Jobs[id]
}

// DefaultSchedulerConfig re-indexes the corpus nightly.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		Jobs: map[string]JobConfig{
			JobCorpusReindex: {Enabled: true, Schedule: "0 3 * * *"},
		},
	}
}
