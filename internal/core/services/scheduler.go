package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is the number of runs retained per job.
const historyKeep = 100

// jobNames maps known job IDs to display names.
var jobNames = map[string]string{
	domain.JobCorpusReindex: "Corpus re-index",
}

// Scheduler re-indexes the corpus on a cron schedule. Job state lives in
// a SchedulerStore, so a run missed while the process was down fires on
// the next start. A job never overlaps with itself.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	ingest driving.IngestService

	tick time.Duration
	now  func() time.Time

	mu      sync.Mutex
	running bool
	busy    map[string]bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler that polls the store once a minute.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	ingest driving.IngestService,
) *Scheduler {
	return &Scheduler{
		config: config,
		store:  store,
		ingest: ingest,
		tick:   time.Minute,
		now:    time.Now,
		busy:   make(map[string]bool),
	}
}

// Start syncs the configured jobs into the store and then runs due jobs
// until ctx is cancelled or Stop is called. A disabled scheduler returns
// at once.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running || !s.config.Enabled {
		enabled := s.config.Enabled
		s.mu.Unlock()
		if !enabled {
			logger.Info("Scheduler disabled")
		}
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.syncJobs(ctx); err != nil {
		logger.Error(err, "scheduler: failed to sync jobs")
	}

	s.dispatch(ctx)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.dispatch(ctx)
		}
	}
}

// Stop ends the loop and waits for in-flight jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Jobs returns the stored state of every job.
func (s *Scheduler) Jobs(ctx context.Context) ([]domain.ScheduledJob, error) {
	return s.store.ListJobs(ctx)
}

// History returns up to limit recent runs of a job.
func (s *Scheduler) History(ctx context.Context, id string, limit int) ([]domain.JobRun, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.RunHistory(ctx, id, limit)
}

// NextRun returns the first activation of a cron expression after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: schedule %q: %v", domain.ErrInvalidConfig, schedule, err)
	}
	next := expr.Next(from)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("%w: schedule %q never fires", domain.ErrInvalidConfig, schedule)
	}
	return next, nil
}

// syncJobs writes the configured jobs to the store. A changed schedule
// resets the next run; an unchanged one keeps the stored next run so
// that overdue jobs still fire.
func (s *Scheduler) syncJobs(ctx context.Context) error {
	ids := make([]string, 0, len(s.config.Jobs))
	for id := range s.config.Jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	for _, id := range ids {
		cfg := s.config.Job(id)
		if cfg.Schedule == "" {
			continue
		}
		if err := s.syncJob(ctx, id, cfg); err != nil {
			errs = append(errs, fmt.Errorf("job %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) syncJob(ctx context.Context, id string, cfg domain.JobConfig) error {
	next, err := NextRun(cfg.Schedule, s.now())
	if err != nil {
		return err
	}

	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case job == nil:
		name := jobNames[id]
		if name == "" {
			name = id
		}
		job = &domain.ScheduledJob{ID: id, Name: name, Schedule: cfg.Schedule, NextRun: next}
	case job.Schedule != cfg.Schedule:
		job.Schedule = cfg.Schedule
		job.NextRun = next
	}
	job.Enabled = cfg.Enabled

	return s.store.SaveJob(ctx, job)
}

// dispatch launches every due job that is not already running.
func (s *Scheduler) dispatch(ctx context.Context) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		logger.Error(err, "scheduler: failed to list jobs")
		return
	}

	now := s.now()
	for _, job := range jobs {
		if !job.Due(now) || !s.claim(job.ID) {
			continue
		}
		s.wg.Add(1)
		go func(job domain.ScheduledJob) {
			defer s.wg.Done()
			defer s.release(job.ID)
			s.execute(ctx, &job)
		}(job)
	}
}

func (s *Scheduler) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[id] {
		logger.Debug("scheduler: %s still running, skipping", id)
		return false
	}
	s.busy[id] = true
	return true
}

func (s *Scheduler) release(id string) {
	s.mu.Lock()
	delete(s.busy, id)
	s.mu.Unlock()
}

// execute runs one job and persists its outcome and next activation.
func (s *Scheduler) execute(ctx context.Context, job *domain.ScheduledJob) {
	run := &domain.JobRun{JobID: job.ID, StartedAt: s.now()}

	var err error
	switch job.ID {
	case domain.JobCorpusReindex:
		err = s.reindex(ctx, run)
	default:
		logger.Warn("scheduler: no handler for job %s", job.ID)
		return
	}
	run.EndedAt = s.now()

	job.LastRun = run.StartedAt
	if err != nil {
		run.Error = err.Error()
		job.LastError = run.Error
		logger.Error(err, "scheduler: job %s failed", job.ID)
	} else {
		run.Success = true
		job.LastError = ""
		job.LastSuccess = run.EndedAt
		logger.Info("scheduler: job %s finished in %s (%d/%d passages indexed)",
			job.ID, run.Duration().Round(time.Second), run.Accepted, run.Passages)
	}

	if next, nextErr := NextRun(job.Schedule, run.EndedAt); nextErr != nil {
		logger.Error(nextErr, "scheduler: disabling job %s", job.ID)
		job.Enabled = false
	} else {
		job.NextRun = next
	}

	if err := s.store.SaveJob(ctx, job); err != nil {
		logger.Error(err, "scheduler: failed to save job %s", job.ID)
	}
	if err := s.store.RecordRun(ctx, run); err != nil {
		logger.Error(err, "scheduler: failed to record run of %s", job.ID)
	}
	if err := s.store.PruneHistory(ctx, historyKeep); err != nil {
		logger.Error(err, "scheduler: failed to prune history")
	}
}

// reindex re-ingests the whole corpus and fills in the run counters.
func (s *Scheduler) reindex(ctx context.Context, run *domain.JobRun) error {
	if s.ingest == nil {
		return errors.New("ingest service not configured")
	}
	report, err := s.ingest.Run(ctx, domain.IngestOptions{})
	if report != nil {
		run.Passages = report.Passages
		run.Accepted = report.Upsert.Accepted
	}
	return err
}
