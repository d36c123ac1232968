package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

// jobStore keeps scheduler state in the scheduled_jobs and job_runs tables.
// Timestamps are stored as Unix milliseconds; NULL means never.
type jobStore struct {
	db *sql.DB
}

var _ driven.SchedulerStore = (*jobStore)(nil)

const jobColumns = `id, name, schedule, enabled, last_run, last_success, next_run, last_error`

func (s *jobStore) GetJob(ctx context.Context, id string) (*domain.ScheduledJob, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM scheduled_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return job, err
}

func (s *jobStore) ListJobs(ctx context.Context) ([]domain.ScheduledJob, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM scheduled_jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.ScheduledJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (s *jobStore) SaveJob(ctx context.Context, job *domain.ScheduledJob) error {
	if job == nil {
		return domain.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scheduled_jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Name, job.Schedule, job.Enabled,
		millis(job.LastRun), millis(job.LastSuccess), millis(job.NextRun),
		sql.NullString{String: job.LastError, Valid: job.LastError != ""},
	)
	if err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *jobStore) RecordRun(ctx context.Context, run *domain.JobRun) error {
	if run == nil {
		return domain.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_runs (job_id, started_at, ended_at, success, error, passages, accepted)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.JobID, run.StartedAt.UnixMilli(), run.EndedAt.UnixMilli(), run.Success,
		sql.NullString{String: run.Error, Valid: run.Error != ""},
		run.Passages, run.Accepted,
	)
	if err != nil {
		return fmt.Errorf("record run of %s: %w", run.JobID, err)
	}
	return nil
}

func (s *jobStore) RunHistory(ctx context.Context, id string, limit int) ([]domain.JobRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT job_id, started_at, ended_at, success, error, passages, accepted
		FROM job_runs
		WHERE job_id = ?
		ORDER BY started_at DESC, seq DESC
		LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("run history of %s: %w", id, err)
	}
	defer rows.Close()

	var runs []domain.JobRun
	for rows.Next() {
		var (
			run            domain.JobRun
			started, ended int64
			errText        sql.NullString
		)
		if err := rows.Scan(&run.JobID, &started, &ended, &run.Success, &errText,
			&run.Passages, &run.Accepted); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.UnixMilli(started).UTC()
		run.EndedAt = time.UnixMilli(ended).UTC()
		run.Error = errText.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *jobStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM job_runs WHERE seq IN (
			SELECT seq FROM (
				SELECT seq, ROW_NUMBER() OVER (
					PARTITION BY job_id ORDER BY started_at DESC, seq DESC
				) AS pos
				FROM job_runs
			) WHERE pos > ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune run history: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*domain.ScheduledJob, error) {
	var (
		job                           domain.ScheduledJob
		lastRun, lastSuccess, nextRun sql.NullInt64
		lastError                     sql.NullString
	)
	err := row.Scan(&job.ID, &job.Name, &job.Schedule, &job.Enabled,
		&lastRun, &lastSuccess, &nextRun, &lastError)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	job.LastRun = fromMillis(lastRun)
	job.LastSuccess = fromMillis(lastSuccess)
	job.NextRun = fromMillis(nextRun)
	job.LastError = lastError.String
	return &job, nil
}

func millis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMilli(v.Int64).UTC()
}
