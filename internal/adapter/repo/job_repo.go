package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"creationhub/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// Create inserts a new generation job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.GenerationJob) error {
	query := `
INSERT INTO generation_jobs (id, external_task_id, user_id, prompt, duration, platform, format, status, progress)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.ExternalTaskID,
		job.UserID,
		job.Prompt,
		job.Duration,
		job.Platform,
		job.Format,
		job.Status,
		job.Progress,
	)
	return err
}

// UpdateStatus records a lifecycle transition. Result URL and error
// message are only overwritten when non-empty, so a completed row keeps
// its URL across redundant updates.
func (r *JobRepositoryPG) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, progress int, resultURL, errMsg string) error {
	query := `
UPDATE generation_jobs
SET status = $2,
    progress = $3,
    result_url = COALESCE(NULLIF($4, ''), result_url),
    error_message = COALESCE(NULLIF($5, ''), error_message),
    updated_at = NOW()
WHERE id = $1;
`
	_, err := r.pool.Exec(ctx, query, jobID, status, domain.ClampProgress(progress), resultURL, errMsg)
	return err
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.GenerationJob, error) {
	query := `
SELECT id, external_task_id, user_id, prompt, duration, platform, format, status, progress, COALESCE(result_url, ''), COALESCE(error_message, ''), created_at, updated_at
FROM generation_jobs
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, jobID)
	var job domain.GenerationJob
	if err := row.Scan(
		&job.ID,
		&job.ExternalTaskID,
		&job.UserID,
		&job.Prompt,
		&job.Duration,
		&job.Platform,
		&job.Format,
		&job.Status,
		&job.Progress,
		&job.ResultURL,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}
