package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edulane/educenter-api/internal/models"
)

// ExportJobRepository provides persistence for asynchronous export jobs.
type ExportJobRepository struct {
	db *sqlx.DB
}

// NewExportJobRepository creates a new export job repository.
func NewExportJobRepository(db *sqlx.DB) *ExportJobRepository {
	return &ExportJobRepository{db: db}
}

// Create stores a new pending export job.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = models.ExportJobPending
	}

	const query = `INSERT INTO export_jobs (id, scope, scope_id, format, status, file_path, error, requested_by, created_at, updated_at) VALUES (:id, :scope, :scope_id, :format, :status, :file_path, :error, :requested_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// FindByID loads an export job by id.
func (r *ExportJobRepository) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	const query = `SELECT id, scope, scope_id, format, status, file_path, error, requested_by, created_at, updated_at FROM export_jobs WHERE id = $1`
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkRunning flips a job into the running state.
func (r *ExportJobRepository) MarkRunning(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE export_jobs SET status = 'RUNNING', updated_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark export job running: %w", err)
	}
	return nil
}

// MarkCompleted records the produced file path.
func (r *ExportJobRepository) MarkCompleted(ctx context.Context, id, filePath string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE export_jobs SET status = 'COMPLETED', file_path = $2, updated_at = $3 WHERE id = $1`, id, filePath, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark export job completed: %w", err)
	}
	return nil
}

// MarkFailed records the failure reason.
func (r *ExportJobRepository) MarkFailed(ctx context.Context, id, reason string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE export_jobs SET status = 'FAILED', error = $2, updated_at = $3 WHERE id = $1`, id, reason, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark export job failed: %w", err)
	}
	return nil
}
