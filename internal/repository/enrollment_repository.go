package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edulane/educenter-api/internal/models"
)

// EnrollmentRepository provides persistence for class enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID loads an enrollment by id.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, class_id, student_id, status, created_at, updated_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByClass returns the roster of a class, newest first.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.class_id, e.student_id, e.status, e.created_at, e.updated_at, s.full_name AS student_name FROM enrollments e JOIN students s ON s.id = e.student_id WHERE e.class_id = $1 ORDER BY e.created_at DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, classID); err != nil {
		return nil, fmt.Errorf("list enrollments by class: %w", err)
	}
	return enrollments, nil
}

// ListByStudent returns everything the student is or was enrolled in.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT id, class_id, student_id, status, created_at, updated_at FROM enrollments WHERE student_id = $1 ORDER BY created_at DESC`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments by student: %w", err)
	}
	return enrollments, nil
}

// CountActiveByClass returns the number of active enrollments in a class.
func (r *EnrollmentRepository) CountActiveByClass(ctx context.Context, classID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE class_id = $1 AND status = 'ACTIVE'`, classID); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// ExistsActive reports whether the student is already actively enrolled.
func (r *EnrollmentRepository) ExistsActive(ctx context.Context, classID, studentID string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM enrollments WHERE class_id = $1 AND student_id = $2 AND status = 'ACTIVE' LIMIT 1`, classID, studentID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check active enrollment: %w", err)
}

// Create stores a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}

	const query = `INSERT INTO enrollments (id, class_id, student_id, status, created_at, updated_at) VALUES (:id, :class_id, :student_id, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Withdraw marks an enrollment as withdrawn.
func (r *EnrollmentRepository) Withdraw(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE enrollments SET status = 'WITHDRAWN', updated_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("withdraw enrollment: %w", err)
	}
	return nil
}
