package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edulane/educenter-api/internal/models"
)

// AttendanceRepository provides persistence for attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert writes a student's mark for a session, overwriting a prior mark.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO attendance_records (id, session_id, student_id, status, note, marked_by, created_at, updated_at)
		VALUES (:id, :session_id, :student_id, :status, :note, :marked_by, :created_at, :updated_at)
		ON CONFLICT (session_id, student_id) DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance record: %w", err)
	}
	return nil
}

// ListBySession returns all marks recorded for one session.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, session_id, student_id, status, note, marked_by, created_at, updated_at FROM attendance_records WHERE session_id = $1 ORDER BY created_at ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("list attendance by session: %w", err)
	}
	return records, nil
}

// SummaryByClass aggregates marks per student across a class's sessions.
func (r *AttendanceRepository) SummaryByClass(ctx context.Context, classID string) ([]models.AttendanceSummary, error) {
	const query = `SELECT ar.student_id, s.full_name AS student_name,
			COUNT(*) FILTER (WHERE ar.status = 'PRESENT') AS present,
			COUNT(*) FILTER (WHERE ar.status = 'ABSENT') AS absent,
			COUNT(*) FILTER (WHERE ar.status = 'LATE') AS late,
			COUNT(*) FILTER (WHERE ar.status = 'EXCUSED') AS excused
		FROM attendance_records ar
		JOIN class_sessions cs ON cs.id = ar.session_id
		JOIN students s ON s.id = ar.student_id
		WHERE cs.class_id = $1
		GROUP BY ar.student_id, s.full_name
		ORDER BY s.full_name ASC`
	var summaries []models.AttendanceSummary
	if err := r.db.SelectContext(ctx, &summaries, query, classID); err != nil {
		return nil, fmt.Errorf("attendance summary by class: %w", err)
	}
	return summaries, nil
}
