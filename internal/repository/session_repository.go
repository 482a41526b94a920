package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edulane/educenter-api/internal/models"
)

// SessionRepository provides persistence for materialised class sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns sessions matching the filter, chronologically.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSession, int, error) {
	base := "FROM class_sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, class_id, time_slot_id, date, sequence, status, note, created_at, updated_at %s ORDER BY date ASC, sequence ASC LIMIT %d OFFSET %d", base, size, offset)
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	return sessions, total, nil
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	const query = `SELECT id, class_id, time_slot_id, date, sequence, status, note, created_at, updated_at FROM class_sessions WHERE id = $1`
	var session models.ClassSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateStatus records whether a session was held or cancelled.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id string, status models.SessionStatus, note *string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE class_sessions SET status = $2, note = $3, updated_at = $4 WHERE id = $1`, id, status, note, time.Now().UTC()); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}
