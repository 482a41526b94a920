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

// TimeSlotRepository provides persistence for the global time-slot catalog.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time-slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// List returns the full catalog ordered by start time. When activeOnly is
// set, retired slots are omitted.
func (r *TimeSlotRepository) List(ctx context.Context, activeOnly bool) ([]models.TimeSlot, error) {
	query := `SELECT id, label, start_time, end_time, active, created_at, updated_at FROM time_slots`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY start_time ASC`

	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// FindByID loads one catalog slot.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	const query = `SELECT id, label, start_time, end_time, active, created_at, updated_at FROM time_slots WHERE id = $1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ExistsByStartTime reports whether another slot already begins at the time.
func (r *TimeSlotRepository) ExistsByStartTime(ctx context.Context, startTime, excludeID string) (bool, error) {
	args := []interface{}{startTime}
	query := `SELECT 1 FROM time_slots WHERE start_time = $1`
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	query += ` LIMIT 1`

	var one int
	err := r.db.GetContext(ctx, &one, query, args...)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check slot start time: %w", err)
}

// Create stores a new catalog slot.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	const query = `INSERT INTO time_slots (id, label, start_time, end_time, active, created_at, updated_at) VALUES (:id, :label, :start_time, :end_time, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// Update modifies a catalog slot.
func (r *TimeSlotRepository) Update(ctx context.Context, slot *models.TimeSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_slots SET label = :label, start_time = :start_time, end_time = :end_time, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	return nil
}

// Deactivate retires a slot without breaking classes that reference it.
func (r *TimeSlotRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE time_slots SET active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate time slot: %w", err)
	}
	return nil
}
