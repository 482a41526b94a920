package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edulane/educenter-api/internal/models"
)

// ClassRepository provides persistence for classes, their weekly schedule
// entries and materialised sessions.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = "id, name, subject, teacher_id, room_id, mode, status, start_date, end_date, total_sessions, capacity, tuition_fee, created_at, updated_at"

// List returns classes with optional filtering and pagination.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	base := "FROM classes WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Mode != "" {
		conditions = append(conditions, fmt.Sprintf("mode = $%d", len(args)+1))
		args = append(args, filter.Mode)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR subject ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"subject":    true,
		"start_date": true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "start_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", classColumns, base, sortBy, order, size, offset)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}

	return classes, total, nil
}

// FindByID loads a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM classes WHERE id = $1", classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// GetSchedule returns a class's weekly entries ordered by day then slot start.
func (r *ClassRepository) GetSchedule(ctx context.Context, classID string) ([]models.ScheduleEntry, error) {
	const query = `SELECT se.id, se.class_id, se.day_of_week, se.time_slot_id FROM schedule_entries se JOIN time_slots ts ON ts.id = se.time_slot_id WHERE se.class_id = $1 ORDER BY se.day_of_week ASC, ts.start_time ASC`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, classID); err != nil {
		return nil, fmt.Errorf("get class schedule: %w", err)
	}
	return entries, nil
}

// Create stores the class, its schedule entries and its materialised
// sessions in one transaction.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class, entries []models.ScheduleEntry, sessions []models.ClassSession) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create class: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	const insertClass = `INSERT INTO classes (id, name, subject, teacher_id, room_id, mode, status, start_date, end_date, total_sessions, capacity, tuition_fee, created_at, updated_at) VALUES (:id, :name, :subject, :teacher_id, :room_id, :mode, :status, :start_date, :end_date, :total_sessions, :capacity, :tuition_fee, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertClass, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}

	if err = r.insertSchedule(ctx, tx, class.ID, entries); err != nil {
		return err
	}
	if err = r.insertSessions(ctx, tx, class.ID, sessions); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create class: %w", err)
	}
	return nil
}

// Update rewrites the class row and replaces its schedule and any sessions
// that have not been held yet.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class, entries []models.ScheduleEntry, sessions []models.ClassSession) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update class: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	class.UpdatedAt = time.Now().UTC()
	const updateClass = `UPDATE classes SET name = :name, subject = :subject, teacher_id = :teacher_id, room_id = :room_id, mode = :mode, status = :status, start_date = :start_date, end_date = :end_date, total_sessions = :total_sessions, capacity = :capacity, tuition_fee = :tuition_fee, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, updateClass, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_entries WHERE class_id = $1`, class.ID); err != nil {
		return fmt.Errorf("clear class schedule: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM class_sessions WHERE class_id = $1 AND status = 'SCHEDULED'`, class.ID); err != nil {
		return fmt.Errorf("clear pending sessions: %w", err)
	}

	if err = r.insertSchedule(ctx, tx, class.ID, entries); err != nil {
		return err
	}
	if err = r.insertSessions(ctx, tx, class.ID, sessions); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update class: %w", err)
	}
	return nil
}

func (r *ClassRepository) insertSchedule(ctx context.Context, tx *sqlx.Tx, classID string, entries []models.ScheduleEntry) error {
	const query = `INSERT INTO schedule_entries (id, class_id, day_of_week, time_slot_id) VALUES (:id, :class_id, :day_of_week, :time_slot_id)`
	for i := range entries {
		entry := entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.ClassID = classID
		if _, err := tx.NamedExecContext(ctx, query, &entry); err != nil {
			return fmt.Errorf("insert schedule entry: %w", err)
		}
		entries[i] = entry
	}
	return nil
}

func (r *ClassRepository) insertSessions(ctx context.Context, tx *sqlx.Tx, classID string, sessions []models.ClassSession) error {
	const query = `INSERT INTO class_sessions (id, class_id, time_slot_id, date, sequence, status, note, created_at, updated_at) VALUES (:id, :class_id, :time_slot_id, :date, :sequence, :status, :note, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range sessions {
		session := sessions[i]
		if session.ID == "" {
			session.ID = uuid.NewString()
		}
		session.ClassID = classID
		if session.Status == "" {
			session.Status = models.SessionStatusScheduled
		}
		session.CreatedAt = now
		session.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, &session); err != nil {
			return fmt.Errorf("insert class session: %w", err)
		}
		sessions[i] = session
	}
	return nil
}

// UpdateStatus moves a class through its lifecycle.
func (r *ClassRepository) UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE classes SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update class status: %w", err)
	}
	return nil
}

// ListTeacherBusy returns the committed weekday/slot/date-range intervals for
// a teacher across non-cancelled classes, optionally excluding one class
// (used when updating that class).
func (r *ClassRepository) ListTeacherBusy(ctx context.Context, teacherID, excludeClassID string) ([]models.BusyInterval, error) {
	query := `SELECT c.id AS class_id, c.name AS class_name, se.day_of_week, se.time_slot_id, c.start_date, c.end_date FROM classes c JOIN schedule_entries se ON se.class_id = c.id WHERE c.teacher_id = $1 AND c.status NOT IN ('CANCELLED', 'FINISHED')`
	args := []interface{}{teacherID}
	if excludeClassID != "" {
		query += ` AND c.id <> $2`
		args = append(args, excludeClassID)
	}

	var busy []models.BusyInterval
	if err := r.db.SelectContext(ctx, &busy, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher busy intervals: %w", err)
	}
	return busy, nil
}

// ListRoomBusy returns the committed intervals occupying a room.
func (r *ClassRepository) ListRoomBusy(ctx context.Context, roomID, excludeClassID string) ([]models.BusyInterval, error) {
	query := `SELECT c.id AS class_id, c.name AS class_name, se.day_of_week, se.time_slot_id, c.start_date, c.end_date FROM classes c JOIN schedule_entries se ON se.class_id = c.id WHERE c.room_id = $1 AND c.status NOT IN ('CANCELLED', 'FINISHED')`
	args := []interface{}{roomID}
	if excludeClassID != "" {
		query += ` AND c.id <> $2`
		args = append(args, excludeClassID)
	}

	var busy []models.BusyInterval
	if err := r.db.SelectContext(ctx, &busy, query, args...); err != nil {
		return nil, fmt.Errorf("list room busy intervals: %w", err)
	}
	return busy, nil
}

// ListEventsByTeacher returns grid events for every active class the teacher
// runs, one row per schedule entry.
func (r *ClassRepository) ListEventsByTeacher(ctx context.Context, teacherID string) ([]models.ClassGridRow, error) {
	const query = `SELECT c.id AS class_id, c.name AS class_name, c.teacher_id, COALESCE(c.room_id, '') AS room_id, c.mode, se.day_of_week, se.time_slot_id FROM classes c JOIN schedule_entries se ON se.class_id = c.id WHERE c.teacher_id = $1 AND c.status NOT IN ('CANCELLED', 'FINISHED')`
	var rows []models.ClassGridRow
	if err := r.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher grid events: %w", err)
	}
	return rows, nil
}

// ListEventsByRoom returns grid events for every active class in the room.
func (r *ClassRepository) ListEventsByRoom(ctx context.Context, roomID string) ([]models.ClassGridRow, error) {
	const query = `SELECT c.id AS class_id, c.name AS class_name, c.teacher_id, COALESCE(c.room_id, '') AS room_id, c.mode, se.day_of_week, se.time_slot_id FROM classes c JOIN schedule_entries se ON se.class_id = c.id WHERE c.room_id = $1 AND c.status NOT IN ('CANCELLED', 'FINISHED')`
	var rows []models.ClassGridRow
	if err := r.db.SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, fmt.Errorf("list room grid events: %w", err)
	}
	return rows, nil
}

// ListEventsByClass returns grid events for one class.
func (r *ClassRepository) ListEventsByClass(ctx context.Context, classID string) ([]models.ClassGridRow, error) {
	const query = `SELECT c.id AS class_id, c.name AS class_name, c.teacher_id, COALESCE(c.room_id, '') AS room_id, c.mode, se.day_of_week, se.time_slot_id FROM classes c JOIN schedule_entries se ON se.class_id = c.id WHERE c.id = $1`
	var rows []models.ClassGridRow
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("list class grid events: %w", err)
	}
	return rows, nil
}
