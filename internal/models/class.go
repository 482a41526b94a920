package models

import "time"

// ClassMode distinguishes in-person from remote delivery.
type ClassMode string

const (
	ClassModeOffline ClassMode = "OFFLINE"
	ClassModeOnline  ClassMode = "ONLINE"
)

// ClassStatus is the lifecycle phase of a class.
type ClassStatus string

const (
	ClassStatusDraft     ClassStatus = "DRAFT"
	ClassStatusOpen      ClassStatus = "OPEN"
	ClassStatusRunning   ClassStatus = "RUNNING"
	ClassStatusFinished  ClassStatus = "FINISHED"
	ClassStatusCancelled ClassStatus = "CANCELLED"
)

// Class is a course offering with a weekly recurring schedule. EndDate is
// always derived server-side from StartDate, the schedule and TotalSessions.
type Class struct {
	ID            string      `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	Subject       string      `db:"subject" json:"subject"`
	TeacherID     string      `db:"teacher_id" json:"teacher_id"`
	RoomID        *string     `db:"room_id" json:"room_id,omitempty"`
	Mode          ClassMode   `db:"mode" json:"mode"`
	Status        ClassStatus `db:"status" json:"status"`
	StartDate     time.Time   `db:"start_date" json:"start_date"`
	EndDate       time.Time   `db:"end_date" json:"end_date"`
	TotalSessions int         `db:"total_sessions" json:"total_sessions"`
	Capacity      int         `db:"capacity" json:"capacity"`
	TuitionFee    int64       `db:"tuition_fee" json:"tuition_fee"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// ScheduleEntry is one weekly-recurrence unit of a class: DayOfWeek follows
// the ISO convention (1=Monday .. 7=Sunday).
type ScheduleEntry struct {
	ID         string `db:"id" json:"id"`
	ClassID    string `db:"class_id" json:"class_id"`
	DayOfWeek  int    `db:"day_of_week" json:"day_of_week"`
	TimeSlotID string `db:"time_slot_id" json:"time_slot_id"`
}

// ClassDetail bundles a class with its schedule for responses.
type ClassDetail struct {
	Class
	Schedule []ScheduleEntry `json:"schedule"`
}

// ClassFilter describes query params for listing classes.
type ClassFilter struct {
	TeacherID string
	RoomID    string
	Status    ClassStatus
	Mode      ClassMode
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// BusyInterval is a committed occupied weekday/slot/date-range, as returned
// by the free-busy queries for a teacher or room.
type BusyInterval struct {
	ClassID    string    `db:"class_id" json:"class_id"`
	ClassName  string    `db:"class_name" json:"class_name"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	TimeSlotID string    `db:"time_slot_id" json:"time_slot_id"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
}

// ClassGridRow is one (class, weekday, slot) row backing the weekly grid
// views, one per schedule entry of an active class.
type ClassGridRow struct {
	ClassID    string    `db:"class_id" json:"class_id"`
	ClassName  string    `db:"class_name" json:"class_name"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	Mode       ClassMode `db:"mode" json:"mode"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	TimeSlotID string    `db:"time_slot_id" json:"time_slot_id"`
}

// ScheduleConflict describes an existing commitment that blocks a candidate
// schedule. Dimension is TEACHER or ROOM.
type ScheduleConflict struct {
	Dimension  string    `json:"dimension"`
	ClassID    string    `json:"class_id"`
	ClassName  string    `json:"class_name"`
	DayOfWeek  int       `json:"day_of_week"`
	TimeSlotID string    `json:"time_slot_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// ScheduleConflictError is returned when a candidate schedule collides with
// committed intervals.
type ScheduleConflictError struct {
	Message   string             `json:"message"`
	Conflicts []ScheduleConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
