package models

import "time"

// SessionStatus is the lifecycle phase of a single class meeting.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "SCHEDULED"
	SessionStatusHeld      SessionStatus = "HELD"
	SessionStatusCancelled SessionStatus = "CANCELLED"
)

// ClassSession is one dated occurrence of a class, materialised from the
// weekly pattern when the class is created. Attendance hangs off sessions.
type ClassSession struct {
	ID         string        `db:"id" json:"id"`
	ClassID    string        `db:"class_id" json:"class_id"`
	TimeSlotID string        `db:"time_slot_id" json:"time_slot_id"`
	Date       time.Time     `db:"date" json:"date"`
	Sequence   int           `db:"sequence" json:"sequence"`
	Status     SessionStatus `db:"status" json:"status"`
	Note       *string       `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	ClassID  string
	From     *time.Time
	To       *time.Time
	Status   SessionStatus
	Page     int
	PageSize int
}
