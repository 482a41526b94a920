package models

import "time"

// AttendanceStatus is the per-student mark for one session.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
)

// Valid reports whether the status is one of the known marks.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// AttendanceRecord stores one student's mark for one session. There is at
// most one record per (session, student); repeated marking overwrites.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	SessionID string           `db:"session_id" json:"session_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Note      *string          `db:"note" json:"note,omitempty"`
	MarkedBy  string           `db:"marked_by" json:"marked_by"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceSummary aggregates a student's marks across a class.
type AttendanceSummary struct {
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
	Present     int    `db:"present" json:"present"`
	Absent      int    `db:"absent" json:"absent"`
	Late        int    `db:"late" json:"late"`
	Excused     int    `db:"excused" json:"excused"`
}
