package models

import "time"

// EnrollmentStatus is the lifecycle phase of a student's membership.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
)

// Enrollment links a student to a class.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail includes student info for roster views.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
}
