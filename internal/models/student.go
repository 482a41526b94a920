package models

import "time"

// Student represents an enrolled learner. ParentUserID links the optional
// parent portal account used for attendance and payment views.
type Student struct {
	ID           string     `db:"id" json:"id"`
	FullName     string     `db:"full_name" json:"full_name"`
	Email        *string    `db:"email" json:"email,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	ParentUserID *string    `db:"parent_user_id" json:"parent_user_id,omitempty"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter describes query params for listing students.
type StudentFilter struct {
	Search    string
	Active    *bool
	ClassID   string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
