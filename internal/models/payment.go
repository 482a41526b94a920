package models

import "time"

// PaymentStatus tracks the state of a tuition payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusVoid    PaymentStatus = "VOID"
)

// Payment is a tuition payment attached to an enrollment. Amount is in the
// currency's minor unit.
type Payment struct {
	ID           string        `db:"id" json:"id"`
	EnrollmentID string        `db:"enrollment_id" json:"enrollment_id"`
	Amount       int64         `db:"amount" json:"amount"`
	Currency     string        `db:"currency" json:"currency"`
	Status       PaymentStatus `db:"status" json:"status"`
	Method       *string       `db:"method" json:"method,omitempty"`
	Reference    *string       `db:"reference" json:"reference,omitempty"`
	PaidAt       *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	EnrollmentID string
	ClassID      string
	StudentID    string
	Status       PaymentStatus
	Page         int
	PageSize     int
}
