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

// PaymentRepository provides persistence for tuition payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments with optional filtering and pagination.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	base := "FROM payments p WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.EnrollmentID != "" {
		conditions = append(conditions, fmt.Sprintf("p.enrollment_id = $%d", len(args)+1))
		args = append(args, filter.EnrollmentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("p.enrollment_id IN (SELECT id FROM enrollments WHERE class_id = $%d)", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("p.enrollment_id IN (SELECT id FROM enrollments WHERE student_id = $%d)", len(args)+1))
		args = append(args, filter.StudentID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT p.id, p.enrollment_id, p.amount, p.currency, p.status, p.method, p.reference, p.paid_at, p.created_at, p.updated_at %s ORDER BY p.created_at DESC LIMIT %d OFFSET %d", base, size, offset)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	return payments, total, nil
}

// FindByID loads a payment by id.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	const query = `SELECT id, enrollment_id, amount, currency, status, method, reference, paid_at, created_at, updated_at FROM payments WHERE id = $1`
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create stores a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}

	const query = `INSERT INTO payments (id, enrollment_id, amount, currency, status, method, reference, paid_at, created_at, updated_at) VALUES (:id, :enrollment_id, :amount, :currency, :status, :method, :reference, :paid_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update rewrites a payment's mutable fields.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE payments SET amount = :amount, currency = :currency, status = :status, method = :method, reference = :reference, paid_at = :paid_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}
