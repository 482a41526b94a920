package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/educenter-api/internal/models"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
}

type paymentEnrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

// CreatePaymentRequest represents payload for recording a tuition payment.
type CreatePaymentRequest struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	Amount       int64   `json:"amount" validate:"required,min=1"`
	Currency     string  `json:"currency" validate:"required,len=3"`
	Method       *string `json:"method" validate:"omitempty,max=50"`
	Reference    *string `json:"reference" validate:"omitempty,max=100"`
}

// PaymentService records tuition payments against enrollments.
type PaymentService struct {
	repo        paymentRepository
	enrollments paymentEnrollmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, enrollments paymentEnrollmentRepository, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns payments plus pagination data.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return payments, pagination, nil
}

// Get returns a payment by id.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// Create records a pending payment against an enrollment.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	if _, err := s.enrollments.FindByID(ctx, req.EnrollmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	payment := &models.Payment{
		EnrollmentID: req.EnrollmentID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       models.PaymentStatusPending,
		Method:       normalizeOptional(req.Method),
		Reference:    normalizeOptional(req.Reference),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	return payment, nil
}

// MarkPaid settles a pending payment.
func (s *PaymentService) MarkPaid(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only pending payments can be settled")
	}

	now := time.Now().UTC()
	payment.Status = models.PaymentStatusPaid
	payment.PaidAt = &now
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}
	return payment, nil
}

// Void cancels a pending payment.
func (s *PaymentService) Void(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only pending payments can be voided")
	}

	payment.Status = models.PaymentStatusVoid
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}
	return payment, nil
}
