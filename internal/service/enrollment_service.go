package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/educenter-api/internal/models"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByClass(ctx context.Context, classID string) ([]models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	CountActiveByClass(ctx context.Context, classID string) (int, error)
	ExistsActive(ctx context.Context, classID, studentID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Withdraw(ctx context.Context, id string) error
}

type enrollmentClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type enrollmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// EnrollRequest represents payload for enrolling a student.
type EnrollRequest struct {
	ClassID   string `json:"class_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}

// EnrollmentService manages class rosters: capacity, duplicates and the class
// lifecycle gate.
type EnrollmentService struct {
	repo      enrollmentRepository
	classes   enrollmentClassRepository
	students  enrollmentStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, classes enrollmentClassRepository, students enrollmentStudentRepository, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, classes: classes, students: students, validator: validate, logger: logger}
}

// Enroll adds a student to a class when the class is open or running, the
// student is not already on the roster and capacity allows.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.Status != models.ClassStatusOpen && class.Status != models.ClassStatusRunning {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "class is not accepting enrollments")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is inactive")
	}

	exists, err := s.repo.ExistsActive(ctx, req.ClassID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this class")
	}

	if class.Capacity > 0 {
		count, err := s.repo.CountActiveByClass(ctx, req.ClassID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		if count >= class.Capacity {
			return nil, appErrors.Clone(appErrors.ErrClassFull, "")
		}
	}

	enrollment := &models.Enrollment{
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		Status:    models.EnrollmentStatusActive,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.logger.Info("student enrolled",
		zap.String("class_id", req.ClassID),
		zap.String("student_id", req.StudentID))
	return enrollment, nil
}

// Withdraw removes a student from the roster.
func (s *EnrollmentService) Withdraw(ctx context.Context, id string) error {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status == models.EnrollmentStatusWithdrawn {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment already withdrawn")
	}
	if err := s.repo.Withdraw(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw enrollment")
	}
	return nil
}

// Roster returns the enrollments of one class with student names.
func (s *EnrollmentService) Roster(ctx context.Context, classID string) ([]models.EnrollmentDetail, error) {
	roster, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return roster, nil
}

// ByStudent lists everything one student is or was enrolled in.
func (s *EnrollmentService) ByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}
