package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/educenter-api/internal/models"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
	SummaryByClass(ctx context.Context, classID string) ([]models.AttendanceSummary, error)
}

type attendanceSessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
}

type attendanceEnrollmentRepository interface {
	ExistsActive(ctx context.Context, classID, studentID string) (bool, error)
}

// MarkAttendanceRequest is one student's mark within a bulk marking call.
type MarkAttendanceRequest struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
	Note      *string                 `json:"note" validate:"omitempty,max=500"`
}

// AttendanceService records per-session attendance marks.
type AttendanceService struct {
	repo        attendanceRepository
	sessions    attendanceSessionRepository
	enrollments attendanceEnrollmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, sessions attendanceSessionRepository, enrollments attendanceEnrollmentRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, sessions: sessions, enrollments: enrollments, validator: validate, logger: logger}
}

// Mark upserts marks for a session. Marks are only accepted for scheduled or
// held sessions and only for students actively enrolled in the class;
// repeating a mark overwrites the previous one.
func (s *AttendanceService) Mark(ctx context.Context, sessionID, markedBy string, marks []MarkAttendanceRequest) ([]models.AttendanceRecord, error) {
	if len(marks) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no attendance marks supplied")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.Status == models.SessionStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot mark attendance on a cancelled session")
	}

	records := make([]models.AttendanceRecord, 0, len(marks))
	for _, mark := range marks {
		if err := s.validator.Struct(mark); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance mark")
		}
		if !mark.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status "+string(mark.Status))
		}
		enrolled, err := s.enrollments.ExistsActive(ctx, session.ClassID, mark.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
		if !enrolled {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student "+mark.StudentID+" is not enrolled in this class")
		}

		record := models.AttendanceRecord{
			SessionID: sessionID,
			StudentID: mark.StudentID,
			Status:    mark.Status,
			Note:      mark.Note,
			MarkedBy:  markedBy,
		}
		if err := s.repo.Upsert(ctx, &record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance")
		}
		records = append(records, record)
	}

	s.logger.Info("attendance marked",
		zap.String("session_id", sessionID),
		zap.Int("marks", len(records)))
	return records, nil
}

// BySession lists every mark of one session.
func (s *AttendanceService) BySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	records, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// ClassSummary aggregates per-student counts across a class.
func (s *AttendanceService) ClassSummary(ctx context.Context, classID string) ([]models.AttendanceSummary, error) {
	summary, err := s.repo.SummaryByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}
	return summary, nil
}
