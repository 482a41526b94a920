package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/edulane/educenter-api/internal/models"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSession, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
	UpdateStatus(ctx context.Context, id string, status models.SessionStatus, note *string) error
}

// SessionService manages the dated occurrences materialised from class
// schedules.
type SessionService struct {
	repo   sessionRepository
	logger *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, logger: logger}
}

// List returns sessions plus pagination data.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSession, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
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
	return sessions, pagination, nil
}

// Get returns a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*models.ClassSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// sessionTransitions defines which lifecycle moves are legal for a session.
var sessionTransitions = map[models.SessionStatus][]models.SessionStatus{
	models.SessionStatusScheduled: {models.SessionStatusHeld, models.SessionStatusCancelled},
}

// ChangeStatus marks a session held or cancelled.
func (s *SessionService) ChangeStatus(ctx context.Context, id string, status models.SessionStatus, note *string) (*models.ClassSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	allowed := false
	for _, next := range sessionTransitions[session.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "illegal session status transition")
	}

	if err := s.repo.UpdateStatus(ctx, id, status, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session status")
	}
	session.Status = status
	session.Note = note
	return session, nil
}
