package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/educenter-api/internal/models"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type timeSlotRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	ExistsByStartTime(ctx context.Context, startTime, excludeID string) (bool, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Deactivate(ctx context.Context, id string) error
}

// CreateTimeSlotRequest represents payload for creating catalog slots.
type CreateTimeSlotRequest struct {
	Label     string `json:"label" validate:"required,max=100"`
	StartTime string `json:"start_time" validate:"required,len=8"`
	EndTime   string `json:"end_time" validate:"required,len=8"`
}

// UpdateTimeSlotRequest represents payload for updating catalog slots.
type UpdateTimeSlotRequest struct {
	Label     string `json:"label" validate:"required,max=100"`
	StartTime string `json:"start_time" validate:"required,len=8"`
	EndTime   string `json:"end_time" validate:"required,len=8"`
	Active    *bool  `json:"active"`
}

const timeSlotCacheKey = "catalog:timeslots"

// TimeSlotService manages the global time-slot catalog. The catalog changes
// rarely, so reads go through the cache.
type TimeSlotService struct {
	repo      timeSlotRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService constructs a TimeSlotService.
func NewTimeSlotService(repo timeSlotRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns active catalog slots, cache-first.
func (s *TimeSlotService) List(ctx context.Context) ([]models.TimeSlot, error) {
	var cached []models.TimeSlot
	if hit, err := s.cache.Get(ctx, timeSlotCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	slots, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	_ = s.cache.Set(ctx, timeSlotCacheKey, slots, s.cacheTTL)
	return slots, nil
}

// Get returns a catalog slot by id.
func (s *TimeSlotService) Get(ctx context.Context, id string) (*models.TimeSlot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	return slot, nil
}

// Create adds a catalog slot. Start times are unique: the slot picker maps
// grid picks back to slots by start time alone.
func (s *TimeSlotService) Create(ctx context.Context, req CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if req.StartTime >= req.EndTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must precede end_time")
	}
	exists, err := s.repo.ExistsByStartTime(ctx, req.StartTime, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot start time")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a slot already starts at this time")
	}

	slot := &models.TimeSlot{
		Label:     strings.TrimSpace(req.Label),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Active:    true,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}
	_ = s.cache.Invalidate(ctx, timeSlotCacheKey)
	return slot, nil
}

// Update modifies a catalog slot.
func (s *TimeSlotService) Update(ctx context.Context, id string, req UpdateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if req.StartTime >= req.EndTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must precede end_time")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}

	exists, err := s.repo.ExistsByStartTime(ctx, req.StartTime, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot start time")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a slot already starts at this time")
	}

	slot.Label = strings.TrimSpace(req.Label)
	slot.StartTime = req.StartTime
	slot.EndTime = req.EndTime
	if req.Active != nil {
		slot.Active = *req.Active
	}

	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time slot")
	}
	_ = s.cache.Invalidate(ctx, timeSlotCacheKey)
	return slot, nil
}

// Deactivate retires a slot. Existing schedule entries keep referencing it.
func (s *TimeSlotService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate time slot")
	}
	_ = s.cache.Invalidate(ctx, timeSlotCacheKey)
	return nil
}
