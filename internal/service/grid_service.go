package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/edulane/educenter-api/internal/dto"
	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/scheduling"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type gridEventRepository interface {
	ListEventsByTeacher(ctx context.Context, teacherID string) ([]models.ClassGridRow, error)
	ListEventsByRoom(ctx context.Context, roomID string) ([]models.ClassGridRow, error)
	ListEventsByClass(ctx context.Context, classID string) ([]models.ClassGridRow, error)
}

// GridService renders weekly schedule grids for teachers, rooms and classes.
// Grids are read-heavy and derived, so they are cached and invalidated on
// class writes.
type GridService struct {
	events   gridEventRepository
	slots    classTimeSlotRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewGridService constructs a GridService.
func NewGridService(events gridEventRepository, slots classTimeSlotRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *GridService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GridService{events: events, slots: slots, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// TeacherGrid returns the weekly grid of one teacher.
func (s *GridService) TeacherGrid(ctx context.Context, teacherID string) (*dto.GridResponse, error) {
	return s.grid(ctx, "teacher", teacherID, func() ([]models.ClassGridRow, error) {
		return s.events.ListEventsByTeacher(ctx, teacherID)
	})
}

// RoomGrid returns the weekly grid of one room.
func (s *GridService) RoomGrid(ctx context.Context, roomID string) (*dto.GridResponse, error) {
	return s.grid(ctx, "room", roomID, func() ([]models.ClassGridRow, error) {
		return s.events.ListEventsByRoom(ctx, roomID)
	})
}

// ClassGrid returns the weekly grid of one class.
func (s *GridService) ClassGrid(ctx context.Context, classID string) (*dto.GridResponse, error) {
	return s.grid(ctx, "class", classID, func() ([]models.ClassGridRow, error) {
		return s.events.ListEventsByClass(ctx, classID)
	})
}

// InvalidateAll drops every cached grid, called after class writes.
func (s *GridService) InvalidateAll(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "grid:*"); err != nil {
		s.logger.Warn("grid cache invalidation failed", zap.Error(err))
	}
}

func (s *GridService) grid(ctx context.Context, scope, scopeID string, load func() ([]models.ClassGridRow, error)) (*dto.GridResponse, error) {
	key := fmt.Sprintf("grid:%s:%s", scope, scopeID)
	var cached dto.GridResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	rows, err := load()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule events")
	}
	slots, err := s.slots.List(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot catalog")
	}

	events := make([]scheduling.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, scheduling.Event{
			Day:       scheduling.Weekday(row.DayOfWeek),
			SlotID:    row.TimeSlotID,
			ClassID:   row.ClassID,
			ClassName: row.ClassName,
			TeacherID: row.TeacherID,
			RoomID:    row.RoomID,
			Mode:      string(row.Mode),
		})
	}
	grid := scheduling.BuildGrid(events)

	// Emit cells in table order: slot rows top to bottom, Monday first.
	cells := make([]dto.GridCell, 0, grid.Len())
	for _, slot := range slots {
		for day := scheduling.Monday; day <= scheduling.Sunday; day++ {
			cellEvents := grid.Get(day, slot.ID)
			if len(cellEvents) == 0 {
				continue
			}
			sort.Slice(cellEvents, func(i, j int) bool { return cellEvents[i].ClassID < cellEvents[j].ClassID })
			cells = append(cells, dto.GridCell{Day: int(day), TimeSlotID: slot.ID, Events: cellEvents})
		}
	}

	resp := &dto.GridResponse{Scope: scope, ScopeID: scopeID, Slots: slots, Cells: cells}
	_ = s.cache.Set(ctx, key, resp, s.cacheTTL)
	return resp, nil
}
