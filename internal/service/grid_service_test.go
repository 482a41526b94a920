package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/educenter-api/internal/models"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type mockGridEvents struct {
	byTeacher map[string][]models.ClassGridRow
	byRoom    map[string][]models.ClassGridRow
	byClass   map[string][]models.ClassGridRow
}

func (m *mockGridEvents) ListEventsByTeacher(ctx context.Context, teacherID string) ([]models.ClassGridRow, error) {
	return m.byTeacher[teacherID], nil
}

func (m *mockGridEvents) ListEventsByRoom(ctx context.Context, roomID string) ([]models.ClassGridRow, error) {
	return m.byRoom[roomID], nil
}

func (m *mockGridEvents) ListEventsByClass(ctx context.Context, classID string) ([]models.ClassGridRow, error) {
	return m.byClass[classID], nil
}

type memoryCacheRepo struct {
	values map[string][]byte
	sets   int
	gets   int
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	return appErrors.ErrCacheMiss
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	m.values[key] = nil
	m.sets++
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = nil
	return nil
}

func TestGridServiceTeacherGrid(t *testing.T) {
	events := &mockGridEvents{byTeacher: map[string][]models.ClassGridRow{
		"t1": {
			{ClassID: "c1", ClassName: "Math A1", TeacherID: "t1", RoomID: "r1", Mode: models.ClassModeOffline, DayOfWeek: 1, TimeSlotID: "s1"},
			{ClassID: "c2", ClassName: "Math A2", TeacherID: "t1", RoomID: "r2", Mode: models.ClassModeOffline, DayOfWeek: 1, TimeSlotID: "s2"},
			{ClassID: "c1", ClassName: "Math A1", TeacherID: "t1", RoomID: "r1", Mode: models.ClassModeOffline, DayOfWeek: 3, TimeSlotID: "s1"},
		},
	}}
	slots := &mockSlotCatalog{slots: []models.TimeSlot{
		{ID: "s1", Label: "Evening 1", StartTime: "18:00:00", EndTime: "19:30:00", Active: true},
		{ID: "s2", Label: "Evening 2", StartTime: "19:45:00", EndTime: "21:15:00", Active: true},
	}}
	cacheRepo := &memoryCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewGridService(events, slots, cache, time.Minute, nil)

	grid, err := svc.TeacherGrid(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "teacher", grid.Scope)
	require.Len(t, grid.Cells, 3)

	// Slot rows come first in catalog order, days left to right.
	assert.Equal(t, "s1", grid.Cells[0].TimeSlotID)
	assert.Equal(t, 1, grid.Cells[0].Day)
	assert.Equal(t, "s1", grid.Cells[1].TimeSlotID)
	assert.Equal(t, 3, grid.Cells[1].Day)
	assert.Equal(t, "s2", grid.Cells[2].TimeSlotID)
	assert.Equal(t, 1, grid.Cells[2].Day)
	assert.Equal(t, 1, cacheRepo.sets)
}

func TestGridServiceEmptyScope(t *testing.T) {
	events := &mockGridEvents{}
	slots := &mockSlotCatalog{slots: []models.TimeSlot{{ID: "s1", StartTime: "18:00:00", Active: true}}}
	svc := NewGridService(events, slots, nil, time.Minute, nil)

	grid, err := svc.RoomGrid(context.Background(), "r-unknown")
	require.NoError(t, err)
	assert.Empty(t, grid.Cells)
	assert.Equal(t, "room", grid.Scope)
}
