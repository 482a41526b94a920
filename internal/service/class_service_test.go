package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/educenter-api/internal/models"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type mockClassRepo struct {
	classes     map[string]*models.Class
	schedules   map[string][]models.ScheduleEntry
	teacherBusy []models.BusyInterval
	roomBusy    []models.BusyInterval

	created         *models.Class
	createdEntries  []models.ScheduleEntry
	createdSessions []models.ClassSession
	updated         *models.Class
	statusUpdates   map[string]models.ClassStatus
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	var out []models.Class
	for _, c := range m.classes {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) GetSchedule(ctx context.Context, classID string) ([]models.ScheduleEntry, error) {
	return m.schedules[classID], nil
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class, entries []models.ScheduleEntry, sessions []models.ClassSession) error {
	if class.ID == "" {
		class.ID = "generated"
	}
	cp := *class
	m.created = &cp
	m.createdEntries = entries
	m.createdSessions = sessions
	if m.classes == nil {
		m.classes = make(map[string]*models.Class)
	}
	m.classes[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class, entries []models.ScheduleEntry, sessions []models.ClassSession) error {
	cp := *class
	m.updated = &cp
	m.createdEntries = entries
	m.createdSessions = sessions
	m.classes[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error {
	if m.statusUpdates == nil {
		m.statusUpdates = make(map[string]models.ClassStatus)
	}
	m.statusUpdates[id] = status
	return nil
}

func (m *mockClassRepo) ListTeacherBusy(ctx context.Context, teacherID, excludeClassID string) ([]models.BusyInterval, error) {
	var out []models.BusyInterval
	for _, b := range m.teacherBusy {
		if b.ClassID == excludeClassID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *mockClassRepo) ListRoomBusy(ctx context.Context, roomID, excludeClassID string) ([]models.BusyInterval, error) {
	var out []models.BusyInterval
	for _, b := range m.roomBusy {
		if b.ClassID == excludeClassID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type mockSlotCatalog struct {
	slots []models.TimeSlot
}

func (m *mockSlotCatalog) List(ctx context.Context, activeOnly bool) ([]models.TimeSlot, error) {
	return m.slots, nil
}

func (m *mockSlotCatalog) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	for _, s := range m.slots {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockTeacherLookup struct {
	teachers map[string]*models.Teacher
}

func (m *mockTeacherLookup) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockRoomLookup struct {
	rooms map[string]*models.Room
}

func (m *mockRoomLookup) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if r, ok := m.rooms[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockGridInvalidator struct {
	calls int
}

func (m *mockGridInvalidator) InvalidateAll(ctx context.Context) { m.calls++ }

func classServiceFixture(repo *mockClassRepo) *ClassService {
	slots := &mockSlotCatalog{slots: []models.TimeSlot{
		{ID: "s1", Label: "Evening 1", StartTime: "18:00:00", EndTime: "19:30:00", Active: true},
		{ID: "s2", Label: "Evening 2", StartTime: "19:45:00", EndTime: "21:15:00", Active: true},
	}}
	teachers := &mockTeacherLookup{teachers: map[string]*models.Teacher{
		"t1": {ID: "t1", FullName: "Binh Tran", Active: true},
		"t9": {ID: "t9", FullName: "Chi Le", Active: false},
	}}
	rooms := &mockRoomLookup{rooms: map[string]*models.Room{
		"r1": {ID: "r1", Name: "Room 101", Capacity: 24, Active: true},
	}}
	return NewClassService(repo, slots, teachers, rooms, nil, nil, nil, nil, 3, 5)
}

func strPtr(s string) *string { return &s }

func baseCreateRequest() CreateClassRequest {
	return CreateClassRequest{
		Name:          "Math A1",
		Subject:       "MATH",
		TeacherID:     "t1",
		RoomID:        strPtr("r1"),
		Mode:          models.ClassModeOffline,
		StartDate:     time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
		TotalSessions: 4,
		Capacity:      20,
		Schedule: []ScheduleEntryRequest{
			{DayOfWeek: 1, TimeSlotID: "s1"},
			{DayOfWeek: 3, TimeSlotID: "s1"},
		},
	}
}

func TestClassServiceCreateDerivesEndDateAndSessions(t *testing.T) {
	repo := &mockClassRepo{}
	svc := classServiceFixture(repo)

	detail, err := svc.Create(context.Background(), baseCreateRequest())
	require.NoError(t, err)

	// Mon 6 Jan, Wed 8, Mon 13, Wed 15: fourth session lands on 15 Jan.
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), detail.EndDate)
	assert.Equal(t, models.ClassStatusDraft, detail.Status)
	require.Len(t, repo.createdSessions, 4)
	assert.Equal(t, 1, repo.createdSessions[0].Sequence)
	assert.Equal(t, time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), repo.createdSessions[0].Date)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), repo.createdSessions[3].Date)
	require.Len(t, repo.createdEntries, 2)
}

func TestClassServiceCreateFromPickedSlots(t *testing.T) {
	repo := &mockClassRepo{}
	svc := classServiceFixture(repo)

	req := baseCreateRequest()
	req.Schedule = nil
	// Same weekly pattern picked on the grid across two calendar weeks.
	req.PickedSlots = []PickedSlotRequest{
		{Start: time.Date(2025, time.January, 6, 18, 0, 0, 0, time.UTC)},
		{Start: time.Date(2025, time.January, 8, 18, 0, 0, 0, time.UTC)},
		{Start: time.Date(2025, time.January, 13, 18, 0, 0, 0, time.UTC)},
	}

	detail, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, detail.Schedule, 2)
	assert.Equal(t, 1, detail.Schedule[0].DayOfWeek)
	assert.Equal(t, 3, detail.Schedule[1].DayOfWeek)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), detail.EndDate)
}

func TestClassServiceCreateRejectsUnmatchedPicks(t *testing.T) {
	repo := &mockClassRepo{}
	svc := classServiceFixture(repo)

	req := baseCreateRequest()
	req.Schedule = nil
	req.PickedSlots = []PickedSlotRequest{
		{Start: time.Date(2025, time.January, 6, 17, 30, 0, 0, time.UTC)},
	}

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnmatchedSlots.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestClassServiceCreateRejectsEmptySchedule(t *testing.T) {
	repo := &mockClassRepo{}
	svc := classServiceFixture(repo)

	req := baseCreateRequest()
	req.Schedule = nil

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrEmptySchedule.Code, appErr.Code)
}

func TestClassServiceCreateEnforcesWeeklyLoad(t *testing.T) {
	repo := &mockClassRepo{}
	svc := classServiceFixture(repo)

	req := baseCreateRequest()
	// Four Monday sessions exceed the weekday cap of three.
	req.Schedule = []ScheduleEntryRequest{
		{DayOfWeek: 1, TimeSlotID: "s1"},
		{DayOfWeek: 1, TimeSlotID: "s2"},
	}
	req.PickedSlots = nil

	// Two distinct slots on one weekday are fine under the default cap.
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	svc = NewClassService(repo, &mockSlotCatalog{slots: []models.TimeSlot{
		{ID: "s1", StartTime: "18:00:00", Active: true},
		{ID: "s2", StartTime: "19:45:00", Active: true},
	}}, &mockTeacherLookup{teachers: map[string]*models.Teacher{"t1": {ID: "t1", Active: true}}}, &mockRoomLookup{rooms: map[string]*models.Room{"r1": {ID: "r1", Active: true}}}, nil, nil, nil, nil, 1, 5)

	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestClassServiceWritesInvalidateGridCache(t *testing.T) {
	repo := &mockClassRepo{}
	grids := &mockGridInvalidator{}
	svc := classServiceFixture(repo)
	svc.grids = grids

	_, err := svc.Create(context.Background(), baseCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, grids.calls)

	_, err = svc.ChangeStatus(context.Background(), repo.created.ID, models.ClassStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, 2, grids.calls)
}

func TestClassServiceRejectedCreateLeavesGridCache(t *testing.T) {
	repo := &mockClassRepo{
		teacherBusy: []models.BusyInterval{
			{
				ClassID:    "c9",
				ClassName:  "Physics B2",
				DayOfWeek:  1,
				TimeSlotID: "s1",
				StartDate:  time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	grids := &mockGridInvalidator{}
	svc := classServiceFixture(repo)
	svc.grids = grids

	_, err := svc.Create(context.Background(), baseCreateRequest())
	require.Error(t, err)
	assert.Zero(t, grids.calls)
}

func TestClassServiceCreateDetectsTeacherConflict(t *testing.T) {
	repo := &mockClassRepo{
		teacherBusy: []models.BusyInterval{
			{
				ClassID:    "c9",
				ClassName:  "Physics B2",
				DayOfWeek:  1,
				TimeSlotID: "s1",
				StartDate:  time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	svc := classServiceFixture(repo)

	_, err := svc.Create(context.Background(), baseCreateRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	conflicts, ok := appErr.Details.([]models.ScheduleConflict)
	require.True(t, ok)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "TEACHER", conflicts[0].Dimension)
	assert.Equal(t, "Physics B2", conflicts[0].ClassName)
}

func TestClassServiceConflictDetailsSkipDisjointIntervals(t *testing.T) {
	repo := &mockClassRepo{
		teacherBusy: []models.BusyInterval{
			{
				ClassID:    "c9",
				ClassName:  "Physics B2",
				DayOfWeek:  1,
				TimeSlotID: "s1",
				StartDate:  time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				// Same day and slot but months after the requested range.
				ClassID:    "c8",
				ClassName:  "Chemistry D1",
				DayOfWeek:  1,
				TimeSlotID: "s1",
				StartDate:  time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(2025, time.July, 28, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	svc := classServiceFixture(repo)

	_, err := svc.Create(context.Background(), baseCreateRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	conflicts, ok := appErr.Details.([]models.ScheduleConflict)
	require.True(t, ok)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "c9", conflicts[0].ClassID)
}

func TestClassServiceCreateTreatsMissingBusyBoundAsConflict(t *testing.T) {
	repo := &mockClassRepo{
		teacherBusy: []models.BusyInterval{
			{ClassID: "c9", ClassName: "Physics B2", DayOfWeek: 1, TimeSlotID: "s1"},
		},
	}
	svc := classServiceFixture(repo)

	_, err := svc.Create(context.Background(), baseCreateRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestClassServiceCreateDetectsRoomConflict(t *testing.T) {
	repo := &mockClassRepo{
		roomBusy: []models.BusyInterval{
			{
				ClassID:    "c7",
				ClassName:  "English C1",
				DayOfWeek:  3,
				TimeSlotID: "s1",
				StartDate:  time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	svc := classServiceFixture(repo)

	_, err := svc.Create(context.Background(), baseCreateRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	conflicts, ok := appErr.Details.([]models.ScheduleConflict)
	require.True(t, ok)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "ROOM", conflicts[0].Dimension)
}

func TestClassServiceCreateSkipsRoomCheckWithoutRoom(t *testing.T) {
	repo := &mockClassRepo{
		roomBusy: []models.BusyInterval{
			{ClassID: "c7", DayOfWeek: 1, TimeSlotID: "s1"},
		},
	}
	svc := classServiceFixture(repo)

	req := baseCreateRequest()
	req.RoomID = nil
	req.Mode = models.ClassModeOnline

	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestClassServiceCreateRejectsInactiveTeacher(t *testing.T) {
	repo := &mockClassRepo{}
	svc := classServiceFixture(repo)

	req := baseCreateRequest()
	req.TeacherID = "t9"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestClassServiceUpdateExcludesOwnBusyIntervals(t *testing.T) {
	existing := &models.Class{
		ID:        "c1",
		Name:      "Math A1",
		Subject:   "MATH",
		TeacherID: "t1",
		Mode:      models.ClassModeOffline,
		Status:    models.ClassStatusOpen,
		StartDate: time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
	}
	repo := &mockClassRepo{
		classes: map[string]*models.Class{"c1": existing},
		teacherBusy: []models.BusyInterval{
			{
				ClassID:    "c1",
				ClassName:  "Math A1",
				DayOfWeek:  1,
				TimeSlotID: "s1",
				StartDate:  time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	svc := classServiceFixture(repo)

	req := UpdateClassRequest{
		Name:          "Math A1",
		Subject:       "MATH",
		TeacherID:     "t1",
		RoomID:        strPtr("r1"),
		Mode:          models.ClassModeOffline,
		StartDate:     time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
		TotalSessions: 4,
		Schedule: []ScheduleEntryRequest{
			{DayOfWeek: 1, TimeSlotID: "s1"},
		},
	}

	detail, err := svc.Update(context.Background(), "c1", req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC), detail.EndDate)
	require.NotNil(t, repo.updated)
}

func TestClassServiceUpdateRejectsFinishedClass(t *testing.T) {
	repo := &mockClassRepo{
		classes: map[string]*models.Class{
			"c1": {ID: "c1", Status: models.ClassStatusFinished},
		},
	}
	svc := classServiceFixture(repo)

	req := UpdateClassRequest{
		Name:          "Math A1",
		Subject:       "MATH",
		TeacherID:     "t1",
		Mode:          models.ClassModeOffline,
		StartDate:     time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
		TotalSessions: 4,
		Schedule:      []ScheduleEntryRequest{{DayOfWeek: 1, TimeSlotID: "s1"}},
	}

	_, err := svc.Update(context.Background(), "c1", req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestClassServiceChangeStatusTransitions(t *testing.T) {
	repo := &mockClassRepo{
		classes: map[string]*models.Class{
			"c1": {ID: "c1", Status: models.ClassStatusDraft},
		},
	}
	svc := classServiceFixture(repo)

	class, err := svc.ChangeStatus(context.Background(), "c1", models.ClassStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, models.ClassStatusOpen, class.Status)
	assert.Equal(t, models.ClassStatusOpen, repo.statusUpdates["c1"])

	_, err = svc.ChangeStatus(context.Background(), "c1", models.ClassStatusFinished)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestClassServiceGetNotFound(t *testing.T) {
	svc := classServiceFixture(&mockClassRepo{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
