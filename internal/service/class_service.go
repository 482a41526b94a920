package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/scheduling"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	GetSchedule(ctx context.Context, classID string) ([]models.ScheduleEntry, error)
	Create(ctx context.Context, class *models.Class, entries []models.ScheduleEntry, sessions []models.ClassSession) error
	Update(ctx context.Context, class *models.Class, entries []models.ScheduleEntry, sessions []models.ClassSession) error
	UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error
	ListTeacherBusy(ctx context.Context, teacherID, excludeClassID string) ([]models.BusyInterval, error)
	ListRoomBusy(ctx context.Context, roomID, excludeClassID string) ([]models.BusyInterval, error)
}

type classTimeSlotRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
}

type classTeacherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type classRoomRepository interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// ScheduleEntryRequest is one explicit weekly entry in a class payload.
type ScheduleEntryRequest struct {
	DayOfWeek  int    `json:"day_of_week" validate:"required,min=1,max=7"`
	TimeSlotID string `json:"time_slot_id" validate:"required"`
}

// PickedSlotRequest is one concrete grid pick; the weekly entry is derived
// from its weekday and start time.
type PickedSlotRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end"`
}

// CreateClassRequest represents payload for creating classes. The weekly
// schedule comes either as explicit entries or as grid picks; end_date is
// never accepted from the client.
type CreateClassRequest struct {
	Name          string                 `json:"name" validate:"required,max=200"`
	Subject       string                 `json:"subject" validate:"required,max=100"`
	TeacherID     string                 `json:"teacher_id" validate:"required"`
	RoomID        *string                `json:"room_id"`
	Mode          models.ClassMode       `json:"mode" validate:"required,oneof=OFFLINE ONLINE"`
	StartDate     time.Time              `json:"start_date" validate:"required"`
	TotalSessions int                    `json:"total_sessions" validate:"required,min=1,max=500"`
	Capacity      int                    `json:"capacity" validate:"min=0"`
	TuitionFee    int64                  `json:"tuition_fee" validate:"min=0"`
	Schedule      []ScheduleEntryRequest `json:"schedule" validate:"dive"`
	PickedSlots   []PickedSlotRequest    `json:"picked_slots" validate:"dive"`
}

// UpdateClassRequest represents payload for updating classes.
type UpdateClassRequest struct {
	Name          string                 `json:"name" validate:"required,max=200"`
	Subject       string                 `json:"subject" validate:"required,max=100"`
	TeacherID     string                 `json:"teacher_id" validate:"required"`
	RoomID        *string                `json:"room_id"`
	Mode          models.ClassMode       `json:"mode" validate:"required,oneof=OFFLINE ONLINE"`
	StartDate     time.Time              `json:"start_date" validate:"required"`
	TotalSessions int                    `json:"total_sessions" validate:"required,min=1,max=500"`
	Capacity      int                    `json:"capacity" validate:"min=0"`
	TuitionFee    int64                  `json:"tuition_fee" validate:"min=0"`
	Schedule      []ScheduleEntryRequest `json:"schedule" validate:"dive"`
	PickedSlots   []PickedSlotRequest    `json:"picked_slots" validate:"dive"`
}

// gridInvalidator drops cached schedule grids once a class write commits.
type gridInvalidator interface {
	InvalidateAll(ctx context.Context)
}

// ClassService orchestrates class lifecycle: schedule derivation, weekly load
// limits, end-date projection, conflict checks and session materialisation.
type ClassService struct {
	repo       classRepository
	slots      classTimeSlotRepository
	teachers   classTeacherRepository
	rooms      classRoomRepository
	grids      gridInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	maxWeekday int
	maxWeekend int
}

// NewClassService constructs a ClassService. grids may be nil when grid
// caching is disabled.
func NewClassService(repo classRepository, slots classTimeSlotRepository, teachers classTeacherRepository, rooms classRoomRepository, grids gridInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, maxWeekday, maxWeekend int) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxWeekday <= 0 {
		maxWeekday = 3
	}
	if maxWeekend <= 0 {
		maxWeekend = 5
	}
	return &ClassService{
		repo:       repo,
		slots:      slots,
		teachers:   teachers,
		rooms:      rooms,
		grids:      grids,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		maxWeekday: maxWeekday,
		maxWeekend: maxWeekend,
	}
}

// List returns classes plus pagination data.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
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
	return classes, pagination, nil
}

// Get returns a class with its weekly schedule.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassDetail, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	schedule, err := s.repo.GetSchedule(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedule")
	}
	return &models.ClassDetail{Class: *class, Schedule: schedule}, nil
}

// Create validates the candidate schedule, derives the end date, checks
// teacher and room availability and stores the class together with its
// materialised sessions.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.ClassDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if err := s.ensureReferences(ctx, req.TeacherID, req.RoomID); err != nil {
		return nil, err
	}

	plan, err := s.buildPlan(ctx, req.Schedule, req.PickedSlots, req.StartDate, req.TotalSessions)
	if err != nil {
		return nil, err
	}
	if err := s.checkAvailability(ctx, plan, req.TeacherID, req.RoomID, req.StartDate, ""); err != nil {
		return nil, err
	}

	class := &models.Class{
		Name:          strings.TrimSpace(req.Name),
		Subject:       strings.TrimSpace(req.Subject),
		TeacherID:     req.TeacherID,
		RoomID:        req.RoomID,
		Mode:          req.Mode,
		Status:        models.ClassStatusDraft,
		StartDate:     truncateDate(req.StartDate),
		EndDate:       plan.endDate,
		TotalSessions: req.TotalSessions,
		Capacity:      req.Capacity,
		TuitionFee:    req.TuitionFee,
	}

	if err := s.repo.Create(ctx, class, plan.modelEntries(), plan.sessions()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.invalidateGrids(ctx)

	s.logger.Info("class created",
		zap.String("class_id", class.ID),
		zap.String("teacher_id", class.TeacherID),
		zap.Int("entries", len(plan.entries)),
		zap.Time("end_date", class.EndDate))

	return &models.ClassDetail{Class: *class, Schedule: plan.modelEntries()}, nil
}

// Update re-runs the full schedule pipeline for an existing class, excluding
// the class itself from the conflict sets, and replaces its pending sessions.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest) (*models.ClassDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.Status == models.ClassStatusFinished || class.Status == models.ClassStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "finished or cancelled classes cannot be rescheduled")
	}
	if err := s.ensureReferences(ctx, req.TeacherID, req.RoomID); err != nil {
		return nil, err
	}

	plan, err := s.buildPlan(ctx, req.Schedule, req.PickedSlots, req.StartDate, req.TotalSessions)
	if err != nil {
		return nil, err
	}
	if err := s.checkAvailability(ctx, plan, req.TeacherID, req.RoomID, req.StartDate, id); err != nil {
		return nil, err
	}

	class.Name = strings.TrimSpace(req.Name)
	class.Subject = strings.TrimSpace(req.Subject)
	class.TeacherID = req.TeacherID
	class.RoomID = req.RoomID
	class.Mode = req.Mode
	class.StartDate = truncateDate(req.StartDate)
	class.EndDate = plan.endDate
	class.TotalSessions = req.TotalSessions
	class.Capacity = req.Capacity
	class.TuitionFee = req.TuitionFee

	if err := s.repo.Update(ctx, class, plan.modelEntries(), plan.sessions()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	s.invalidateGrids(ctx)

	return &models.ClassDetail{Class: *class, Schedule: plan.modelEntries()}, nil
}

// classTransitions defines which lifecycle moves are legal.
var classTransitions = map[models.ClassStatus][]models.ClassStatus{
	models.ClassStatusDraft:   {models.ClassStatusOpen, models.ClassStatusCancelled},
	models.ClassStatusOpen:    {models.ClassStatusRunning, models.ClassStatusCancelled},
	models.ClassStatusRunning: {models.ClassStatusFinished, models.ClassStatusCancelled},
}

// ChangeStatus moves a class through its lifecycle.
func (s *ClassService) ChangeStatus(ctx context.Context, id string, status models.ClassStatus) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	allowed := false
	for _, next := range classTransitions[class.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "illegal class status transition")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class status")
	}
	s.invalidateGrids(ctx)
	class.Status = status
	return class, nil
}

func (s *ClassService) invalidateGrids(ctx context.Context) {
	if s.grids != nil {
		s.grids.InvalidateAll(ctx)
	}
}

// TeacherBusy returns the committed intervals of a teacher for free-busy views.
func (s *ClassService) TeacherBusy(ctx context.Context, teacherID string) ([]models.BusyInterval, error) {
	busy, err := s.repo.ListTeacherBusy(ctx, teacherID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher availability")
	}
	return busy, nil
}

// RoomBusy returns the committed intervals occupying a room.
func (s *ClassService) RoomBusy(ctx context.Context, roomID string) ([]models.BusyInterval, error) {
	busy, err := s.repo.ListRoomBusy(ctx, roomID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room availability")
	}
	return busy, nil
}

// schedulePlan is the outcome of the schedule pipeline: the canonical weekly
// entries, the server-derived end date and the dated occurrences.
type schedulePlan struct {
	entries     []scheduling.Entry
	endDate     time.Time
	occurrences []scheduling.Occurrence
}

func (p *schedulePlan) modelEntries() []models.ScheduleEntry {
	entries := make([]models.ScheduleEntry, 0, len(p.entries))
	for _, e := range p.entries {
		entries = append(entries, models.ScheduleEntry{DayOfWeek: int(e.Day), TimeSlotID: e.SlotID})
	}
	return entries
}

func (p *schedulePlan) sessions() []models.ClassSession {
	sessions := make([]models.ClassSession, 0, len(p.occurrences))
	for i, occ := range p.occurrences {
		sessions = append(sessions, models.ClassSession{
			TimeSlotID: occ.SlotID,
			Date:       occ.Date,
			Sequence:   i + 1,
			Status:     models.SessionStatusScheduled,
		})
	}
	return sessions
}

// buildPlan turns the payload's schedule (explicit entries, grid picks, or
// both) into canonical entries, validates the weekly load, projects the end
// date and expands the dated sessions.
func (s *ClassService) buildPlan(ctx context.Context, explicit []ScheduleEntryRequest, picked []PickedSlotRequest, startDate time.Time, totalSessions int) (*schedulePlan, error) {
	catalog, err := s.slots.List(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot catalog")
	}
	byID := make(map[string]models.TimeSlot, len(catalog))
	catalogSlots := make([]scheduling.CatalogSlot, 0, len(catalog))
	for _, slot := range catalog {
		byID[slot.ID] = slot
		catalogSlots = append(catalogSlots, scheduling.CatalogSlot{ID: slot.ID, Start: slot.StartHM()})
	}

	seen := make(map[scheduling.Entry]struct{})
	var entries []scheduling.Entry

	for _, req := range explicit {
		if _, ok := byID[req.TimeSlotID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown time slot "+req.TimeSlotID)
		}
		entry := scheduling.Entry{Day: scheduling.Weekday(req.DayOfWeek), SlotID: req.TimeSlotID}
		if !entry.Day.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "day_of_week must be between 1 and 7")
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		entries = append(entries, entry)
	}

	if len(picked) > 0 {
		picks := make([]scheduling.PickedSlot, 0, len(picked))
		for _, p := range picked {
			picks = append(picks, scheduling.PickedSlot{Start: p.Start, End: p.End})
		}
		mapped, unmatched := scheduling.ToEntries(picks, catalogSlots)
		if len(unmatched) > 0 {
			times := make([]string, 0, len(unmatched))
			for _, miss := range unmatched {
				times = append(times, miss.Start.Format(time.RFC3339))
			}
			s.logger.Warn("picked slots without catalog match",
				zap.Strings("starts", times),
				zap.Int("catalog_size", len(catalogSlots)))
			return nil, appErrors.WithDetails(appErrors.ErrUnmatchedSlots, map[string]interface{}{"unmatched_starts": times})
		}
		for _, entry := range mapped {
			if _, dup := seen[entry]; dup {
				continue
			}
			seen[entry] = struct{}{}
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		return nil, appErrors.ErrEmptySchedule
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return byID[entries[i].SlotID].StartTime < byID[entries[j].SlotID].StartTime
	})

	if err := scheduling.CheckWeeklyLoad(entries, s.maxWeekday, s.maxWeekend); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	pattern := make(map[scheduling.Weekday]int, len(entries))
	for _, entry := range entries {
		pattern[entry.Day]++
	}
	endDate, err := scheduling.ProjectEndDate(startDate, pattern, totalSessions)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUndeterminedEnd.Code, appErrors.ErrUndeterminedEnd.Status, appErrors.ErrUndeterminedEnd.Message)
	}

	occurrences, err := scheduling.ExpandSessions(startDate, entries, totalSessions)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUndeterminedEnd.Code, appErrors.ErrUndeterminedEnd.Status, appErrors.ErrUndeterminedEnd.Message)
	}

	return &schedulePlan{entries: entries, endDate: endDate, occurrences: occurrences}, nil
}

// checkAvailability rejects the plan when the teacher, or the room for
// offline classes, is already booked on a colliding weekday/slot/date-range.
func (s *ClassService) checkAvailability(ctx context.Context, plan *schedulePlan, teacherID string, roomID *string, startDate time.Time, excludeClassID string) error {
	start := truncateDate(startDate)

	teacherBusy, err := s.repo.ListTeacherBusy(ctx, teacherID, excludeClassID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher availability")
	}
	conflicts := scheduling.FindConflicts(plan.entries, start, plan.endDate, toBusyIntervals(teacherBusy))
	s.metrics.RecordConflictCheck("teacher", len(conflicts) > 0)
	if len(conflicts) > 0 {
		return conflictError("TEACHER", teacherBusy, conflicts)
	}

	if roomID != nil && *roomID != "" {
		roomBusy, err := s.repo.ListRoomBusy(ctx, *roomID, excludeClassID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room availability")
		}
		conflicts = scheduling.FindConflicts(plan.entries, start, plan.endDate, toBusyIntervals(roomBusy))
		s.metrics.RecordConflictCheck("room", len(conflicts) > 0)
		if len(conflicts) > 0 {
			return conflictError("ROOM", roomBusy, conflicts)
		}
	}

	return nil
}

func (s *ClassService) ensureReferences(ctx context.Context, teacherID string, roomID *string) error {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Active {
		return appErrors.Clone(appErrors.ErrValidation, "teacher is inactive")
	}
	if roomID != nil && *roomID != "" {
		room, err := s.rooms.FindByID(ctx, *roomID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrValidation, "room not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
		}
		if !room.Active {
			return appErrors.Clone(appErrors.ErrValidation, "room is inactive")
		}
	}
	return nil
}

func toBusyIntervals(rows []models.BusyInterval) []scheduling.BusyInterval {
	busy := make([]scheduling.BusyInterval, 0, len(rows))
	for _, row := range rows {
		busy = append(busy, scheduling.BusyInterval{
			Day:    scheduling.Weekday(row.DayOfWeek),
			SlotID: row.TimeSlotID,
			Start:  row.StartDate,
			End:    row.EndDate,
		})
	}
	return busy
}

// conflictError maps colliding intervals back to their source rows so the
// response can name the blocking classes.
func conflictError(dimension string, rows []models.BusyInterval, conflicts []scheduling.BusyInterval) error {
	details := make([]models.ScheduleConflict, 0, len(conflicts))
	seen := make(map[string]struct{}, len(conflicts))
	for _, c := range conflicts {
		for _, row := range rows {
			if row.DayOfWeek != int(c.Day) || row.TimeSlotID != c.SlotID {
				continue
			}
			if !row.StartDate.Equal(c.Start) || !row.EndDate.Equal(c.End) {
				continue
			}
			key := busyKey(row.DayOfWeek, row.TimeSlotID, row.ClassID)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			details = append(details, models.ScheduleConflict{
				Dimension:  dimension,
				ClassID:    row.ClassID,
				ClassName:  row.ClassName,
				DayOfWeek:  row.DayOfWeek,
				TimeSlotID: row.TimeSlotID,
				StartDate:  row.StartDate,
				EndDate:    row.EndDate,
			})
		}
	}

	message := "teacher already booked on a requested slot"
	if dimension == "ROOM" {
		message = "room already booked on a requested slot"
	}
	conflictErr := appErrors.Clone(appErrors.ErrConflict, message)
	return appErrors.WithDetails(conflictErr, details)
}

func busyKey(day int, slotID, classID string) string {
	return fmt.Sprintf("%s|%s|%d", classID, slotID, day)
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
