package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/educenter-api/internal/models"
)

func TestClassRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "subject", "teacher_id", "room_id", "mode", "status", "start_date", "end_date", "total_sessions", "capacity", "tuition_fee", "created_at", "updated_at"}).
		AddRow("c1", "Math A1", "MATH", "t1", "r1", "OFFLINE", "OPEN", now, now.AddDate(0, 2, 0), 24, 20, 1200000, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+classColumns+" FROM classes WHERE 1=1 AND teacher_id = $1 AND status = $2 ORDER BY start_date DESC LIMIT 20 OFFSET 0")).
		WithArgs("t1", "OPEN").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE 1=1 AND teacher_id = $1 AND status = $2")).
		WithArgs("t1", "OPEN").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{TeacherID: "t1", Status: "OPEN"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, classes, 1)
	assert.Equal(t, "Math A1", classes[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListTeacherBusy(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"class_id", "class_name", "day_of_week", "time_slot_id", "start_date", "end_date"}).
		AddRow("c1", "Math A1", 1, "s1", start, end)
	mock.ExpectQuery("SELECT c.id AS class_id, .+ FROM classes c JOIN schedule_entries se ON se.class_id = c.id WHERE c.teacher_id = .+ AND c.id <>").
		WithArgs("t1", "c2").
		WillReturnRows(rows)

	busy, err := repo.ListTeacherBusy(context.Background(), "t1", "c2")
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, 1, busy[0].DayOfWeek)
	assert.Equal(t, "s1", busy[0].TimeSlotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreateTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO classes").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO class_sessions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	class := &models.Class{
		Name:          "Math A1",
		Subject:       "MATH",
		TeacherID:     "t1",
		Mode:          models.ClassModeOnline,
		Status:        models.ClassStatusDraft,
		StartDate:     time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		TotalSessions: 1,
	}
	entries := []models.ScheduleEntry{
		{DayOfWeek: 1, TimeSlotID: "s1"},
		{DayOfWeek: 3, TimeSlotID: "s1"},
	}
	sessions := []models.ClassSession{
		{TimeSlotID: "s1", Date: class.StartDate, Sequence: 1},
	}

	require.NoError(t, repo.Create(context.Background(), class, entries, sessions))
	assert.NotEmpty(t, class.ID)
	assert.Equal(t, class.ID, entries[0].ClassID)
	assert.Equal(t, class.ID, sessions[0].ClassID)
	assert.Equal(t, models.SessionStatusScheduled, sessions[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO classes").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	class := &models.Class{Name: "Math A1", TeacherID: "t1", Mode: models.ClassModeOffline, Status: models.ClassStatusDraft}
	err := repo.Create(context.Background(), class, []models.ScheduleEntry{{DayOfWeek: 1, TimeSlotID: "s1"}}, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
