package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/educenter-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimeSlotRepositoryListActiveOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "label", "start_time", "end_time", "active", "created_at", "updated_at"}).
		AddRow("s1", "Evening 1", "18:00:00", "19:30:00", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, label, start_time, end_time, active, created_at, updated_at FROM time_slots WHERE active = TRUE ORDER BY start_time ASC")).
		WillReturnRows(rows)

	slots, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "18:00", slots[0].StartHM())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryCreateAndDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectExec("INSERT INTO time_slots").
		WithArgs(sqlmock.AnyArg(), "Evening 1", "18:00:00", "19:30:00", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	slot := &models.TimeSlot{Label: "Evening 1", StartTime: "18:00:00", EndTime: "19:30:00", Active: true}
	require.NoError(t, repo.Create(context.Background(), slot))
	assert.NotEmpty(t, slot.ID)

	mock.ExpectExec("UPDATE time_slots SET active = FALSE").
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryExistsByStartTime(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM time_slots WHERE start_time = $1 LIMIT 1")).
		WithArgs("18:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByStartTime(context.Background(), "18:00:00", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM time_slots WHERE start_time = $1 AND id <> $2 LIMIT 1")).
		WithArgs("18:00:00", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByStartTime(context.Background(), "18:00:00", "s1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
