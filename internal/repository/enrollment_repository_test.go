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

func TestEnrollmentRepositoryCountActiveByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE class_id = $1 AND status = 'ACTIVE'")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	count, err := repo.CountActiveByClass(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 17, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExistsActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE class_id = $1 AND student_id = $2 AND status = 'ACTIVE' LIMIT 1")).
		WithArgs("c1", "st1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsActive(context.Background(), "c1", "st1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE class_id = $1 AND student_id = $2 AND status = 'ACTIVE' LIMIT 1")).
		WithArgs("c1", "st2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsActive(context.Background(), "c1", "st2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WithArgs(sqlmock.AnyArg(), "c1", "st1", "ACTIVE", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	enrollment := &models.Enrollment{ClassID: "c1", StudentID: "st1"}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	assert.NotEmpty(t, enrollment.ID)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "class_id", "student_id", "status", "created_at", "updated_at", "student_name"}).
		AddRow("e1", "c1", "st1", "ACTIVE", now, now, "An Nguyen")
	mock.ExpectQuery("SELECT e.id, .+ FROM enrollments e JOIN students s ON s.id = e.student_id WHERE e.class_id = ").
		WithArgs("c1").
		WillReturnRows(rows)

	roster, err := repo.ListByClass(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "An Nguyen", roster[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
