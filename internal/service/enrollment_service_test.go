package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/educenter-api/internal/models"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	items       map[string]*models.Enrollment
	activeCount int
	activeSet   map[string]bool
	created     *models.Enrollment
	withdrawn   []string
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.items[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ListByClass(ctx context.Context, classID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return nil, nil
}

func (m *mockEnrollmentRepo) CountActiveByClass(ctx context.Context, classID string) (int, error) {
	return m.activeCount, nil
}

func (m *mockEnrollmentRepo) ExistsActive(ctx context.Context, classID, studentID string) (bool, error) {
	return m.activeSet[classID+"|"+studentID], nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = "generated"
	}
	cp := *enrollment
	m.created = &cp
	return nil
}

func (m *mockEnrollmentRepo) Withdraw(ctx context.Context, id string) error {
	m.withdrawn = append(m.withdrawn, id)
	return nil
}

type mockClassLookup struct {
	classes map[string]*models.Class
}

func (m *mockClassLookup) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentLookup struct {
	students map[string]*models.Student
}

func (m *mockStudentLookup) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func enrollmentFixture(repo *mockEnrollmentRepo, capacity int, status models.ClassStatus) *EnrollmentService {
	classes := &mockClassLookup{classes: map[string]*models.Class{
		"c1": {ID: "c1", Name: "Math A1", Status: status, Capacity: capacity},
	}}
	students := &mockStudentLookup{students: map[string]*models.Student{
		"st1": {ID: "st1", FullName: "An Nguyen", Active: true},
		"st9": {ID: "st9", FullName: "Bao Pham", Active: false},
	}}
	return NewEnrollmentService(repo, classes, students, nil, nil)
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := enrollmentFixture(repo, 20, models.ClassStatusOpen)

	enrollment, err := svc.Enroll(context.Background(), EnrollRequest{ClassID: "c1", StudentID: "st1"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	require.NotNil(t, repo.created)
	assert.Equal(t, "st1", repo.created.StudentID)
}

func TestEnrollmentServiceEnrollRejectsFullClass(t *testing.T) {
	repo := &mockEnrollmentRepo{activeCount: 20}
	svc := enrollmentFixture(repo, 20, models.ClassStatusOpen)

	_, err := svc.Enroll(context.Background(), EnrollRequest{ClassID: "c1", StudentID: "st1"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrClassFull.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceEnrollIgnoresCapacityWhenUnset(t *testing.T) {
	repo := &mockEnrollmentRepo{activeCount: 100}
	svc := enrollmentFixture(repo, 0, models.ClassStatusOpen)

	_, err := svc.Enroll(context.Background(), EnrollRequest{ClassID: "c1", StudentID: "st1"})
	require.NoError(t, err)
}

func TestEnrollmentServiceEnrollRejectsDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{activeSet: map[string]bool{"c1|st1": true}}
	svc := enrollmentFixture(repo, 20, models.ClassStatusOpen)

	_, err := svc.Enroll(context.Background(), EnrollRequest{ClassID: "c1", StudentID: "st1"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestEnrollmentServiceEnrollRejectsDraftClass(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := enrollmentFixture(repo, 20, models.ClassStatusDraft)

	_, err := svc.Enroll(context.Background(), EnrollRequest{ClassID: "c1", StudentID: "st1"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestEnrollmentServiceEnrollRejectsInactiveStudent(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := enrollmentFixture(repo, 20, models.ClassStatusOpen)

	_, err := svc.Enroll(context.Background(), EnrollRequest{ClassID: "c1", StudentID: "st9"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestEnrollmentServiceWithdraw(t *testing.T) {
	repo := &mockEnrollmentRepo{items: map[string]*models.Enrollment{
		"e1": {ID: "e1", ClassID: "c1", StudentID: "st1", Status: models.EnrollmentStatusActive},
		"e2": {ID: "e2", ClassID: "c1", StudentID: "st2", Status: models.EnrollmentStatusWithdrawn},
	}}
	svc := enrollmentFixture(repo, 20, models.ClassStatusOpen)

	require.NoError(t, svc.Withdraw(context.Background(), "e1"))
	assert.Equal(t, []string{"e1"}, repo.withdrawn)

	err := svc.Withdraw(context.Background(), "e2")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}
