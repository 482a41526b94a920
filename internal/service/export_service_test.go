package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/educenter-api/internal/models"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
	"github.com/edulane/educenter-api/pkg/storage"
)

type mockExportJobRepo struct {
	jobs map[string]*models.ExportJob
}

func (m *mockExportJobRepo) Create(ctx context.Context, job *models.ExportJob) error {
	if m.jobs == nil {
		m.jobs = make(map[string]*models.ExportJob)
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *mockExportJobRepo) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	if job, ok := m.jobs[id]; ok {
		cp := *job
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExportJobRepo) MarkRunning(ctx context.Context, id string) error { return nil }

func (m *mockExportJobRepo) MarkCompleted(ctx context.Context, id, filePath string) error {
	return nil
}

func (m *mockExportJobRepo) MarkFailed(ctx context.Context, id, reason string) error { return nil }

func exportServiceFixture(t *testing.T, repo *mockExportJobRepo, urlPrefix string) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(repo, nil, store, signer, nil, nil, urlPrefix, 1, 0)
}

func TestExportServiceStatusBuildsURLFromConfiguredPrefix(t *testing.T) {
	filePath := "exports/job-1.csv"
	repo := &mockExportJobRepo{jobs: map[string]*models.ExportJob{
		"job-1": {
			ID:       "job-1",
			Scope:    "CLASS",
			ScopeID:  "c1",
			Format:   models.ExportFormatCSV,
			Status:   models.ExportJobCompleted,
			FilePath: &filePath,
		},
	}}
	svc := exportServiceFixture(t, repo, "/internal/v2/")

	resp, err := svc.Status(context.Background(), "job-1")
	require.NoError(t, err)
	require.NotNil(t, resp.ExpiresAt)
	assert.True(t, strings.HasPrefix(resp.DownloadURL, "/internal/v2/exports/download/"), resp.DownloadURL)

	token := strings.TrimPrefix(resp.DownloadURL, "/internal/v2/exports/download/")
	assert.NotEmpty(t, token)
}

func TestExportServiceStatusPendingJobHasNoURL(t *testing.T) {
	repo := &mockExportJobRepo{jobs: map[string]*models.ExportJob{
		"job-2": {ID: "job-2", Scope: "CLASS", ScopeID: "c1", Format: models.ExportFormatPDF, Status: models.ExportJobPending},
	}}
	svc := exportServiceFixture(t, repo, "/api/v1")

	resp, err := svc.Status(context.Background(), "job-2")
	require.NoError(t, err)
	assert.Empty(t, resp.DownloadURL)
	assert.Nil(t, resp.ExpiresAt)
}

func TestExportServiceStatusNotFound(t *testing.T) {
	svc := exportServiceFixture(t, &mockExportJobRepo{}, "/api/v1")

	_, err := svc.Status(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
