package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edulane/educenter-api/internal/dto"
	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/scheduling"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
	"github.com/edulane/educenter-api/pkg/export"
	"github.com/edulane/educenter-api/pkg/jobs"
	"github.com/edulane/educenter-api/pkg/storage"
)

type exportJobRepository interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, filePath string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

// ExportRequest asks for a timetable export of one scope.
type ExportRequest struct {
	Scope   string              `json:"scope" validate:"required,oneof=CLASS TEACHER ROOM"`
	ScopeID string              `json:"scope_id" validate:"required"`
	Format  models.ExportFormat `json:"format" validate:"required,oneof=CSV PDF"`
}

// ExportStatusResponse reports job progress; DownloadURL is set once the
// file is ready.
type ExportStatusResponse struct {
	Job         models.ExportJob `json:"job"`
	DownloadURL string           `json:"download_url,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
}

// ExportService renders weekly timetables to CSV or PDF asynchronously. Jobs
// run on an in-process queue; finished files are served through short-lived
// signed URLs.
type ExportService struct {
	repo      exportJobRepository
	grids     *GridService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	queue     *jobs.Queue
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	urlPrefix string
}

// NewExportService constructs an ExportService and its job queue. urlPrefix
// is the API mount path download URLs are built under. Call Start before
// enqueueing and Stop on shutdown.
func NewExportService(repo exportJobRepository, grids *GridService, store *storage.LocalStorage, signer *storage.SignedURLSigner, metrics *MetricsService, logger *zap.Logger, urlPrefix string, workers, retries int) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		repo:      repo,
		grids:     grids,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		store:     store,
		signer:    signer,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}
	s.queue = jobs.NewQueue("timetable-export", s.process, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		RetryDelay: 2 * time.Second,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains the export workers.
func (s *ExportService) Stop() { s.queue.Stop() }

// Request creates a pending export job and queues it.
func (s *ExportService) Request(ctx context.Context, req ExportRequest, requestedBy string) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		Scope:       req.Scope,
		ScopeID:     req.ScopeID,
		Format:      req.Format,
		Status:      models.ExportJobPending,
		RequestedBy: requestedBy,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "timetable-export", Payload: job.ID}); err != nil {
		s.logger.Error("failed to enqueue export job", zap.String("job_id", job.ID), zap.Error(err))
		_ = s.repo.MarkFailed(ctx, job.ID, "queue unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export job")
	}
	return job, nil
}

// Status returns the job and, when finished, a signed download URL.
func (s *ExportService) Status(ctx context.Context, jobID string) (*ExportStatusResponse, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}

	resp := &ExportStatusResponse{Job: *job}
	if job.Status == models.ExportJobCompleted && job.FilePath != nil {
		token, expiresAt, err := s.signer.Generate(job.ID, *job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		resp.DownloadURL = s.urlPrefix + "/exports/download/" + token
		resp.ExpiresAt = &expiresAt
	}
	return resp, nil
}

// Open validates a signed token and opens the exported file.
func (s *ExportService) Open(ctx context.Context, token string) (*os.File, *models.ExportJob, error) {
	jobID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.FilePath == nil || *job.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "token does not match export job")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return file, job, nil
}

// process is the queue handler rendering one export job.
func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	jobID, _ := job.Payload.(string)
	if jobID == "" {
		jobID = job.ID
	}

	record, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}
	if err := s.repo.MarkRunning(ctx, jobID); err != nil {
		return fmt.Errorf("mark export job running: %w", err)
	}

	data, err := s.render(ctx, record)
	if err != nil {
		_ = s.repo.MarkFailed(ctx, jobID, err.Error())
		s.metrics.RecordExportJob(string(record.Format), string(models.ExportJobFailed))
		return err
	}

	filename := fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(record.Scope), record.ScopeID, jobID[:8], strings.ToLower(string(record.Format)))
	if _, err := s.store.Save(filename, data); err != nil {
		_ = s.repo.MarkFailed(ctx, jobID, "storage write failed")
		s.metrics.RecordExportJob(string(record.Format), string(models.ExportJobFailed))
		return fmt.Errorf("save export file: %w", err)
	}
	if err := s.repo.MarkCompleted(ctx, jobID, filename); err != nil {
		return fmt.Errorf("mark export job completed: %w", err)
	}

	s.metrics.RecordExportJob(string(record.Format), string(models.ExportJobCompleted))
	s.logger.Info("export job completed",
		zap.String("job_id", jobID),
		zap.String("file", filename))
	return nil
}

func (s *ExportService) render(ctx context.Context, record *models.ExportJob) ([]byte, error) {
	var grid *dto.GridResponse
	var err error
	switch record.Scope {
	case "TEACHER":
		grid, err = s.grids.TeacherGrid(ctx, record.ScopeID)
	case "ROOM":
		grid, err = s.grids.RoomGrid(ctx, record.ScopeID)
	case "CLASS":
		grid, err = s.grids.ClassGrid(ctx, record.ScopeID)
	default:
		return nil, fmt.Errorf("unknown export scope %q", record.Scope)
	}
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}

	dataset := gridDataset(grid)
	switch record.Format {
	case models.ExportFormatCSV:
		return s.csv.Render(dataset)
	case models.ExportFormatPDF:
		title := fmt.Sprintf("Weekly timetable: %s %s", strings.ToLower(record.Scope), record.ScopeID)
		return s.pdf.Render(dataset, title)
	default:
		return nil, fmt.Errorf("unknown export format %q", record.Format)
	}
}

// gridDataset lays the grid out as one row per catalog slot with a column
// per weekday.
func gridDataset(grid *dto.GridResponse) export.Dataset {
	headers := []string{"Slot"}
	for day := scheduling.Monday; day <= scheduling.Sunday; day++ {
		headers = append(headers, day.String())
	}

	byCell := make(map[string][]scheduling.Event, len(grid.Cells))
	for _, cell := range grid.Cells {
		byCell[fmt.Sprintf("%d|%s", cell.Day, cell.TimeSlotID)] = cell.Events
	}

	rows := make([]map[string]string, 0, len(grid.Slots))
	for _, slot := range grid.Slots {
		row := map[string]string{"Slot": fmt.Sprintf("%s (%s-%s)", slot.Label, slot.StartHM(), slot.EndTime)}
		for day := scheduling.Monday; day <= scheduling.Sunday; day++ {
			events := byCell[fmt.Sprintf("%d|%s", int(day), slot.ID)]
			labels := make([]string, 0, len(events))
			for _, event := range events {
				labels = append(labels, event.ClassName)
			}
			row[day.String()] = strings.Join(labels, " / ")
		}
		rows = append(rows, row)
	}

	return export.Dataset{Headers: headers, Rows: rows}
}
