package models

import "time"

// ExportFormat selects the output format of a timetable export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "CSV"
	ExportFormatPDF ExportFormat = "PDF"
)

// ExportJobStatus tracks asynchronous export progress.
type ExportJobStatus string

const (
	ExportJobPending   ExportJobStatus = "PENDING"
	ExportJobRunning   ExportJobStatus = "RUNNING"
	ExportJobCompleted ExportJobStatus = "COMPLETED"
	ExportJobFailed    ExportJobStatus = "FAILED"
)

// ExportJob is a queued timetable export. Scope/ScopeID select whose weekly
// grid gets rendered (CLASS, TEACHER or ROOM plus the entity id).
type ExportJob struct {
	ID          string          `db:"id" json:"id"`
	Scope       string          `db:"scope" json:"scope"`
	ScopeID     string          `db:"scope_id" json:"scope_id"`
	Format      ExportFormat    `db:"format" json:"format"`
	Status      ExportJobStatus `db:"status" json:"status"`
	FilePath    *string         `db:"file_path" json:"-"`
	Error       *string         `db:"error" json:"error,omitempty"`
	RequestedBy string          `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
