package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/service"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
	"github.com/edulane/educenter-api/pkg/response"
)

// ExportHandler wires timetable export jobs to HTTP routes.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs a new ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Request godoc
// @Summary Request a timetable export
// @Description Queue an async CSV or PDF export of a schedule grid
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body service.ExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Request(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}

	job, err := h.exports.Request(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Export job status
// @Description Report job progress; includes a signed download URL once completed
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	status, err := h.exports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download an exported file
// @Description Serve the rendered file referenced by a signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, job, err := h.exports.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read export file"))
		return
	}

	contentType := "text/csv"
	if job.Format == models.ExportFormatPDF {
		contentType = "application/pdf"
	}

	name := info.Name()
	if job.FilePath != nil {
		name = filepath.Base(*job.FilePath)
	}
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, headers)
}
