package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edulane/educenter-api/internal/service"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
	"github.com/edulane/educenter-api/pkg/response"
)

// EnrollmentHandler wires roster operations to HTTP routes.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	attendance  *service.AttendanceService
}

// NewEnrollmentHandler constructs a new EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, attendance *service.AttendanceService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, attendance: attendance}
}

// Enroll godoc
// @Summary Enroll a student into a class
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Withdraw godoc
// @Summary Withdraw an enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 204 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	if err := h.enrollments.Withdraw(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Roster godoc
// @Summary List active enrollments of a class
// @Tags Enrollments
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/roster [get]
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	roster, err := h.enrollments.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// AttendanceSummary godoc
// @Summary Per-student attendance totals of a class
// @Tags Enrollments
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance-summary [get]
func (h *EnrollmentHandler) AttendanceSummary(c *gin.Context) {
	summary, err := h.attendance.ClassSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
