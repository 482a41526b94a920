package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/service"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
	"github.com/edulane/educenter-api/pkg/response"
)

// SessionHandler manages materialized class sessions and their attendance.
type SessionHandler struct {
	sessions   *service.SessionService
	attendance *service.AttendanceService
}

// NewSessionHandler constructs a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService, attendance *service.AttendanceService) *SessionHandler {
	return &SessionHandler{sessions: sessions, attendance: attendance}
}

// Get godoc
// @Summary Get session detail
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// ChangeStatus godoc
// @Summary Change session status
// @Description Mark a scheduled session as held or cancelled
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body map[string]string true "Target status with optional note"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions/{id}/status [patch]
func (h *SessionHandler) ChangeStatus(c *gin.Context) {
	var payload struct {
		Status models.SessionStatus `json:"status" binding:"required"`
		Note   *string              `json:"note"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status required"))
		return
	}
	session, err := h.sessions.ChangeStatus(c.Request.Context(), c.Param("id"), payload.Status, payload.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// MarkAttendance godoc
// @Summary Record attendance for a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body []service.MarkAttendanceRequest true "Attendance marks"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions/{id}/attendance [post]
func (h *SessionHandler) MarkAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var marks []service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&marks); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	records, err := h.attendance.Mark(c.Request.Context(), c.Param("id"), claims.UserID, marks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Attendance godoc
// @Summary List attendance of a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance [get]
func (h *SessionHandler) Attendance(c *gin.Context) {
	records, err := h.attendance.BySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
