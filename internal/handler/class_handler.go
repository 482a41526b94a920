package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/service"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
	"github.com/edulane/educenter-api/pkg/response"
)

// ClassHandler wires class services to HTTP routes.
type ClassHandler struct {
	classes  *service.ClassService
	sessions *service.SessionService
	grids    *service.GridService
}

// NewClassHandler constructs a new ClassHandler.
func NewClassHandler(classes *service.ClassService, sessions *service.SessionService, grids *service.GridService) *ClassHandler {
	return &ClassHandler{classes: classes, sessions: sessions, grids: grids}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param teacher_id query string false "Filter by teacher"
// @Param room_id query string false "Filter by room"
// @Param status query string false "Filter by status (DRAFT,OPEN,RUNNING,FINISHED,CANCELLED)"
// @Param mode query string false "Filter by mode (OFFLINE,ONLINE)"
// @Param search query string false "Search by name/subject"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (name,start_date,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	filter := models.ClassFilter{
		TeacherID: c.Query("teacher_id"),
		RoomID:    c.Query("room_id"),
		Status:    models.ClassStatus(strings.ToUpper(c.Query("status"))),
		Mode:      models.ClassMode(strings.ToUpper(c.Query("mode"))),
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	classes, pagination, err := h.classes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// Get godoc
// @Summary Get class detail with schedule entries
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create class
// @Description Create a class with its weekly schedule; derives the end date and materializes sessions
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update class
// @Description Replace class attributes and schedule; re-runs projection and conflict checks
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.classes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// ChangeStatus godoc
// @Summary Change class lifecycle status
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body map[string]string true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classes/{id}/status [patch]
func (h *ClassHandler) ChangeStatus(c *gin.Context) {
	var payload struct {
		Status models.ClassStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status required"))
		return
	}
	class, err := h.classes.ChangeStatus(c.Request.Context(), c.Param("id"), payload.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Sessions godoc
// @Summary List sessions of a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Param status query string false "Filter by status (SCHEDULED,HELD,CANCELLED)"
// @Param from query string false "Sessions on or after date (YYYY-MM-DD)"
// @Param to query string false "Sessions on or before date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/sessions [get]
func (h *ClassHandler) Sessions(c *gin.Context) {
	filter := models.SessionFilter{
		ClassID: c.Param("id"),
		Status:  models.SessionStatus(strings.ToUpper(c.Query("status"))),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = &t
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	sessions, pagination, err := h.sessions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Grid godoc
// @Summary Class weekly schedule grid
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/grid [get]
func (h *ClassHandler) Grid(c *gin.Context) {
	grid, err := h.grids.ClassGrid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}
