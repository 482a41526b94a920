package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edulane/educenter-api/internal/dto"
	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/service"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
	"github.com/edulane/educenter-api/pkg/response"
)

// TeacherHandler wires teacher services to HTTP routes.
type TeacherHandler struct {
	teachers *service.TeacherService
	classes  *service.ClassService
	grids    *service.GridService
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(teachers *service.TeacherService, classes *service.ClassService, grids *service.GridService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, classes: classes, grids: grids}
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Param search query string false "Search by name/email"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (full_name,email,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	filter := models.TeacherFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	filter.Active = parseBoolQuery(c, "active")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	teachers, pagination, err := h.teachers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, pagination)
}

// Get godoc
// @Summary Get teacher detail
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Create godoc
// @Summary Create teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body service.CreateTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req service.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}
	teacher, err := h.teachers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Update godoc
// @Summary Update teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body service.UpdateTeacherRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req service.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}
	teacher, err := h.teachers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Deactivate godoc
// @Summary Deactivate teacher
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 204 {object} response.Envelope
// @Router /teachers/{id} [delete]
func (h *TeacherHandler) Deactivate(c *gin.Context) {
	if err := h.teachers.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// FreeBusy godoc
// @Summary Teacher occupied intervals
// @Description Committed weekday/slot intervals across active classes
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param from query string false "Only intervals ending on or after date (YYYY-MM-DD)"
// @Param to query string false "Only intervals starting on or before date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/free-busy [get]
func (h *TeacherHandler) FreeBusy(c *gin.Context) {
	id := c.Param("id")
	busy, err := h.classes.TeacherBusy(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	busy = filterBusyRange(c, busy)
	response.JSON(c, http.StatusOK, dto.FreeBusyResponse{Scope: "teacher", ScopeID: id, Busy: busy}, nil)
}

// Grid godoc
// @Summary Teacher weekly schedule grid
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/grid [get]
func (h *TeacherHandler) Grid(c *gin.Context) {
	grid, err := h.grids.TeacherGrid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// filterBusyRange drops intervals outside the from/to query range, when given.
func filterBusyRange(c *gin.Context, busy []models.BusyInterval) []models.BusyInterval {
	from, fromErr := time.Parse("2006-01-02", c.Query("from"))
	to, toErr := time.Parse("2006-01-02", c.Query("to"))
	if fromErr != nil && toErr != nil {
		return busy
	}
	filtered := make([]models.BusyInterval, 0, len(busy))
	for _, interval := range busy {
		if fromErr == nil && interval.EndDate.Before(from) {
			continue
		}
		if toErr == nil && interval.StartDate.After(to) {
			continue
		}
		filtered = append(filtered, interval)
	}
	return filtered
}

func parseBoolQuery(c *gin.Context, name string) *bool {
	switch strings.ToLower(c.Query(name)) {
	case "true":
		val := true
		return &val
	case "false":
		val := false
		return &val
	}
	return nil
}
