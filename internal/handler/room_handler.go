package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edulane/educenter-api/internal/dto"
	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/service"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
	"github.com/edulane/educenter-api/pkg/response"
)

// RoomHandler wires room services to HTTP routes.
type RoomHandler struct {
	rooms   *service.RoomService
	classes *service.ClassService
	grids   *service.GridService
}

// NewRoomHandler constructs a new RoomHandler.
func NewRoomHandler(rooms *service.RoomService, classes *service.ClassService, grids *service.GridService) *RoomHandler {
	return &RoomHandler{rooms: rooms, classes: classes, grids: grids}
}

// List godoc
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Param search query string false "Search by name/location"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (name,capacity,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	filter := models.RoomFilter{
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

	rooms, pagination, err := h.rooms.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, pagination)
}

// Get godoc
// @Summary Get room detail
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Create godoc
// @Summary Create room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param payload body service.CreateRoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Router /rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req service.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room payload"))
		return
	}
	room, err := h.rooms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// Update godoc
// @Summary Update room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body service.UpdateRoomRequest true "Room payload"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c *gin.Context) {
	var req service.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room payload"))
		return
	}
	room, err := h.rooms.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Deactivate godoc
// @Summary Deactivate room
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 204 {object} response.Envelope
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Deactivate(c *gin.Context) {
	if err := h.rooms.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// FreeBusy godoc
// @Summary Room occupied intervals
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Param from query string false "Only intervals ending on or after date (YYYY-MM-DD)"
// @Param to query string false "Only intervals starting on or before date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/free-busy [get]
func (h *RoomHandler) FreeBusy(c *gin.Context) {
	id := c.Param("id")
	busy, err := h.classes.RoomBusy(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	busy = filterBusyRange(c, busy)
	response.JSON(c, http.StatusOK, dto.FreeBusyResponse{Scope: "room", ScopeID: id, Busy: busy}, nil)
}

// Grid godoc
// @Summary Room weekly schedule grid
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/grid [get]
func (h *RoomHandler) Grid(c *gin.Context) {
	grid, err := h.grids.RoomGrid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}
